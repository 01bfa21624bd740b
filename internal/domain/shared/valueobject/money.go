package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the number of decimal places money is rounded to
	MoneyPlaces int32 = 2
	// QtyPlaces is the scale of every stored quantity, base or per unit
	QtyPlaces int32 = 3
)

// Money is a value object representing an amount in the store's currency.
// It is immutable - all operations return new Money instances.
// Amounts are rounded half-up to 2 places by Round and by every constructor
// that accepts external input.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal without rounding
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromInt creates Money from a whole amount
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// NewMoneyFromString parses a canonical decimal string ("1234.56") and rounds it
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: RoundHalfUp(d, MoneyPlaces)}, nil
}

// MustMoney parses a canonical decimal string and panics on error
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Subtract returns the difference of both amounts
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Multiply returns the amount multiplied by factor, rounded half-up to 2 places
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: RoundHalfUp(m.amount.Mul(factor), MoneyPlaces)}
}

// Percentage returns rate percent of the amount, rounded half-up to 2 places
func (m Money) Percentage(rate decimal.Decimal) Money {
	return Money{amount: RoundHalfUp(m.amount.Mul(rate).Div(decimal.NewFromInt(100)), MoneyPlaces)}
}

// Abs returns the absolute value
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// Round returns the amount rounded half-up to 2 places
func (m Money) Round() Money {
	return Money{amount: RoundHalfUp(m.amount, MoneyPlaces)}
}

// Equals compares both amounts at 2-decimal precision
func (m Money) Equals(other Money) bool {
	return m.Round().amount.Equal(other.Round().amount)
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Cmp compares two amounts, returning -1, 0 or 1
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// String returns the amount with 2 fixed decimals ("1234.50")
func (m Money) String() string {
	return m.Round().amount.StringFixed(MoneyPlaces)
}

// MarshalJSON renders the amount as a 2-decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a canonical decimal string or a JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid money value: %s", string(data))
		}
		s = n.String()
	}
	parsed, err := NewMoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	return nil
}

// SumMoney adds up all amounts
func SumMoney(values ...Money) Money {
	total := ZeroMoney()
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// RoundHalfUp rounds d to places decimals with ties away from zero
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// HasAtMostPlaces reports whether d carries no more than places significant decimals
func HasAtMostPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
