package valueobject

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidMoneyFormat is returned when a money string is not in 1.234,56 form
var ErrInvalidMoneyFormat = errors.New("invalid format, use 1.234,56")

// ErrNegativeAmount is returned for negative money input
var ErrNegativeAmount = errors.New("amount cannot be negative")

var arMoneyPattern = regexp.MustCompile(`^(?:\d{1,3}(?:\.\d{3})+|\d+),\d{2}$`)

// ParseARMoney parses a money amount in Argentine notation.
// Dot is the thousands separator and must group correctly, comma is the
// decimal separator and exactly two decimals are required.
//
//	ParseARMoney("1.234,56") // 1234.56
//	ParseARMoney("50,00")    // 50.00
func ParseARMoney(value string) (Money, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || !arMoneyPattern.MatchString(cleaned) {
		return Money{}, ErrInvalidMoneyFormat
	}
	normalized := strings.ReplaceAll(cleaned, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Money{}, ErrInvalidMoneyFormat
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: RoundHalfUp(d, MoneyPlaces)}, nil
}

// ParseLocaleDecimal parses a quantity that may be written in Argentine or
// canonical notation. Accepted inputs:
//
//	"1.234,56" -> 1234.56
//	"1234,56"  -> 1234.56
//	"1234.56"  -> 1234.56
//	"1.234"    -> 1234 (a single dot followed by 3+ digits groups thousands)
//	"1.234.567"-> 1234567
//	"1234"     -> 1234
func ParseLocaleDecimal(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return decimal.Zero, errors.New("empty number")
	}

	dots := strings.Count(v, ".")
	commas := strings.Count(v, ",")

	var normalized string
	switch {
	case commas == 1:
		normalized = strings.Replace(strings.ReplaceAll(v, ".", ""), ",", ".", 1)
	case commas == 0 && dots == 1:
		parts := strings.SplitN(v, ".", 2)
		if len(parts[1]) > 2 {
			normalized = strings.ReplaceAll(v, ".", "")
		} else {
			normalized = v
		}
	case commas == 0 && dots > 1:
		normalized = strings.ReplaceAll(v, ".", "")
	case commas == 0 && dots == 0:
		normalized = v
	default:
		return decimal.Zero, errors.New("invalid number format: " + v)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, errors.New("invalid number: " + v)
	}
	return d, nil
}

// FormatARS renders an amount as 1.234,56
func FormatARS(m Money) string {
	rounded := m.Round()
	fixed := rounded.amount.Abs().StringFixed(MoneyPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")

	groups := make([]string, 0, len(intPart)/3+1)
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + strings.Join(groups, ".") + "," + frac
}
