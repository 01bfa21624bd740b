package handler

import (
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// fieldErrors collects the fields of a request that could not be converted
// into application values. Each parser returns the zero value on failure so
// a handler can convert a whole request before reporting.
type fieldErrors []dto.ValidationDetail

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, dto.ValidationDetail{Field: field, Message: message})
}

func (f *fieldErrors) uuid(field, value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		f.add(field, "Invalid UUID format")
	}
	return id
}

// quantity accepts locale decimals such as "1,5", "1.5" or "1.000"
func (f *fieldErrors) quantity(field, value string) decimal.Decimal {
	d, err := valueobject.ParseLocaleDecimal(value)
	if err != nil {
		f.add(field, "Must be a decimal number such as 1,5")
		return decimal.Zero
	}
	return d
}

// money accepts only the strict "1.234,56" form
func (f *fieldErrors) money(field, value string) decimal.Decimal {
	m, err := valueobject.ParseARMoney(value)
	if err != nil {
		f.add(field, "Must be an amount such as 1.234,56")
		return decimal.Zero
	}
	return m.Amount()
}

// rate parses an optional percentage; empty means zero
func (f *fieldErrors) rate(field, value string) decimal.Decimal {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero
	}
	return f.quantity(field, value)
}

func (f *fieldErrors) date(field, value string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		f.add(field, "Must be a date in the format "+DateLayout)
	}
	return t
}

func (f *fieldErrors) optionalDate(field string, value *string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	t := f.date(field, *value)
	return &t
}

// instant accepts RFC 3339 timestamps or plain dates; empty gives fallback
func (f *fieldErrors) instant(field, value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return f.date(field, value)
}
