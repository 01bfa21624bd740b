package shared

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options carries engine settings into services
type Options struct {
	// DefaultPaymentMethod is used when a request leaves the method empty
	DefaultPaymentMethod finance.PaymentMethod
	Logger               *zap.Logger
	Metrics              Metrics
	// Location is the store's time zone. Calendar days and ledger buckets
	// are taken in it.
	Location *time.Location
}

// DefaultTimezone is the store's zone when none is configured
const DefaultTimezone = "America/Argentina/Buenos_Aires"

// LoadLocation resolves an IANA zone name; empty means DefaultTimezone
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

// Metrics receives business events once their transaction has committed
type Metrics interface {
	SaleConfirmed(ctx context.Context, source string, method finance.PaymentMethod, total decimal.Decimal)
	SaleAdjusted(ctx context.Context, difference decimal.Decimal)
	InvoicePaymentRecorded(ctx context.Context, method finance.PaymentMethod, amount decimal.Decimal, fullyPaid bool)
	StockAdjusted(ctx context.Context, delta decimal.Decimal)
	StockDiscrepancies(ctx context.Context, count int)
}

// Sale sources reported to Metrics
const (
	SaleSourceCart  = "cart"
	SaleSourceQuote = "quote"
)

// NopMetrics discards every event
type NopMetrics struct{}

func (NopMetrics) SaleConfirmed(context.Context, string, finance.PaymentMethod, decimal.Decimal) {}

func (NopMetrics) SaleAdjusted(context.Context, decimal.Decimal) {}

func (NopMetrics) InvoicePaymentRecorded(context.Context, finance.PaymentMethod, decimal.Decimal, bool) {}

func (NopMetrics) StockAdjusted(context.Context, decimal.Decimal) {}

func (NopMetrics) StockDiscrepancies(context.Context, int) {}

// DefaultOptions returns CASH as default method, a no-op logger, no metrics
// and the DefaultTimezone zone
func DefaultOptions() Options {
	loc, err := LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.FixedZone("-03", -3*60*60)
	}
	return Options{
		DefaultPaymentMethod: finance.PaymentMethodCash,
		Logger:               zap.NewNop(),
		Metrics:              NopMetrics{},
		Location:             loc,
	}
}

// WithDefaults fills unset fields
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if !o.DefaultPaymentMethod.IsValid() {
		o.DefaultPaymentMethod = d.DefaultPaymentMethod
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.Metrics == nil {
		o.Metrics = d.Metrics
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}
