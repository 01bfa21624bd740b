package telemetry

import (
	"context"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics turns committed business events into OpenTelemetry instruments
type LedgerMetrics struct {
	salesConfirmed     metric.Int64Counter
	salesAmount        metric.Float64Counter
	saleAdjustments    metric.Int64Counter
	saleAdjustedAmount metric.Float64Histogram
	invoicePayments    metric.Int64Counter
	invoicePaidAmount  metric.Float64Counter
	stockAdjustments   metric.Int64Counter
	stockDiscrepancies metric.Int64Gauge
}

// NewLedgerMetrics creates the instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	var (
		m   LedgerMetrics
		err error
	)
	if m.salesConfirmed, err = meter.Int64Counter("ferreteria.sales.confirmed",
		metric.WithDescription("Confirmed sales"), metric.WithUnit("{sale}")); err != nil {
		return nil, err
	}
	if m.salesAmount, err = meter.Float64Counter("ferreteria.sales.amount",
		metric.WithDescription("Total of confirmed sales"), metric.WithUnit("ARS")); err != nil {
		return nil, err
	}
	if m.saleAdjustments, err = meter.Int64Counter("ferreteria.sales.adjustments",
		metric.WithDescription("Edits of confirmed sales"), metric.WithUnit("{adjustment}")); err != nil {
		return nil, err
	}
	if m.saleAdjustedAmount, err = meter.Float64Histogram("ferreteria.sales.adjustment.amount",
		metric.WithDescription("Absolute total difference of sale edits"), metric.WithUnit("ARS")); err != nil {
		return nil, err
	}
	if m.invoicePayments, err = meter.Int64Counter("ferreteria.invoices.payments",
		metric.WithDescription("Payments recorded against purchase invoices"), metric.WithUnit("{payment}")); err != nil {
		return nil, err
	}
	if m.invoicePaidAmount, err = meter.Float64Counter("ferreteria.invoices.paid.amount",
		metric.WithDescription("Amount paid to suppliers"), metric.WithUnit("ARS")); err != nil {
		return nil, err
	}
	if m.stockAdjustments, err = meter.Int64Counter("ferreteria.stock.adjustments",
		metric.WithDescription("Manual stock adjustments"), metric.WithUnit("{adjustment}")); err != nil {
		return nil, err
	}
	if m.stockDiscrepancies, err = meter.Int64Gauge("ferreteria.stock.discrepancies",
		metric.WithDescription("Products whose stock differs from their move history at the last check"),
		metric.WithUnit("{product}")); err != nil {
		return nil, err
	}
	return &m, nil
}

func direction(d decimal.Decimal) attribute.KeyValue {
	if d.IsNegative() {
		return attribute.String("direction", "down")
	}
	return attribute.String("direction", "up")
}

// SaleConfirmed counts a sale and its total
func (m *LedgerMetrics) SaleConfirmed(ctx context.Context, source string, method finance.PaymentMethod, total decimal.Decimal) {
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("payment_method", method.String()),
	)
	m.salesConfirmed.Add(ctx, 1, attrs)
	m.salesAmount.Add(ctx, total.InexactFloat64(), attrs)
}

// SaleAdjusted counts an edit; unchanged totals are counted as "up" with zero amount
func (m *LedgerMetrics) SaleAdjusted(ctx context.Context, difference decimal.Decimal) {
	attrs := metric.WithAttributes(direction(difference))
	m.saleAdjustments.Add(ctx, 1, attrs)
	m.saleAdjustedAmount.Record(ctx, difference.Abs().InexactFloat64(), attrs)
}

// InvoicePaymentRecorded counts a supplier payment
func (m *LedgerMetrics) InvoicePaymentRecorded(ctx context.Context, method finance.PaymentMethod, amount decimal.Decimal, fullyPaid bool) {
	attrs := metric.WithAttributes(
		attribute.String("payment_method", method.String()),
		attribute.Bool("settles_invoice", fullyPaid),
	)
	m.invoicePayments.Add(ctx, 1, attrs)
	m.invoicePaidAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

// StockAdjusted counts a manual adjustment
func (m *LedgerMetrics) StockAdjusted(ctx context.Context, delta decimal.Decimal) {
	m.stockAdjustments.Add(ctx, 1, metric.WithAttributes(direction(delta)))
}

// StockDiscrepancies records the result of the last consistency check
func (m *LedgerMetrics) StockDiscrepancies(ctx context.Context, count int) {
	m.stockDiscrepancies.Record(ctx, int64(count))
}

var _ appshared.Metrics = (*LedgerMetrics)(nil)
