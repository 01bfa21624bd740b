package finance

import (
	"context"
	"strings"
	"time"

	appshared "github.com/ferreteria/backend/internal/application/shared"
	"github.com/ferreteria/backend/internal/domain/finance"
	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ManualEntryRequest records income or expense not tied to a document
type ManualEntryRequest struct {
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Notes         string          `json:"notes"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID         `json:"id"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Type          string            `json:"type"`
	Amount        valueobject.Money `json:"amount"`
	Category      string            `json:"category"`
	ReferenceType string            `json:"reference_type"`
	ReferenceID   *uuid.UUID        `json:"reference_id,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	Notes         string            `json:"notes,omitempty"`
}

// TotalsResponse is income, expense and net over a period
type TotalsResponse struct {
	Income  valueobject.Money `json:"income"`
	Expense valueobject.Money `json:"expense"`
	Net     valueobject.Money `json:"net"`
}

// SeriesPointResponse is one bucket of a ledger series
type SeriesPointResponse struct {
	Period time.Time `json:"period"`
	TotalsResponse
}

// LedgerQuery selects entries by period and optional payment method. From is
// inclusive and To exclusive, both calendar days.
type LedgerQuery struct {
	From          time.Time
	To            time.Time
	PaymentMethod string
	Granularity   string
}

// LedgerService records manual entries and aggregates the finance ledger
type LedgerService struct {
	txScope appshared.TransactionScope
	opts    appshared.Options
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txScope appshared.TransactionScope, opts appshared.Options) *LedgerService {
	return &LedgerService{
		txScope: txScope,
		opts:    opts.WithDefaults(),
	}
}

// RecordManualEntry writes a MANUAL income or expense
func (s *LedgerService) RecordManualEntry(ctx context.Context, req ManualEntryRequest) (*LedgerEntryResponse, error) {
	method, err := finance.NormalizePaymentMethod(req.PaymentMethod, s.opts.DefaultPaymentMethod)
	if err != nil {
		return nil, err
	}
	entryType := finance.EntryType(strings.ToUpper(strings.TrimSpace(req.Type)))
	entry, err := finance.NewLedgerEntry(entryType, valueobject.NewMoney(req.Amount), req.Category,
		finance.ReferenceManual, nil, method, req.Notes)
	if err != nil {
		return nil, err
	}
	if !req.OccurredAt.IsZero() {
		entry.OccurredAt = req.OccurredAt
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return repos.LedgerRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.opts.Logger.Info("manual ledger entry recorded",
		zap.String("entry_id", entry.ID.String()),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.String()),
	)
	resp := toEntryResponse(entry)
	return &resp, nil
}

// DeleteManualEntry soft-deletes a MANUAL entry
func (s *LedgerService) DeleteManualEntry(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.LedgerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.SoftDelete(); err != nil {
			return err
		}
		return repos.LedgerRepo().MarkDeleted(ctx, entry)
	})
}

// Summary totals active entries in the period
func (s *LedgerService) Summary(ctx context.Context, q LedgerQuery) (*TotalsResponse, error) {
	entries, err := s.find(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := toTotalsResponse(finance.Summarize(entries))
	return &resp, nil
}

// Series buckets active entries by day, month or year in the store's zone
func (s *LedgerService) Series(ctx context.Context, q LedgerQuery) ([]SeriesPointResponse, error) {
	g, err := finance.ParseGranularity(q.Granularity)
	if err != nil {
		return nil, err
	}
	entries, err := s.find(ctx, q)
	if err != nil {
		return nil, err
	}
	points := finance.BuildSeries(entries, g, s.opts.Location)
	resp := make([]SeriesPointResponse, len(points))
	for i, p := range points {
		resp[i] = SeriesPointResponse{Period: p.Period, TotalsResponse: toTotalsResponse(p.Totals)}
	}
	return resp, nil
}

// find reads From and To as calendar days starting at the store's midnight
func (s *LedgerService) find(ctx context.Context, q LedgerQuery) ([]finance.LedgerEntry, error) {
	var filter finance.LedgerFilter
	if !q.From.IsZero() {
		filter.From = shared.StartOfDay(q.From, s.opts.Location).UTC()
	}
	if !q.To.IsZero() {
		filter.To = shared.StartOfDay(q.To, s.opts.Location).UTC()
	}
	if q.PaymentMethod != "" {
		method, err := finance.NormalizePaymentMethod(q.PaymentMethod, "")
		if err != nil {
			return nil, err
		}
		filter.PaymentMethod = method
	}
	var entries []finance.LedgerEntry
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		entries, err = repos.LedgerRepo().FindActive(ctx, filter)
		return err
	})
	return entries, err
}

func toEntryResponse(e *finance.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		OccurredAt:    e.OccurredAt,
		Type:          string(e.Type),
		Amount:        e.Amount,
		Category:      e.Category,
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		PaymentMethod: e.PaymentMethod.String(),
		Notes:         e.Notes,
	}
}

func toTotalsResponse(t finance.Totals) TotalsResponse {
	return TotalsResponse{Income: t.Income, Expense: t.Expense, Net: t.Net}
}
