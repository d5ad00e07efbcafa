package tui

import (
	"context"

	"stockdeck/internal/api"
)

// Service is the slice of the API client the dashboard drives. Kept as an
// interface so update-loop tests can swap in a recording fake.
type Service interface {
	ListSKUs(ctx context.Context) ([]api.SKU, error)
	History(ctx context.Context, skuID string, days int) (api.HistoryResponse, error)
	Forecast(ctx context.Context, skuID string, days int) (api.ForecastResponse, error)
	RecordTransaction(ctx context.Context, draft api.TransactionDraft) (api.TransactionResult, error)
	UpdateReplenishmentSettings(ctx context.Context, skuID string, s api.ReplenishmentSettings) (string, error)
	Replenishment(ctx context.Context, skuID string, days int) (api.ReplenishmentBundle, error)
}
