package ports

import (
	"context"

	"github.com/bnema/focus-budget-cli/internal/domain"
)

type HistoryRepository interface {
	Append(ctx context.Context, entries []domain.HistoryEntry) error
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}
