package ports

import (
	"context"

	"courier-dispatch/internal/features/promotions/domain"
)

// Repository loads the promotion catalog in evaluation order.
type Repository interface {
	List(ctx context.Context) ([]domain.Promotion, error)
}

// UsageLedger counts redemptions globally and per user.
type UsageLedger interface {
	// Usage returns the global count of every id and, when userID is set, the
	// per-user count. Missing entries are zero.
	Usage(ctx context.Context, ids []string, userID string) (global, perUser map[string]int64, err error)

	// Redeem increments every promotion in one atomic step, refusing all of
	// them when any limit would be exceeded.
	Redeem(ctx context.Context, promos []domain.Promotion, userID string) error
}

// PromotionService is the primary port of the promotion engine.
type PromotionService interface {
	Evaluate(ctx context.Context, cart domain.Cart) domain.Result
	Redeem(ctx context.Context, promotionIDs []string, userID string) error
}
