package service

import (
	"time"

	"courier-dispatch/internal/features/promotions/domain"
)

// Filter keeps the promotions a cart qualifies for, preserving catalog order.
// CurrentUsage must already be hydrated; userUsage holds the cart user's
// redemptions per promotion id and is ignored for anonymous carts.
func Filter(promos []domain.Promotion, cart domain.Cart, now time.Time, userUsage map[string]int64) []domain.Promotion {
	out := make([]domain.Promotion, 0, len(promos))
	for _, p := range promos {
		if eligible(p, cart, now, userUsage) {
			out = append(out, p)
		}
	}
	return out
}

func eligible(p domain.Promotion, cart domain.Cart, now time.Time, userUsage map[string]int64) bool {
	if !p.Running(now) {
		return false
	}
	if !p.Scope.Matches(cart.Location) {
		return false
	}
	if !p.AmountInBand(cart.Amount) {
		return false
	}
	if !p.HasGlobalUsage() {
		return false
	}
	if cart.UserID != "" && !p.HasUserUsage(userUsage[p.ID]) {
		return false
	}
	if p.SubType == domain.FirstOrder && cart.HasPriorOrders {
		return false
	}
	return true
}
