package service

import (
	"context"
	"fmt"
	"slices"

	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/events"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"
	"courier-dispatch/internal/features/promotions/domain"
	"courier-dispatch/internal/features/promotions/ports"

	"go.uber.org/zap"
)

// Engine filters, evaluates and resolves promotions for a cart. Any internal
// failure degrades to a result with no promotions applied.
type Engine struct {
	repo      ports.Repository
	usage     ports.UsageLedger
	evaluator *Evaluator
	events    events.Publisher
	clock     clock.Clock
	log       *zap.Logger
}

// NewEngine creates an Engine. factor is the number of minor units in one
// major unit of the catalog's prices.
func NewEngine(repo ports.Repository, usage ports.UsageLedger, pub events.Publisher, clk clock.Clock, factor int64) *Engine {
	return &Engine{
		repo:      repo,
		usage:     usage,
		evaluator: NewEvaluator(factor),
		events:    pub,
		clock:     clk,
		log:       logger.Named("promotions"),
	}
}

// Evaluate prices the cart.
func (e *Engine) Evaluate(ctx context.Context, cart domain.Cart) (res domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("promotion evaluation panicked", zap.Any("panic", r), zap.String("store_id", cart.StoreID))
			res = degraded(cart)
		}
	}()

	res, err := e.evaluate(ctx, cart)
	if err != nil {
		e.log.Warn("promotion evaluation degraded", zap.String("store_id", cart.StoreID), zap.Error(err))
		res = degraded(cart)
	}
	e.record(ctx, cart, res)
	return res
}

func (e *Engine) evaluate(ctx context.Context, cart domain.Cart) (domain.Result, error) {
	if err := cart.Validate(); err != nil {
		return domain.Result{}, err
	}
	catalog, err := e.repo.List(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("load catalog: %w", err)
	}

	valid := make([]domain.Promotion, 0, len(catalog))
	for _, p := range catalog {
		if err := p.Validate(); err != nil {
			e.log.Warn("skipping invalid promotion", zap.String("promotion_id", p.ID), zap.Error(err))
			continue
		}
		valid = append(valid, p)
	}

	userUsage, err := e.hydrate(ctx, valid, cart.UserID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("load usage: %w", err)
	}

	eligible := Filter(valid, cart, e.clock.Now(), userUsage)
	return Resolve(cart, e.evaluator.EvaluateAll(eligible, cart)), nil
}

// hydrate fills CurrentUsage in place and returns the user's own counts.
func (e *Engine) hydrate(ctx context.Context, promos []domain.Promotion, userID string) (map[string]int64, error) {
	if len(promos) == 0 {
		return nil, nil
	}
	ids := make([]string, len(promos))
	for i, p := range promos {
		ids[i] = p.ID
	}
	global, perUser, err := e.usage.Usage(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	for i := range promos {
		promos[i].CurrentUsage = global[promos[i].ID]
	}
	return perUser, nil
}

func degraded(cart domain.Cart) domain.Result {
	res := domain.NoPromotions(cart)
	res.Degraded = true
	return res
}

func (e *Engine) record(ctx context.Context, cart domain.Cart, res domain.Result) {
	switch {
	case res.Degraded:
		metrics.PromotionEvaluations.WithLabelValues("degraded").Inc()
	case len(res.Applied) == 0:
		metrics.PromotionEvaluations.WithLabelValues("none").Inc()
	default:
		metrics.PromotionEvaluations.WithLabelValues("applied").Inc()
	}
	for _, ep := range res.Applied {
		metrics.PromotionSavings.WithLabelValues(string(ep.Type)).Add(float64(ep.Savings))
	}

	if e.events == nil {
		return
	}
	evt := events.Event{
		Type: domain.EventPromotionEvaluated,
		Key:  cart.StoreID,
		At:   e.clock.Now(),
		Data: map[string]any{
			"user_id":         cart.UserID,
			"promotion_ids":   res.IDs(),
			"total_savings":   res.TotalSavings,
			"new_order_total": res.NewOrderTotal,
			"degraded":        res.Degraded,
		},
	}
	if err := e.events.Publish(ctx, evt); err != nil {
		e.log.Warn("failed to publish promotion event", zap.Error(err))
	}
}

// Redeem records one use of each promotion for the user. Every id must name
// a running promotion; limits are enforced atomically by the usage ledger.
func (e *Engine) Redeem(ctx context.Context, promotionIDs []string, userID string) error {
	if len(promotionIDs) == 0 {
		return fmt.Errorf("%w: no promotion ids", domain.ErrInvalidPromotion)
	}
	catalog, err := e.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	ids := slices.Clone(promotionIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	now := e.clock.Now()
	promos := make([]domain.Promotion, 0, len(ids))
	for _, id := range ids {
		i := slices.IndexFunc(catalog, func(p domain.Promotion) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrPromotionNotFound, id)
		}
		if !catalog[i].Running(now) {
			return fmt.Errorf("%w: %s", domain.ErrPromotionNotActive, id)
		}
		promos = append(promos, catalog[i])
	}

	if err := e.usage.Redeem(ctx, promos, userID); err != nil {
		return err
	}
	e.log.Info("promotions redeemed", zap.Strings("promotion_ids", ids), zap.String("user_id", userID))
	return nil
}
