package service

import (
	"courier-dispatch/internal/core/money"
	"courier-dispatch/internal/core/target"
	"courier-dispatch/internal/features/promotions/domain"

	"github.com/shopspring/decimal"
)

// Evaluator prices promotions against a cart.
type Evaluator struct {
	// factor converts decimal unit prices to minor units.
	factor int64
}

// NewEvaluator creates an Evaluator using factor minor units per major unit.
func NewEvaluator(factor int64) *Evaluator {
	if factor <= 0 {
		factor = money.DefaultFactor
	}
	return &Evaluator{factor: factor}
}

// EvaluateAll evaluates each promotion in order and drops those that save nothing.
func (e *Evaluator) EvaluateAll(promos []domain.Promotion, cart domain.Cart) []domain.EvaluatedPromotion {
	out := make([]domain.EvaluatedPromotion, 0, len(promos))
	for _, p := range promos {
		if ep, ok := e.Evaluate(p, cart); ok {
			out = append(out, ep)
		}
	}
	return out
}

// Evaluate computes the savings of one promotion. ok is false when the
// promotion does not apply or yields no positive savings.
func (e *Evaluator) Evaluate(p domain.Promotion, cart domain.Cart) (domain.EvaluatedPromotion, bool) {
	var (
		details domain.Details
		savings int64
	)
	switch p.Type() {
	case domain.TypeDelivery:
		newCost, ok := deliveryCost(p, cart)
		if !ok {
			return domain.EvaluatedPromotion{}, false
		}
		savings = cart.DeliveryCost - newCost
		details.NewDeliveryCost = &newCost
	case domain.TypeProduct:
		details.Lines, savings = e.productSavings(p, cart)
	default:
		return domain.EvaluatedPromotion{}, false
	}

	if savings <= 0 {
		return domain.EvaluatedPromotion{}, false
	}
	return domain.EvaluatedPromotion{Promotion: p, Type: p.Type(), Savings: savings, Details: details}, true
}

func deliveryCost(p domain.Promotion, cart domain.Cart) (int64, bool) {
	base := cart.DeliveryCost
	switch p.SubType {
	case domain.FreeDelivery:
		return 0, true
	case domain.DiscountDelivery, domain.PercentageDiscount:
		return base - money.Percent(base, p.DiscountPercent), true
	case domain.FixedDelivery:
		if p.DeliveryCost >= base {
			return 0, false
		}
		return p.DeliveryCost, true
	case domain.FirstOrder:
		if cart.HasPriorOrders {
			return 0, false
		}
		if p.DiscountPercent.IsZero() {
			return 0, true
		}
		return base - money.Percent(base, p.DiscountPercent), true
	}
	return 0, false
}

func (e *Evaluator) productSavings(p domain.Promotion, cart domain.Cart) ([]domain.LineSaving, int64) {
	switch p.SubType {
	case domain.FixedPrice:
		return e.fixedPrice(p, cart)
	case domain.BuyOneGetOne:
		return e.buyOneGetOne(p, cart)
	case domain.Bundle:
		return e.bundle(p, cart)
	}
	return nil, 0
}

// fixedPrice applies the override of each line: by product first, then by
// store. Only overrides below the current unit price count.
func (e *Evaluator) fixedPrice(p domain.Promotion, cart domain.Cart) ([]domain.LineSaving, int64) {
	var (
		lines []domain.LineSaving
		total int64
	)
	for _, it := range cart.Items {
		price, ok := override(p.Overrides, it, cart.StoreID)
		if !ok {
			continue
		}
		diff := money.ToMinorUnits(it.UnitPrice, e.factor) - money.ToMinorUnits(price, e.factor)
		if diff <= 0 {
			continue
		}
		s := diff * it.Quantity
		lines = append(lines, domain.LineSaving{ProductID: it.ProductID, Quantity: it.Quantity, Savings: s})
		total += s
	}
	return lines, total
}

func override(overrides []domain.PriceOverride, it domain.LineItem, cartStore string) (decimal.Decimal, bool) {
	for _, o := range overrides {
		if o.Target == target.Product(it.ProductID) {
			return o.Price, true
		}
	}
	store := it.StoreID
	if store == "" {
		store = cartStore
	}
	if store == "" {
		return decimal.Zero, false
	}
	for _, o := range overrides {
		if o.Target == target.Store(store) {
			return o.Price, true
		}
	}
	return decimal.Zero, false
}

// buyOneGetOne makes every second unit of a targeted product free.
func (e *Evaluator) buyOneGetOne(p domain.Promotion, cart domain.Cart) ([]domain.LineSaving, int64) {
	var (
		lines []domain.LineSaving
		total int64
	)
	for _, id := range p.Products {
		free := cart.Quantity(id) / 2
		if free == 0 {
			continue
		}
		it, _ := cart.Item(id)
		s := free * money.ToMinorUnits(it.UnitPrice, e.factor)
		if s <= 0 {
			continue
		}
		lines = append(lines, domain.LineSaving{ProductID: id, Quantity: free, Savings: s})
		total += s
	}
	return lines, total
}

// bundle replaces one unit of every bundle product with the bundle price.
// Every product must be in the cart.
func (e *Evaluator) bundle(p domain.Promotion, cart domain.Cart) ([]domain.LineSaving, int64) {
	var sum int64
	lines := make([]domain.LineSaving, 0, len(p.Products))
	for _, id := range p.Products {
		it, ok := cart.Item(id)
		if !ok {
			return nil, 0
		}
		sum += money.ToMinorUnits(it.UnitPrice, e.factor)
		lines = append(lines, domain.LineSaving{ProductID: id, Quantity: 1})
	}
	return lines, sum - money.ToMinorUnits(p.BundlePrice, e.factor)
}
