package service

import "courier-dispatch/internal/features/promotions/domain"

// Resolve picks at most one delivery and one product promotion, the first of
// each type in evaluation order, and computes the cart totals.
func Resolve(cart domain.Cart, evaluated []domain.EvaluatedPromotion) domain.Result {
	res := domain.NoPromotions(cart)

	for i := range evaluated {
		ep := evaluated[i]
		switch {
		case ep.Type == domain.TypeDelivery && res.Delivery == nil:
			res.Delivery = &ep
		case ep.Type == domain.TypeProduct && res.Product == nil:
			res.Product = &ep
		default:
			continue
		}
		res.Applied = append(res.Applied, ep)
		res.TotalSavings += ep.Savings
	}

	if res.Delivery != nil && res.Delivery.Details.NewDeliveryCost != nil {
		res.DeliveryCost = *res.Delivery.Details.NewDeliveryCost
	}
	if res.Product != nil {
		res.ProductSavings = res.Product.Savings
	}
	res.NewOrderTotal = cart.Amount + res.DeliveryCost - res.ProductSavings
	return res
}
