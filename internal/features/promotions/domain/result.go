package domain

// LineSaving is the discount granted on one product line.
type LineSaving struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Savings   int64  `json:"savings"`
}

// Details explains how the savings of an evaluated promotion were reached.
type Details struct {
	NewDeliveryCost *int64       `json:"new_delivery_cost,omitempty"`
	Lines           []LineSaving `json:"lines,omitempty"`
}

// EvaluatedPromotion is a promotion that yields positive savings for a cart.
type EvaluatedPromotion struct {
	Promotion Promotion `json:"promotion"`
	Type      Type      `json:"type"`
	Savings   int64     `json:"savings"`
	Details   Details   `json:"details"`
}

// Result is the outcome of pricing a cart. All amounts are minor units.
type Result struct {
	Applied        []EvaluatedPromotion `json:"applied"`
	Delivery       *EvaluatedPromotion  `json:"delivery_promotion,omitempty"`
	Product        *EvaluatedPromotion  `json:"product_promotion,omitempty"`
	TotalSavings   int64                `json:"total_savings"`
	DeliveryCost   int64                `json:"delivery_cost"`
	ProductSavings int64                `json:"product_savings"`
	OrderAmount    int64                `json:"order_amount"`
	NewOrderTotal  int64                `json:"new_order_total"`
	// Degraded is set when evaluation failed and no promotions were applied.
	Degraded bool `json:"degraded,omitempty"`
}

// NoPromotions is the result of a cart with nothing applied.
func NoPromotions(c Cart) Result {
	return Result{
		Applied:       []EvaluatedPromotion{},
		DeliveryCost:  c.DeliveryCost,
		OrderAmount:   c.Amount,
		NewOrderTotal: c.Amount + c.DeliveryCost,
	}
}

// IDs lists the ids of the applied promotions in order.
func (r Result) IDs() []string {
	ids := make([]string, 0, len(r.Applied))
	for _, e := range r.Applied {
		ids = append(ids, e.Promotion.ID)
	}
	return ids
}
