package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// EventPromotionEvaluated is published after every engine run.
const EventPromotionEvaluated = "promotion.evaluated"

var ErrInvalidCart = errors.New("invalid cart")

// LineItem is one product row of a cart. UnitPrice is in major units.
type LineItem struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Cart is the order context promotions are evaluated against. Amount and
// DeliveryCost are minor units.
type Cart struct {
	StoreID        string     `json:"store_id"`
	Location       Location   `json:"location"`
	UserID         string     `json:"user_id,omitempty"`
	HasPriorOrders bool       `json:"has_prior_orders"`
	Amount         int64      `json:"order_amount"`
	DeliveryCost   int64      `json:"delivery_cost"`
	Items          []LineItem `json:"items,omitempty"`
}

// Validate rejects carts the evaluator cannot price.
func (c Cart) Validate() error {
	if c.Amount < 0 || c.DeliveryCost < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidCart)
	}
	for _, it := range c.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: line item without product_id", ErrInvalidCart)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: %s has quantity %d", ErrInvalidCart, it.ProductID, it.Quantity)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: %s has a negative unit_price", ErrInvalidCart, it.ProductID)
		}
	}
	return nil
}

// Quantity returns the total units of productID in the cart.
func (c Cart) Quantity(productID string) int64 {
	var n int64
	for _, it := range c.Items {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n
}

// Item returns the first line for productID.
func (c Cart) Item(productID string) (LineItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}
