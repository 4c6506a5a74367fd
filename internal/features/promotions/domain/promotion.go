package domain

import (
	"errors"
	"fmt"
	"time"

	"courier-dispatch/internal/core/target"

	"github.com/shopspring/decimal"
)

// Type partitions promotions for conflict resolution.
type Type string

const (
	TypeDelivery Type = "delivery"
	TypeProduct  Type = "product"
)

// SubType selects the evaluation rule.
type SubType string

const (
	FreeDelivery       SubType = "free_delivery"
	DiscountDelivery   SubType = "discount_delivery"
	FixedDelivery      SubType = "fixed_delivery"
	PercentageDiscount SubType = "percentage_discount"
	FirstOrder         SubType = "first_order"
	FixedPrice         SubType = "fixed_price"
	Bundle             SubType = "bundle"
	BuyOneGetOne       SubType = "buy_one_get_one"
)

// Type returns the partition of the sub-type, or "" when unknown.
func (s SubType) Type() Type {
	switch s {
	case FreeDelivery, DiscountDelivery, FixedDelivery, PercentageDiscount, FirstOrder:
		return TypeDelivery
	case FixedPrice, Bundle, BuyOneGetOne:
		return TypeProduct
	}
	return ""
}

var (
	ErrUnknownSubType     = errors.New("unknown promotion sub type")
	ErrInvalidPromotion   = errors.New("invalid promotion")
	ErrPromotionNotFound  = errors.New("promotion not found")
	ErrUsageLimitReached  = errors.New("promotion usage limit reached")
	ErrUserLimitReached   = errors.New("promotion per-user limit reached")
	ErrPromotionNotActive = errors.New("promotion not active")
)

// GeoScope restricts a promotion to a region. Empty levels are unrestricted;
// every set level must match.
type GeoScope struct {
	CountryID string `json:"country_id,omitempty" yaml:"country_id"`
	CityID    string `json:"city_id,omitempty" yaml:"city_id"`
	ZoneID    string `json:"zone_id,omitempty" yaml:"zone_id"`
}

// Location is where the store of a cart sits.
type Location struct {
	CountryID string `json:"country_id"`
	CityID    string `json:"city_id"`
	ZoneID    string `json:"zone_id"`
}

// Matches reports whether loc lies inside the scope.
func (g GeoScope) Matches(loc Location) bool {
	if g.CountryID != "" && g.CountryID != loc.CountryID {
		return false
	}
	if g.CityID != "" && g.CityID != loc.CityID {
		return false
	}
	if g.ZoneID != "" && g.ZoneID != loc.ZoneID {
		return false
	}
	return true
}

// PriceOverride fixes the unit price of a product, or of everything a store sells.
type PriceOverride struct {
	Target target.Target   `json:"target"`
	Price  decimal.Decimal `json:"price"`
}

// Promotion is one rule of the catalog. Amounts are minor units; percentages
// and prices are decimals in major units.
type Promotion struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	SubType SubType `json:"sub_type"`

	Scope          GeoScope `json:"scope"`
	MinOrderAmount *int64   `json:"min_order_amount,omitempty"`
	MaxOrderAmount *int64   `json:"max_order_amount,omitempty"`

	UsageLimit        *int64 `json:"usage_limit,omitempty"`
	UsageLimitPerUser *int64 `json:"usage_limit_per_user,omitempty"`
	// CurrentUsage is hydrated from the usage ledger before filtering.
	CurrentUsage int64 `json:"current_usage"`

	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Active    bool       `json:"is_active"`

	DiscountPercent decimal.Decimal `json:"discount_percent"`

	// DeliveryCost is the flat fee of a fixed_delivery promotion, in minor units.
	DeliveryCost int64 `json:"delivery_cost,omitempty"`

	Overrides   []PriceOverride `json:"overrides,omitempty"`
	Products    []string        `json:"products,omitempty"`
	BundlePrice decimal.Decimal `json:"bundle_price"`
}

// Type is the partition of the promotion.
func (p Promotion) Type() Type {
	return p.SubType.Type()
}

// Validate checks the rule fields required by the sub-type.
func (p Promotion) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPromotion)
	}
	if p.SubType.Type() == "" {
		return fmt.Errorf("%w: %q on %s", ErrUnknownSubType, p.SubType, p.ID)
	}
	if p.MinOrderAmount != nil && p.MaxOrderAmount != nil && *p.MinOrderAmount > *p.MaxOrderAmount {
		return fmt.Errorf("%w: %s has min_order_amount above max_order_amount", ErrInvalidPromotion, p.ID)
	}

	hundred := decimal.NewFromInt(100)
	switch p.SubType {
	case DiscountDelivery, PercentageDiscount:
		if !p.DiscountPercent.IsPositive() || p.DiscountPercent.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s needs discount_percent in (0, 100]", ErrInvalidPromotion, p.ID)
		}
	case FirstOrder:
		if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s needs discount_percent in [0, 100]", ErrInvalidPromotion, p.ID)
		}
	case FixedDelivery:
		if p.DeliveryCost < 0 {
			return fmt.Errorf("%w: %s has a negative delivery_cost", ErrInvalidPromotion, p.ID)
		}
	case FixedPrice:
		if len(p.Overrides) == 0 {
			return fmt.Errorf("%w: %s has no overrides", ErrInvalidPromotion, p.ID)
		}
		for _, o := range p.Overrides {
			if (o.Target.Kind != target.KindProduct && o.Target.Kind != target.KindStore) || !o.Target.Valid() {
				return fmt.Errorf("%w: %s override must target a product or store", ErrInvalidPromotion, p.ID)
			}
			if o.Price.IsNegative() {
				return fmt.Errorf("%w: %s has a negative override price", ErrInvalidPromotion, p.ID)
			}
		}
	case Bundle:
		if len(p.Products) < 2 || !p.BundlePrice.IsPositive() {
			return fmt.Errorf("%w: %s needs two or more products and a bundle_price", ErrInvalidPromotion, p.ID)
		}
	case BuyOneGetOne:
		if len(p.Products) == 0 {
			return fmt.Errorf("%w: %s has no products", ErrInvalidPromotion, p.ID)
		}
	}
	return nil
}

// Running reports whether the promotion is switched on and inside its date window.
func (p Promotion) Running(now time.Time) bool {
	if !p.Active || now.Before(p.StartDate) {
		return false
	}
	return p.EndDate == nil || !now.After(*p.EndDate)
}

// AmountInBand reports whether amount lies in [min, max], nil bounds open.
func (p Promotion) AmountInBand(amount int64) bool {
	if p.MinOrderAmount != nil && amount < *p.MinOrderAmount {
		return false
	}
	if p.MaxOrderAmount != nil && amount > *p.MaxOrderAmount {
		return false
	}
	return true
}

// HasGlobalUsage reports whether the global usage limit leaves room for one more use.
func (p Promotion) HasGlobalUsage() bool {
	return p.UsageLimit == nil || p.CurrentUsage < *p.UsageLimit
}

// HasUserUsage reports whether a user who used the promotion `used` times may use it again.
func (p Promotion) HasUserUsage(used int64) bool {
	return p.UsageLimitPerUser == nil || used < *p.UsageLimitPerUser
}
