package domain

import (
	"testing"
	"time"

	"courier-dispatch/internal/core/target"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestSubType_Type(t *testing.T) {
	assert.Equal(t, TypeDelivery, FreeDelivery.Type())
	assert.Equal(t, TypeDelivery, FirstOrder.Type())
	assert.Equal(t, TypeProduct, FixedPrice.Type())
	assert.Equal(t, TypeProduct, BuyOneGetOne.Type())
	assert.Equal(t, Type(""), SubType("cashback").Type())
}

func TestGeoScope_Matches(t *testing.T) {
	cairo := Location{CountryID: "1", CityID: "7", ZoneID: "z1"}

	tests := []struct {
		name  string
		scope GeoScope
		want  bool
	}{
		{"unrestricted", GeoScope{}, true},
		{"country only", GeoScope{CountryID: "1"}, true},
		{"country and city", GeoScope{CountryID: "1", CityID: "7"}, true},
		{"other city", GeoScope{CountryID: "1", CityID: "9"}, false},
		{"other country", GeoScope{CountryID: "2"}, false},
		{"zone mismatch", GeoScope{CountryID: "1", CityID: "7", ZoneID: "z2"}, false},
		{"city without country", GeoScope{CityID: "7"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Matches(cairo))
		})
	}
}

func TestPromotion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		promo   Promotion
		wantErr error
	}{
		{"free delivery", Promotion{ID: "p1", SubType: FreeDelivery}, nil},
		{"missing id", Promotion{SubType: FreeDelivery}, ErrInvalidPromotion},
		{"unknown sub type", Promotion{ID: "p1", SubType: "cashback"}, ErrUnknownSubType},
		{"inverted band", Promotion{ID: "p1", SubType: FreeDelivery, MinOrderAmount: ptr(int64(500)), MaxOrderAmount: ptr(int64(100))}, ErrInvalidPromotion},
		{"discount without percent", Promotion{ID: "p1", SubType: DiscountDelivery}, ErrInvalidPromotion},
		{"discount above 100", Promotion{ID: "p1", SubType: DiscountDelivery, DiscountPercent: decimal.NewFromInt(120)}, ErrInvalidPromotion},
		{"first order free", Promotion{ID: "p1", SubType: FirstOrder}, nil},
		{"negative flat fee", Promotion{ID: "p1", SubType: FixedDelivery, DeliveryCost: -1}, ErrInvalidPromotion},
		{"fixed price without overrides", Promotion{ID: "p1", SubType: FixedPrice}, ErrInvalidPromotion},
		{"fixed price on courier", Promotion{ID: "p1", SubType: FixedPrice, Overrides: []PriceOverride{{Target: target.Courier("c1"), Price: decimal.NewFromInt(1)}}}, ErrInvalidPromotion},
		{"fixed price on product", Promotion{ID: "p1", SubType: FixedPrice, Overrides: []PriceOverride{{Target: target.Product("sku"), Price: decimal.NewFromInt(1)}}}, nil},
		{"bundle of one", Promotion{ID: "p1", SubType: Bundle, Products: []string{"a"}, BundlePrice: decimal.NewFromInt(5)}, ErrInvalidPromotion},
		{"bogo without products", Promotion{ID: "p1", SubType: BuyOneGetOne}, ErrInvalidPromotion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.promo.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPromotion_Running(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	p := Promotion{Active: true, StartDate: start, EndDate: &end}

	assert.False(t, p.Running(start.Add(-time.Second)))
	assert.True(t, p.Running(start))
	assert.True(t, p.Running(end))
	assert.False(t, p.Running(end.Add(time.Second)))

	p.EndDate = nil
	assert.True(t, p.Running(start.AddDate(5, 0, 0)))

	p.Active = false
	assert.False(t, p.Running(start.Add(time.Hour)))
}

func TestPromotion_Limits(t *testing.T) {
	p := Promotion{MinOrderAmount: ptr(int64(1000)), MaxOrderAmount: ptr(int64(5000))}
	assert.False(t, p.AmountInBand(999))
	assert.True(t, p.AmountInBand(1000))
	assert.True(t, p.AmountInBand(5000))
	assert.False(t, p.AmountInBand(5001))
	assert.True(t, Promotion{}.AmountInBand(0))

	p.UsageLimit = ptr(int64(3))
	p.CurrentUsage = 2
	assert.True(t, p.HasGlobalUsage())
	p.CurrentUsage = 3
	assert.False(t, p.HasGlobalUsage())

	p.UsageLimitPerUser = ptr(int64(1))
	assert.True(t, p.HasUserUsage(0))
	assert.False(t, p.HasUserUsage(1))
	assert.True(t, Promotion{}.HasUserUsage(99))
}

func TestCart_Validate(t *testing.T) {
	ok := Cart{Amount: 1000, DeliveryCost: 200, Items: []LineItem{{ProductID: "a", Quantity: 2, UnitPrice: decimal.NewFromInt(5)}}}
	assert.NoError(t, ok.Validate())

	assert.ErrorIs(t, Cart{Amount: -1}.Validate(), ErrInvalidCart)
	assert.ErrorIs(t, Cart{Items: []LineItem{{ProductID: "a"}}}.Validate(), ErrInvalidCart)
	assert.ErrorIs(t, Cart{Items: []LineItem{{Quantity: 1}}}.Validate(), ErrInvalidCart)
}

func TestCart_Quantity(t *testing.T) {
	c := Cart{Items: []LineItem{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 3},
	}}
	assert.Equal(t, int64(5), c.Quantity("a"))
	assert.Equal(t, int64(0), c.Quantity("z"))

	it, ok := c.Item("b")
	assert.True(t, ok)
	assert.Equal(t, int64(1), it.Quantity)
}

func TestNoPromotions(t *testing.T) {
	r := NoPromotions(Cart{Amount: 10000, DeliveryCost: 500})
	assert.Equal(t, int64(10500), r.NewOrderTotal)
	assert.Equal(t, int64(500), r.DeliveryCost)
	assert.Empty(t, r.IDs())
}
