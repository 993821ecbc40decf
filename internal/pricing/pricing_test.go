package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"granel-store/internal/model"
)

func TestCalculator_Fee(t *testing.T) {
	c := NewCalculator(decimal.NewFromInt(500))

	assert.True(t, c.Fee(model.DeliveryDelivery).Equal(decimal.NewFromInt(500)))
	assert.True(t, c.Fee(model.DeliveryPickup).IsZero())
}

func TestCalculator_Quote_Pickup(t *testing.T) {
	c := NewCalculator(decimal.NewFromInt(500))

	// subtotal=10000, 10% discount already computed as 1000, pickup
	q := c.Quote(decimal.NewFromInt(10000), decimal.NewFromInt(1000), model.DeliveryPickup)

	assert.True(t, q.Total.Equal(decimal.NewFromInt(9000)), "got %s", q.Total)
	assert.True(t, q.DeliveryFee.IsZero())
}

func TestCalculator_Quote_Delivery(t *testing.T) {
	c := NewCalculator(decimal.NewFromInt(500))

	// Two lines: 2 x 1200 + 1 x 2200 = 4600, no discount, delivery fee 500
	q := c.Quote(decimal.NewFromInt(4600), decimal.Zero, model.DeliveryDelivery)

	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(4600)))
	assert.True(t, q.DeliveryFee.Equal(decimal.NewFromInt(500)))
	assert.True(t, q.Total.Equal(decimal.NewFromInt(5100)), "got %s", q.Total)
}

func TestCalculator_Quote_TotalIdentity(t *testing.T) {
	c := NewCalculator(decimal.NewFromInt(500))

	cases := []struct {
		subtotal, discount int64
		option             model.DeliveryOption
	}{
		{10000, 0, model.DeliveryPickup},
		{10000, 1000, model.DeliveryDelivery},
		{4600, 4600, model.DeliveryPickup},
		{500, 250, model.DeliveryDelivery},
	}

	for _, tc := range cases {
		q := c.Quote(decimal.NewFromInt(tc.subtotal), decimal.NewFromInt(tc.discount), tc.option)
		want := q.Subtotal.Sub(q.DiscountAmount).Add(q.DeliveryFee)
		assert.True(t, q.Total.Equal(want), "total %s != %s", q.Total, want)
	}
}

func TestCalculator_Quote_ClampsDiscount(t *testing.T) {
	c := NewCalculator(decimal.NewFromInt(500))

	// Discount larger than the subtotal is clamped, never a negative total.
	q := c.Quote(decimal.NewFromInt(1000), decimal.NewFromInt(5000), model.DeliveryPickup)

	assert.True(t, q.DiscountAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, q.Total.IsZero(), "got %s", q.Total)

	q = c.Quote(decimal.NewFromInt(1000), decimal.NewFromInt(5000), model.DeliveryDelivery)
	assert.True(t, q.Total.Equal(decimal.NewFromInt(500)), "got %s", q.Total)
}

func TestCalculator_Quote_NegativeDiscountIgnored(t *testing.T) {
	c := NewCalculator(decimal.NewFromInt(500))

	q := c.Quote(decimal.NewFromInt(1000), decimal.NewFromInt(-200), model.DeliveryPickup)

	assert.True(t, q.DiscountAmount.IsZero())
	assert.True(t, q.Total.Equal(decimal.NewFromInt(1000)))
}
