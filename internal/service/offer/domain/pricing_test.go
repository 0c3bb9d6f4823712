package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeOffer(basePrice float64, tiers []Tier, participants int) *Offer {
	return &Offer{
		ID:                  "offer-1",
		SellerID:            "seller-1",
		Title:               "bulk order",
		BasePrice:           basePrice,
		Tiers:               tiers,
		Deadline:            time.Now().Add(24 * time.Hour),
		Status:              StatusActive,
		CurrentParticipants: participants,
	}
}

func standardTiers() []Tier {
	return []Tier{
		{MinParticipants: 10, UnitPrice: 289},
		{MinParticipants: 25, UnitPrice: 269},
		{MinParticipants: 50, UnitPrice: 249},
		{MinParticipants: 100, UnitPrice: 229},
	}
}

func TestQuoteFor(t *testing.T) {
	offer := activeOffer(299, standardTiers(), 45)

	quote, err := QuoteFor(offer)
	require.NoError(t, err)

	assert.Equal(t, 269.0, quote.UnitPrice)
	assert.Equal(t, 30.0, quote.Savings)
	assert.Equal(t, 10, quote.SavingsPercent)
	require.NotNil(t, quote.NextTier)
	assert.Equal(t, 50, quote.NextTier.MinParticipants)
	assert.Equal(t, 249.0, quote.NextTier.UnitPrice)
	assert.Equal(t, 5, quote.NextTier.Needed)
}

func TestCurrentPrice(t *testing.T) {
	tests := []struct {
		name         string
		participants int
		want         float64
	}{
		{"below first tier", 9, 299},
		{"exactly first tier", 10, 289},
		{"between tiers", 30, 269},
		{"exactly last tier", 100, 229},
		{"beyond last tier", 500, 229},
		{"zero participants", 0, 299},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := activeOffer(299, standardTiers(), tt.participants)
			price, err := CurrentPrice(offer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, price)
		})
	}
}

func TestCurrentPriceRequiresActive(t *testing.T) {
	offer := activeOffer(299, standardTiers(), 45)
	offer.Status = StatusDraft

	_, err := CurrentPrice(offer)
	assert.ErrorIs(t, err, ErrInvalidState)

	// PreviewPrice 按同样的规则计算，只是不检查状态
	assert.Equal(t, 269.0, PreviewPrice(offer))
}

func TestNextTierAtCeiling(t *testing.T) {
	offer := activeOffer(299, standardTiers(), 100)
	assert.Nil(t, NextTier(offer))

	offer.CurrentParticipants = 99
	next := NextTier(offer)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.Needed)
}

func TestNoTiers(t *testing.T) {
	offer := activeOffer(50, nil, 1000)

	price, err := CurrentPrice(offer)
	require.NoError(t, err)
	assert.Equal(t, 50.0, price)
	assert.Nil(t, NextTier(offer))

	quote, err := QuoteFor(offer)
	require.NoError(t, err)
	assert.Equal(t, 0.0, quote.Savings)
	assert.Equal(t, 0, quote.SavingsPercent)
}

// 价格永远不高于基础价，且随人数增加不升价。
func TestPriceMonotonicity(t *testing.T) {
	offer := activeOffer(299, standardTiers(), 0)

	prev := offer.BasePrice
	for n := 0; n <= 150; n++ {
		offer.CurrentParticipants = n
		price, err := CurrentPrice(offer)
		require.NoError(t, err)
		assert.LessOrEqual(t, price, offer.BasePrice, "participants=%d", n)
		assert.LessOrEqual(t, price, prev, "participants=%d", n)
		prev = price
	}
}
