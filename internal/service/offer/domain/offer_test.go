package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func draftOffer(t *testing.T) *Offer {
	t.Helper()
	offer, err := NewOffer(NewOfferParams{
		SellerID:   "seller-1",
		Title:      "bulk order",
		BasePrice:  299,
		Tiers:      standardTiers(),
		Deadline:   testNow.Add(72 * time.Hour),
		MinJoiners: 10,
	}, testNow)
	require.NoError(t, err)
	return offer
}

func TestNewOffer(t *testing.T) {
	offer := draftOffer(t)

	assert.Equal(t, StatusDraft, offer.Status)
	assert.Equal(t, 0, offer.CurrentParticipants)
	assert.Equal(t, VisibilityPublic, offer.Visibility)
	assert.Nil(t, offer.PublishedAt)
	assert.Nil(t, offer.ResolvedAt)
	assert.NotEmpty(t, offer.ID)
}

func TestNewOfferValidation(t *testing.T) {
	base := NewOfferParams{
		SellerID:  "seller-1",
		Title:     "bulk order",
		BasePrice: 299,
		Deadline:  testNow.Add(time.Hour),
	}

	missing := base
	missing.SellerID = ""
	_, err := NewOffer(missing, testNow)
	assert.ErrorIs(t, err, ErrValidation)

	past := base
	past.Deadline = testNow.Add(-time.Minute)
	_, err = NewOffer(past, testNow)
	assert.ErrorIs(t, err, ErrValidation)

	negative := base
	negative.MinJoiners = -1
	_, err = NewOffer(negative, testNow)
	assert.ErrorIs(t, err, ErrValidation)

	badTiers := base
	badTiers.Tiers = []Tier{{MinParticipants: 10, UnitPrice: 400}}
	_, err = NewOffer(badTiers, testNow)
	assert.ErrorIs(t, err, ErrValidation)

	badVisibility := base
	badVisibility.Visibility = "Hidden"
	_, err = NewOffer(badVisibility, testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLifecycleHappyPath(t *testing.T) {
	offer := draftOffer(t)

	require.NoError(t, offer.MarkPendingApproval(testNow))
	assert.Equal(t, StatusPendingApproval, offer.Status)

	require.NoError(t, offer.Approve(testNow.Add(time.Hour)))
	assert.Equal(t, StatusActive, offer.Status)
	require.NotNil(t, offer.PublishedAt)
	assert.Equal(t, testNow.Add(time.Hour), *offer.PublishedAt)

	require.NoError(t, offer.Cancel(testNow.Add(2*time.Hour)))
	assert.Equal(t, StatusCancelled, offer.Status)
	require.NotNil(t, offer.ResolvedAt)
}

func TestTransitionGuards(t *testing.T) {
	offer := draftOffer(t)

	// approve/reject/cancel 都要求特定的起始状态
	assert.ErrorIs(t, offer.Approve(testNow), ErrInvalidState)
	assert.ErrorIs(t, offer.Reject(testNow), ErrInvalidState)
	assert.ErrorIs(t, offer.Cancel(testNow), ErrInvalidState)

	require.NoError(t, offer.MarkPendingApproval(testNow))
	assert.ErrorIs(t, offer.MarkPendingApproval(testNow), ErrInvalidState)

	require.NoError(t, offer.Reject(testNow))
	assert.True(t, offer.Status.IsTerminal())

	// 终态拒绝一切迁移
	assert.ErrorIs(t, offer.Approve(testNow), ErrInvalidState)
	assert.ErrorIs(t, offer.Cancel(testNow), ErrInvalidState)
	assert.ErrorIs(t, offer.CanJoin(testNow), ErrInvalidState)
}

func TestCanJoin(t *testing.T) {
	offer := draftOffer(t)
	require.NoError(t, offer.MarkPendingApproval(testNow))
	require.NoError(t, offer.Approve(testNow))

	assert.NoError(t, offer.CanJoin(testNow.Add(time.Hour)))

	// 恰好等于截止时间算作已过期
	assert.ErrorIs(t, offer.CanJoin(offer.Deadline), ErrInvalidState)
	assert.ErrorIs(t, offer.CanJoin(offer.Deadline.Add(time.Minute)), ErrInvalidState)
}

func TestResolveOutcome(t *testing.T) {
	offer := draftOffer(t)
	require.NoError(t, offer.MarkPendingApproval(testNow))
	require.NoError(t, offer.Approve(testNow))

	// 尚未到期
	_, due := offer.ResolveOutcome(testNow)
	assert.False(t, due)

	afterDeadline := offer.Deadline.Add(time.Minute)

	offer.CurrentParticipants = 7 // below minimum of 10
	next, due := offer.ResolveOutcome(afterDeadline)
	assert.True(t, due)
	assert.Equal(t, StatusExpired, next)

	offer.CurrentParticipants = 10
	next, due = offer.ResolveOutcome(afterDeadline)
	assert.True(t, due)
	assert.Equal(t, StatusFulfilled, next)

	// 最低人数为 0 时总是成团
	offer.MinJoiners = 0
	offer.CurrentParticipants = 0
	next, _ = offer.ResolveOutcome(afterDeadline)
	assert.Equal(t, StatusFulfilled, next)
}
