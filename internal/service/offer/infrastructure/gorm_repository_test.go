package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gpoffer/internal/service/offer/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, NewGormOfferRepository(db).AutoMigrate())
	return db
}

func testOffer(t *testing.T, id string) *domain.Offer {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	offer, err := domain.NewOffer(domain.NewOfferParams{
		SellerID:  "seller-1",
		Title:     "bulk order",
		BasePrice: 299,
		Tiers: []domain.Tier{
			{MinParticipants: 10, UnitPrice: 289},
			{MinParticipants: 25, UnitPrice: 269},
		},
		Deadline:   now.Add(72 * time.Hour),
		MinJoiners: 5,
	}, now)
	require.NoError(t, err)
	offer.ID = id
	return offer
}

func TestGormOfferRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	offer := testOffer(t, "offer-1")
	require.NoError(t, repo.Save(ctx, offer))

	loaded, err := repo.FindByID(ctx, "offer-1")
	require.NoError(t, err)
	assert.Equal(t, offer.SellerID, loaded.SellerID)
	assert.Equal(t, offer.Status, loaded.Status)
	assert.Equal(t, offer.Tiers, loaded.Tiers)
	assert.Nil(t, loaded.ResolvedAt)
	assert.True(t, offer.Deadline.Equal(loaded.Deadline))

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)
}

// Save 走 upsert：同一 ID 第二次保存是整行更新，不是重复插入。
func TestGormOfferSaveIsUpsert(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	offer := testOffer(t, "offer-1")
	require.NoError(t, repo.Save(ctx, offer))

	require.NoError(t, offer.MarkPendingApproval(time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, offer))

	loaded, err := repo.FindByID(ctx, "offer-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, loaded.Status)

	all, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormOfferList(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	a := testOffer(t, "offer-a")
	b := testOffer(t, "offer-b")
	b.SellerID = "seller-2"
	b.Visibility = domain.VisibilityInviteOnly
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	bySeller, err := repo.List(ctx, domain.ListFilter{SellerID: "seller-2"})
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, "offer-b", bySeller[0].ID)

	public, err := repo.List(ctx, domain.ListFilter{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "offer-a", public[0].ID)
}

// CAS 语义：只有第一个带着正确期望状态的更新能生效。
func TestGormCompareAndSetStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	offer := testOffer(t, "offer-1")
	now := time.Now().UTC()
	require.NoError(t, offer.MarkPendingApproval(now))
	require.NoError(t, offer.Approve(now))
	require.NoError(t, repo.Save(ctx, offer))

	resolvedAt := now.Add(72 * time.Hour)
	won, err := repo.CompareAndSetStatus(ctx, "offer-1", domain.StatusActive, domain.StatusFulfilled, resolvedAt)
	require.NoError(t, err)
	assert.True(t, won)

	// 第二个竞争者的期望状态已经过期
	won, err = repo.CompareAndSetStatus(ctx, "offer-1", domain.StatusActive, domain.StatusExpired, resolvedAt)
	require.NoError(t, err)
	assert.False(t, won)

	loaded, err := repo.FindByID(ctx, "offer-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, loaded.Status)
	require.NotNil(t, loaded.ResolvedAt)
	assert.True(t, resolvedAt.Equal(*loaded.ResolvedAt))
}

func TestGormCountByStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testOffer(t, "offer-a")))
	require.NoError(t, repo.Save(ctx, testOffer(t, "offer-b")))
	active := testOffer(t, "offer-c")
	now := time.Now().UTC()
	require.NoError(t, active.MarkPendingApproval(now))
	require.NoError(t, active.Approve(now))
	require.NoError(t, repo.Save(ctx, active))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusDraft])
	assert.Equal(t, int64(1), counts[domain.StatusActive])
}

func TestGormParticipantAdd(t *testing.T) {
	db := openTestDB(t)
	offers := NewGormOfferRepository(db)
	participants := NewGormParticipantRepository(db)
	ctx := context.Background()

	require.NoError(t, offers.Save(ctx, testOffer(t, "offer-1")))
	joinedAt := time.Now().UTC()

	created, count, err := participants.Add(ctx, domain.ParticipantJoin{OfferID: "offer-1", UserID: "buyer-1", JoinedAt: joinedAt})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, count)

	// 重复加入：不报错、不递增
	created, count, err = participants.Add(ctx, domain.ParticipantJoin{OfferID: "offer-1", UserID: "buyer-1", JoinedAt: joinedAt})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, count)

	created, count, err = participants.Add(ctx, domain.ParticipantJoin{OfferID: "offer-1", UserID: "buyer-2", JoinedAt: joinedAt})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, count)

	loaded, err := offers.FindByID(ctx, "offer-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentParticipants)

	joins, err := participants.ListByOffer(ctx, "offer-1")
	require.NoError(t, err)
	assert.Len(t, joins, 2)
}

func TestGormParticipantAddUnknownOffer(t *testing.T) {
	db := openTestDB(t)
	participants := NewGormParticipantRepository(db)

	_, _, err := participants.Add(context.Background(), domain.ParticipantJoin{
		OfferID: "missing", UserID: "buyer-1", JoinedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)
}

func TestGormSettingsVersioning(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	// 空表返回默认设置
	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPlatformSettings(), current)

	current.PublishCost = 30
	updated, err := repo.Update(ctx, current)
	require.NoError(t, err)
	assert.Greater(t, updated.Version, int64(0))

	updated.AutoKYCApproval = true
	second, err := repo.Update(ctx, updated)
	require.NoError(t, err)
	assert.Greater(t, second.Version, updated.Version)

	latest, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Version, latest.Version)
	assert.Equal(t, int64(30), latest.PublishCost)
	assert.True(t, latest.AutoKYCApproval)
}
