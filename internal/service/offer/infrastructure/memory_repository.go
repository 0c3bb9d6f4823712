// internal/service/offer/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"gpoffer/internal/service/offer/domain"
)

// MemoryOfferRepository 是 OfferRepository 的内存实现，用于测试与单机部署。
type MemoryOfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*domain.Offer
}

func NewMemoryOfferRepository() *MemoryOfferRepository {
	return &MemoryOfferRepository{offers: make(map[string]*domain.Offer)}
}

func (r *MemoryOfferRepository) Save(ctx context.Context, offer *domain.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *offer
	clone.Tiers = append([]domain.Tier(nil), offer.Tiers...)
	r.offers[offer.ID] = &clone
	return nil
}

func (r *MemoryOfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	offer, ok := r.offers[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	clone := *offer
	clone.Tiers = append([]domain.Tier(nil), offer.Tiers...)
	return &clone, nil
}

func (r *MemoryOfferRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Offer
	for _, offer := range r.offers {
		if filter.SellerID != "" && offer.SellerID != filter.SellerID {
			continue
		}
		if filter.Status != "" && offer.Status != filter.Status {
			continue
		}
		if filter.PublicOnly && offer.Visibility != domain.VisibilityPublic {
			continue
		}
		clone := *offer
		clone.Tiers = append([]domain.Tier(nil), offer.Tiers...)
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOfferRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.Status, resolvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offer, ok := r.offers[id]
	if !ok {
		return false, domain.ErrOfferNotFound
	}
	if offer.Status != expected {
		return false, nil
	}
	offer.Status = next
	t := resolvedAt
	offer.ResolvedAt = &t
	offer.UpdatedAt = resolvedAt
	return true, nil
}

func (r *MemoryOfferRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.Status]int64)
	for _, offer := range r.offers {
		counts[offer.Status]++
	}
	return counts, nil
}

// MemoryParticipantRepository 是 ParticipantRepository 的内存实现。
// 它持有报价仓储的引用：参与记录写入与报价参与人数的更新在同一把锁下完成，
// 对应 GORM 实现里的同一个数据库事务。
type MemoryParticipantRepository struct {
	mu     sync.Mutex
	offers *MemoryOfferRepository
	joins  map[string]map[string]domain.ParticipantJoin // offerID -> userID -> join
}

func NewMemoryParticipantRepository(offers *MemoryOfferRepository) *MemoryParticipantRepository {
	return &MemoryParticipantRepository{
		offers: offers,
		joins:  make(map[string]map[string]domain.ParticipantJoin),
	}
}

func (r *MemoryParticipantRepository) Add(ctx context.Context, join domain.ParticipantJoin) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.offers.mu.Lock()
	defer r.offers.mu.Unlock()
	offer, ok := r.offers.offers[join.OfferID]
	if !ok {
		return false, 0, domain.ErrOfferNotFound
	}

	users, exists := r.joins[join.OfferID]
	if !exists {
		users = make(map[string]domain.ParticipantJoin)
		r.joins[join.OfferID] = users
	}
	if _, joined := users[join.UserID]; joined {
		return false, offer.CurrentParticipants, nil
	}
	users[join.UserID] = join
	offer.CurrentParticipants++
	offer.UpdatedAt = join.JoinedAt
	return true, offer.CurrentParticipants, nil
}

func (r *MemoryParticipantRepository) ListByOffer(ctx context.Context, offerID string) ([]domain.ParticipantJoin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.joins[offerID]
	out := make([]domain.ParticipantJoin, 0, len(users))
	for _, join := range users {
		out = append(out, join)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

// MemorySettingsRepository 持有平台设置的版本化快照。
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings domain.PlatformSettings
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{settings: domain.DefaultPlatformSettings()}
}

func (r *MemorySettingsRepository) Current(ctx context.Context) (domain.PlatformSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, nil
}

func (r *MemorySettingsRepository) Update(ctx context.Context, settings domain.PlatformSettings) (domain.PlatformSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.Version = r.settings.Version + 1
	r.settings = settings
	return r.settings, nil
}
