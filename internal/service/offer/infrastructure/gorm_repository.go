// internal/service/offer/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gpoffer/internal/service/offer/domain"
)

// GormOfferRepository 是 OfferRepository 的 GORM 实现。
type GormOfferRepository struct {
	db *gorm.DB
}

func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// AutoMigrate 创建/更新报价相关表结构。
func (r *GormOfferRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&OfferModel{}, &ParticipantModel{}, &SettingsModel{})
}

func (r *GormOfferRepository) Save(ctx context.Context, offer *domain.Offer) error {
	model, err := ToOfferModel(offer)
	if err != nil {
		return err
	}
	// 主键冲突时整行更新（upsert），创建与修改共用一条路径
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

func (r *GormOfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	var model OfferModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToDomainOffer(&model)
}

func (r *GormOfferRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Offer, error) {
	query := r.db.WithContext(ctx).Model(&OfferModel{})
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PublicOnly {
		query = query.Where("visibility = ?", string(domain.VisibilityPublic))
	}

	var models []OfferModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Offer, 0, len(models))
	for i := range models {
		offer, err := ToDomainOffer(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, offer)
	}
	return out, nil
}

// CompareAndSetStatus 用一条条件 UPDATE 实现 CAS：
// 只有状态仍为 expected 的行会被改写，RowsAffected 告诉我们是否赢得竞争。
func (r *GormOfferRepository) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.Status, resolvedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&OfferModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]interface{}{
			"status":      string(next),
			"resolved_at": resolvedAt,
			"updated_at":  resolvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormOfferRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&OfferModel{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Status]int64, len(rows))
	for _, r := range rows {
		counts[domain.Status(r.Status)] = r.N
	}
	return counts, nil
}

// GormParticipantRepository 是 ParticipantRepository 的 GORM 实现。
// 参与记录插入与报价人数递增在同一个数据库事务内提交。
type GormParticipantRepository struct {
	db *gorm.DB
}

func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

func (r *GormParticipantRepository) Add(ctx context.Context, join domain.ParticipantJoin) (bool, int, error) {
	var created bool
	var newCount int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 唯一索引 + DoNothing：重复的 (offerID, userID) 不报错，RowsAffected 为 0
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ParticipantModel{
			OfferID:  join.OfferID,
			UserID:   join.UserID,
			JoinedAt: join.JoinedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected == 1

		if created {
			if err := tx.Model(&OfferModel{}).Where("id = ?", join.OfferID).
				Update("current_participants", gorm.Expr("current_participants + 1")).Error; err != nil {
				return err
			}
		}

		var model OfferModel
		if err := tx.Select("current_participants").Where("id = ?", join.OfferID).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOfferNotFound
			}
			return err
		}
		newCount = model.CurrentParticipants
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return created, newCount, nil
}

func (r *GormParticipantRepository) ListByOffer(ctx context.Context, offerID string) ([]domain.ParticipantJoin, error) {
	var models []ParticipantModel
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("joined_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.ParticipantJoin, 0, len(models))
	for _, m := range models {
		out = append(out, domain.ParticipantJoin{OfferID: m.OfferID, UserID: m.UserID, JoinedAt: m.JoinedAt})
	}
	return out, nil
}

// GormSettingsRepository 把平台设置存成只追加的版本化行。
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) Current(ctx context.Context) (domain.PlatformSettings, error) {
	var model SettingsModel
	err := r.db.WithContext(ctx).Order("version DESC").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultPlatformSettings(), nil
	}
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	return domain.PlatformSettings{
		Version:                 model.Version,
		GroupOffersEnabled:      model.GroupOffersEnabled,
		DynamicDiscountsEnabled: model.DynamicDiscountsEnabled,
		AutoKYCApproval:         model.AutoKYCApproval,
		PublishCost:             model.PublishCost,
	}, nil
}

func (r *GormSettingsRepository) Update(ctx context.Context, settings domain.PlatformSettings) (domain.PlatformSettings, error) {
	model := SettingsModel{
		GroupOffersEnabled:      settings.GroupOffersEnabled,
		DynamicDiscountsEnabled: settings.DynamicDiscountsEnabled,
		AutoKYCApproval:         settings.AutoKYCApproval,
		PublishCost:             settings.PublishCost,
		CreatedAt:               time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.PlatformSettings{}, err
	}
	settings.Version = model.Version
	return settings, nil
}
