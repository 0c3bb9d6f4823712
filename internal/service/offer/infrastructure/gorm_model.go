// internal/service/offer/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"
)

// OfferModel 对应数据库中的 offer 表。
// 阶梯表以 JSON 字符串存储：它随报价整体读写，从不按档位查询。
type OfferModel struct {
	ID                  string `gorm:"primaryKey;size:36"`
	SellerID            string `gorm:"index;size:64"`
	Title               string `gorm:"size:200"`
	Description         string `gorm:"type:text"`
	Category            string `gorm:"size:100"`
	Region              string `gorm:"size:50"`
	BasePrice           float64
	Tiers               string `gorm:"type:text"`
	Deadline            time.Time
	MinJoiners          int
	Visibility          string `gorm:"size:20"`
	Featured            bool
	Status              string `gorm:"index;size:20"`
	CurrentParticipants int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	PublishedAt         sql.NullTime
	ResolvedAt          sql.NullTime
}

// TableName 指定 GORM 应该使用的表名
func (OfferModel) TableName() string {
	return "offer"
}

// ParticipantModel 对应数据库中的 offer_participant 表。
// (OfferID, UserID) 上的唯一索引承担去重：重复加入由插入冲突判定。
type ParticipantModel struct {
	ID       uint   `gorm:"primaryKey"`
	OfferID  string `gorm:"uniqueIndex:idx_offer_user;size:36"`
	UserID   string `gorm:"uniqueIndex:idx_offer_user;size:64"`
	JoinedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ParticipantModel) TableName() string {
	return "offer_participant"
}

// SettingsModel 对应数据库中的 platform_settings 表。
// 每次修改插入新的一行，最新版本即当前生效配置。
type SettingsModel struct {
	Version                 int64 `gorm:"primaryKey;autoIncrement"`
	GroupOffersEnabled      bool
	DynamicDiscountsEnabled bool
	AutoKYCApproval         bool
	PublishCost             int64
	CreatedAt               time.Time
}

// TableName 指定 GORM 应该使用的表名
func (SettingsModel) TableName() string {
	return "platform_settings"
}
