// internal/service/offer/domain/repository.go
package domain

import (
	"context"
	"time"
)

// ParticipantJoin 是一条去重后的参与记录。
// (OfferID, UserID) 全局唯一：重复加入是 no-op，不是错误。
type ParticipantJoin struct {
	OfferID  string    `json:"offerId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ListFilter 约束 List 返回的报价集合。零值字段表示不过滤。
type ListFilter struct {
	SellerID   string
	Status     Status
	PublicOnly bool // 只返回 Public 可见性的报价（面向买家的列表）
}

// OfferRepository 定义了报价聚合的持久化接口。
// 它位于领域层，由基础设施层实现（内存版用于测试，GORM 版用于生产）。
// 仓储从不裁决状态迁移的合法性，只忠实地保存聚合并提供 CAS 原语。
type OfferRepository interface {
	Save(ctx context.Context, offer *Offer) error
	FindByID(ctx context.Context, id string) (*Offer, error)
	List(ctx context.Context, filter ListFilter) ([]*Offer, error)

	// CompareAndSetStatus 仅当报价当前状态等于 expected 时写入 next 与 resolvedAt，
	// 返回是否写入成功。sweep 的多个 worker 依赖它保证至多一次迁移被提交。
	CompareAndSetStatus(ctx context.Context, id string, expected, next Status, resolvedAt time.Time) (bool, error)

	// CountByStatus 返回各状态的报价数量，供后台统计使用。
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// ParticipantRepository 管理参与记录及派生的参与人数。
type ParticipantRepository interface {
	// Add 幂等写入一条参与记录：首次写入返回 created=true 并把报价的
	// 参与人数 +1；重复的 (offerID, userID) 返回 created=false，人数不变。
	// 记录写入与计数更新必须在同一个原子单元内完成。
	Add(ctx context.Context, join ParticipantJoin) (created bool, newCount int, err error)

	ListByOffer(ctx context.Context, offerID string) ([]ParticipantJoin, error)
}

// SettingsRepository 持有平台设置的版本化快照。
type SettingsRepository interface {
	Current(ctx context.Context) (PlatformSettings, error)
	// Update 写入新的设置并递增版本号，返回生效后的快照。
	Update(ctx context.Context, settings PlatformSettings) (PlatformSettings, error)
}
