// internal/service/offer/application/dto.go
package application

import (
	"time"

	"gpoffer/internal/service/offer/domain"
)

// CreateOfferRequest 是创建报价的入参载体。
type CreateOfferRequest struct {
	SellerID    string        `json:"sellerId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Region      string        `json:"region,omitempty"`
	BasePrice   float64       `json:"basePrice"`
	Tiers       []domain.Tier `json:"tiers"`
	Deadline    time.Time     `json:"deadline"`
	MinJoiners  int           `json:"minimumJoiners"`
	Visibility  string        `json:"visibility,omitempty"`
	Featured    bool          `json:"featured,omitempty"`
}

// JoinOfferResponse 是一次成功加入（或幂等重复加入）的回执：
// 返回实时报价信息，买家立刻看到自己解锁了什么价格。
type JoinOfferResponse struct {
	OfferID        string               `json:"offerId"`
	AlreadyJoined  bool                 `json:"alreadyJoined"`
	Participants   int                  `json:"participants"`
	UnitPrice      float64              `json:"unitPrice"`
	Savings        float64              `json:"savings"`
	SavingsPercent int                  `json:"savingsPercent"`
	NextTier       *domain.NextTierInfo `json:"nextTier,omitempty"`
}

// SweepResult 汇总一轮到期扫描的结果。
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Fulfilled int `json:"fulfilled"`
	Expired   int `json:"expired"`
	Conflicts int `json:"conflicts"` // CAS 输掉的次数，属正常现象
}

// PlatformStats 是后台的平台统计。
type PlatformStats struct {
	TotalOffers   int64                   `json:"totalOffers"`
	OffersByState map[domain.Status]int64 `json:"offersByState"`
	Settings      domain.PlatformSettings `json:"settings"`
}
