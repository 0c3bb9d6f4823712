// internal/service/offer/domain/pricing.go
package domain

import (
	"math"

	"github.com/pkg/errors"
)

// 定价引擎：纯函数，无任何可变状态。
// 所有需要"当前档位"的调用方（详情页、加入回执、后台）都只认这里的计算结果。

// NextTierInfo 描述下一个待解锁的阶梯。
type NextTierInfo struct {
	MinParticipants int     `json:"minParticipants"`
	UnitPrice       float64 `json:"unitPrice"`
	Needed          int     `json:"needed"` // 还差多少人解锁
}

// Quote 是一次定价计算的完整结果。
type Quote struct {
	UnitPrice      float64       `json:"unitPrice"`
	Savings        float64       `json:"savings"`
	SavingsPercent int           `json:"savingsPercent"`
	NextTier       *NextTierInfo `json:"nextTier,omitempty"` // nil 表示已到最高档
}

// CurrentPrice 返回 Active 报价的当前成交单价：
// 人数未达首档时为 basePrice，否则取已解锁的最高档（MinParticipants <= 当前人数的最后一档）。
func CurrentPrice(o *Offer) (float64, error) {
	if o.Status != StatusActive {
		return 0, errors.Wrapf(ErrInvalidState, "price is only defined for ACTIVE offers, offer is %s", o.Status)
	}
	return PreviewPrice(o), nil
}

// PreviewPrice 按同样的规则计算价格，但不检查状态。
// 用于 Draft/PendingApproval 报价的预览场景。
func PreviewPrice(o *Offer) float64 {
	price := o.BasePrice
	for _, t := range o.Tiers {
		if t.MinParticipants > o.CurrentParticipants {
			break
		}
		price = t.UnitPrice
	}
	return price
}

// NextTier 返回第一个尚未解锁的阶梯；已达最高档时返回 nil。
func NextTier(o *Offer) *NextTierInfo {
	for _, t := range o.Tiers {
		if t.MinParticipants > o.CurrentParticipants {
			return &NextTierInfo{
				MinParticipants: t.MinParticipants,
				UnitPrice:       t.UnitPrice,
				Needed:          t.MinParticipants - o.CurrentParticipants,
			}
		}
	}
	return nil
}

// QuoteFor 汇总 Active 报价的当前单价、节省金额与下一档信息。
func QuoteFor(o *Offer) (*Quote, error) {
	if _, err := CurrentPrice(o); err != nil {
		return nil, err
	}
	return PreviewQuoteFor(o), nil
}

// PreviewQuoteFor 按同样的规则汇总报价信息，但不检查状态。
func PreviewQuoteFor(o *Offer) *Quote {
	price := PreviewPrice(o)
	savings := o.BasePrice - price
	return &Quote{
		UnitPrice:      price,
		Savings:        savings,
		SavingsPercent: int(math.Round(100 * savings / o.BasePrice)),
		NextTier:       NextTier(o),
	}
}
