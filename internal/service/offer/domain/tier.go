// internal/service/offer/domain/tier.go
package domain

import "github.com/pkg/errors"

// Tier 是一条阶梯价：参与人数达到 MinParticipants 后解锁 UnitPrice。
type Tier struct {
	MinParticipants int     `json:"minParticipants"`
	UnitPrice       float64 `json:"unitPrice"`
}

// ValidateTiers 校验阶梯表的单调性约束：
//   - MinParticipants 严格递增，且首档 >= 1
//   - 每一档 UnitPrice 都严格低于 basePrice，且随人数递增不升价
//
// 空阶梯表是合法的：报价始终按 basePrice 成交。
func ValidateTiers(basePrice float64, tiers []Tier) error {
	if basePrice <= 0 {
		return errors.Wrap(ErrValidation, "base price must be positive")
	}
	prevMin := 0
	prevPrice := basePrice
	for i, t := range tiers {
		if t.MinParticipants < 1 {
			return errors.Wrapf(ErrValidation, "tier %d: minParticipants must be >= 1", i)
		}
		if t.MinParticipants <= prevMin {
			return errors.Wrapf(ErrValidation, "tier %d: minParticipants must be strictly increasing", i)
		}
		if t.UnitPrice >= basePrice {
			return errors.Wrapf(ErrValidation, "tier %d: unitPrice must be below base price", i)
		}
		if t.UnitPrice > prevPrice {
			return errors.Wrapf(ErrValidation, "tier %d: unitPrice must not increase with participants", i)
		}
		prevMin = t.MinParticipants
		prevPrice = t.UnitPrice
	}
	return nil
}
