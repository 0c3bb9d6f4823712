// internal/service/points/domain/account.go
package domain

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientPoints 扣减会让余额变负，操作被整体拒绝，台账不变
	ErrInsufficientPoints = errors.New("insufficient points balance")

	// ErrInvalidAmount 金额必须为正数
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Account 是某个卖家的积分账户快照。
// 余额恒等于台账条目的累计和，且永不为负；账户按需隐式创建（初始余额 0）。
type Account struct {
	SellerID  string    `json:"sellerId"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction 是一条只追加的台账记录。Amount 带符号：充值为正，扣减为负。
// 台账不允许修改或删除，纠错通过反向条目完成。
type Transaction struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"sellerId"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Reference string    `json:"reference,omitempty"` // 关联的报价 ID 或支付凭证号
	CreatedAt time.Time `json:"createdAt"`
}
