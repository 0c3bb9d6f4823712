// internal/service/offer/domain/state.go
package domain

// Status 定义了报价的生命周期状态
type Status string

const (
	StatusDraft           Status = "DRAFT"            // 卖家已创建，尚未提交
	StatusPendingApproval Status = "PENDING_APPROVAL" // 已提交，等待管理员审核（提交时扣除积分）
	StatusActive          Status = "ACTIVE"           // 审核通过，买家可加入
	StatusRejected        Status = "REJECTED"         // 审核被拒绝
	StatusFulfilled       Status = "FULFILLED"        // 截止时达到最低人数，成团
	StatusExpired         Status = "EXPIRED"          // 截止时未达到最低人数，流团
	StatusCancelled       Status = "CANCELLED"        // 被卖家或管理员取消
)

// IsTerminal 报告该状态是否为终态。
// 终态的报价只保留作审计用途，不再接受任何状态迁移。
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusFulfilled, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Visibility 定义了报价的可见范围
type Visibility string

const (
	VisibilityPublic     Visibility = "Public"
	VisibilityInviteOnly Visibility = "InviteOnly"
)

// KYCStatus 是外部 KYC 流程产出的验证结论，本模块只消费结果。
type KYCStatus string

const (
	KYCVerified KYCStatus = "Verified"
	KYCPending  KYCStatus = "Pending"
	KYCRejected KYCStatus = "Rejected"
)
