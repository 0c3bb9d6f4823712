// internal/service/offer/domain/eligibility.go
package domain

// 发布门禁：纯判定，不产生任何副作用。
// 真正的积分扣减发生在应用层的 submit 迁移里，与状态翻转同一个原子单元。

// IneligibleReason 标识一条未通过发布检查的原因。
type IneligibleReason string

const (
	ReasonFeatureDisabled    IneligibleReason = "FeatureDisabled"    // 平台关闭了团购报价功能
	ReasonKYCRequired        IneligibleReason = "KycRequired"        // 卖家 KYC 未通过且平台未开启自动放行
	ReasonInsufficientPoints IneligibleReason = "InsufficientPoints" // 积分余额不足以支付发布费用
	ReasonInvalidTiers       IneligibleReason = "ValidationError"    // 阶梯表违反单调性（防御性复查）
)

// EligibilityResult 是一次发布资格检查的结论。
type EligibilityResult struct {
	Passed  bool               `json:"passed"`
	Reasons []IneligibleReason `json:"reasons,omitempty"`
}

// CheckEligibility 评估一个 Draft 报价是否允许提交审核。
// 所有未通过的原因都会收集返回，而不是在第一条失败处短路。
func CheckEligibility(o *Offer, balance int64, settings PlatformSettings, kyc KYCStatus) EligibilityResult {
	var reasons []IneligibleReason

	if !settings.GroupOffersEnabled {
		reasons = append(reasons, ReasonFeatureDisabled)
	}
	if kyc != KYCVerified && !settings.AutoKYCApproval {
		reasons = append(reasons, ReasonKYCRequired)
	}
	if balance < settings.PublishCost {
		reasons = append(reasons, ReasonInsufficientPoints)
	}
	if err := ValidateTiers(o.BasePrice, o.Tiers); err != nil {
		reasons = append(reasons, ReasonInvalidTiers)
	}

	return EligibilityResult{Passed: len(reasons) == 0, Reasons: reasons}
}
