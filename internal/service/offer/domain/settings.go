// internal/service/offer/domain/settings.go
package domain

// PlatformSettings 是平台级业务开关的一个版本化快照。
// 它以值的形式传入资格检查与生命周期编排，没有全局可变单例；
// 每次后台修改都会递增 Version，调用方总是拿到一致的整体快照。
type PlatformSettings struct {
	Version                 int64 `json:"version"`
	GroupOffersEnabled      bool  `json:"groupOffersEnabled"`
	DynamicDiscountsEnabled bool  `json:"dynamicDiscountsEnabled"`
	AutoKYCApproval         bool  `json:"autoKycApproval"`
	PublishCost             int64 `json:"publishCost"` // 发布一次报价消耗的积分
}

// DefaultPlatformSettings 平台初始配置。
func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		Version:                 1,
		GroupOffersEnabled:      true,
		DynamicDiscountsEnabled: true,
		AutoKYCApproval:         false,
		PublishCost:             15,
	}
}
