// internal/service/offer/domain/errors.go
package domain

import "errors"

var (
	// ErrOfferNotFound 指定的报价不存在
	ErrOfferNotFound = errors.New("offer not found")

	// ErrValidation 创建报价时的入参校验失败（阶梯表、价格、截止时间等），
	// 具体违反的规则通过 errors.Wrap 附加在消息里
	ErrValidation = errors.New("offer validation failed")

	// ErrInvalidState 当前状态不允许这次迁移，任何数据都不会被修改
	ErrInvalidState = errors.New("operation not allowed in current offer state")

	// ErrNotEligible 发布资格检查未通过，失败原因见 EligibilityResult.Reasons
	ErrNotEligible = errors.New("offer is not eligible for publishing")

	// ErrConflict 对同一报价的 compare-and-set 输给了并发的另一次迁移。
	// 这不是用户错误：调用方把它当作 no-op 处理，只记日志
	ErrConflict = errors.New("offer state changed concurrently")
)
