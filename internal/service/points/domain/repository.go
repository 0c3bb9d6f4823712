// internal/service/points/domain/repository.go
package domain

import "context"

// AccountRepository 定义了积分账户与台账的持久化接口。
//
// Apply 是唯一的写入口：余额增量与台账条目必须在同一个原子单元内提交。
// delta 为负且会导致余额为负时返回 ErrInsufficientPoints，此时余额与台账
// 都不得有任何改动。同一个卖家的 Apply 调用串行执行。
type AccountRepository interface {
	Apply(ctx context.Context, sellerID string, delta int64, tx Transaction) (newBalance int64, err error)
	Balance(ctx context.Context, sellerID string) (int64, error)
	Transactions(ctx context.Context, sellerID string) ([]Transaction, error)
}
