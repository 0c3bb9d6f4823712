// internal/service/offer/domain/port/ports.go
package port

import (
	"context"
	"time"

	"gpoffer/internal/service/offer/domain"
)

// KYCProvider 查询外部 KYC 流程对某个卖家的验证结论。
// 验证算法本身是外部协作方的事，这里只消费 Verified/Pending/Rejected。
type KYCProvider interface {
	StatusOf(ctx context.Context, sellerID string) (domain.KYCStatus, error)
}

// PointsService 是报价服务对积分台账的出站端口，由 points 服务的
// 进程内适配器实现。Debit 失败时不得留下任何部分写入。
type PointsService interface {
	Balance(ctx context.Context, sellerID string) (int64, error)
	Debit(ctx context.Context, sellerID string, amount int64, reason, reference string) error
	Credit(ctx context.Context, sellerID string, amount int64, reason, reference string) error
}

// EventProducer 把生命周期事件发布到消息总线。
// 发布失败只记日志，不回滚已提交的状态迁移。
type EventProducer interface {
	Publish(ctx context.Context, event *domain.LifecycleEvent) error
}

// OfferLocker 提供以报价为粒度的互斥：同一报价的所有迁移串行，
// 不同报价完全并行。单实例用进程内 KeyedMutex，多实例用 Redis 锁。
type OfferLocker interface {
	// Lock 阻塞直到拿到 offerID 上的锁，返回释放函数。
	Lock(ctx context.Context, offerID string) (unlock func(), err error)
}

// Clock 是单调时钟源，测试中用假时钟替换。
type Clock interface {
	Now() time.Time
}
