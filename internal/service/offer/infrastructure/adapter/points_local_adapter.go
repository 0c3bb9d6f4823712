// internal/service/offer/infrastructure/adapter/points_local_adapter.go
package adapter

import (
	"context"

	pointsapp "gpoffer/internal/service/points/application"
)

// PointsLocalAdapter 把 points 服务的应用层适配成 port.PointsService。
// 两个服务部署在同一进程内，调用不经过网络。
type PointsLocalAdapter struct {
	service *pointsapp.PointsService
}

func NewPointsLocalAdapter(service *pointsapp.PointsService) *PointsLocalAdapter {
	return &PointsLocalAdapter{service: service}
}

func (a *PointsLocalAdapter) Balance(ctx context.Context, sellerID string) (int64, error) {
	return a.service.Balance(ctx, sellerID)
}

func (a *PointsLocalAdapter) Debit(ctx context.Context, sellerID string, amount int64, reason, reference string) error {
	return a.service.Debit(ctx, sellerID, amount, reason, reference)
}

func (a *PointsLocalAdapter) Credit(ctx context.Context, sellerID string, amount int64, reason, reference string) error {
	return a.service.Credit(ctx, sellerID, amount, reason, reference)
}
