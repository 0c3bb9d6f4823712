// internal/service/points/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gpoffer/internal/pkg/logger"
	"gpoffer/internal/service/points/domain"
)

// PointsService 封装了积分台账的所有业务用例。
// 它本身不做并发控制：按卖家串行由仓储实现保证。
type PointsService struct {
	accounts domain.AccountRepository
	tracer   trace.Tracer
}

func NewPointsService(accounts domain.AccountRepository, tracer trace.Tracer) *PointsService {
	return &PointsService{accounts: accounts, tracer: tracer}
}

// Balance 查询卖家当前积分余额，未知卖家视作余额为 0 的隐式账户。
func (s *PointsService) Balance(ctx context.Context, sellerID string) (int64, error) {
	return s.accounts.Balance(ctx, sellerID)
}

// Transactions 返回按时间倒序的台账历史。
func (s *PointsService) Transactions(ctx context.Context, sellerID string) ([]domain.Transaction, error) {
	return s.accounts.Transactions(ctx, sellerID)
}

// Credit 给卖家充值积分。由外部支付确认协作方调用：支付本身不在本模块内，
// reference 记录支付方式/凭证号，方便审计对账。
func (s *PointsService) Credit(ctx context.Context, sellerID string, amount int64, reason, reference string) error {
	ctx, span := s.tracer.Start(ctx, "points.Credit")
	defer span.End()
	span.SetAttributes(
		attribute.String("seller.id", sellerID),
		attribute.Int64("points.amount", amount),
	)

	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	newBalance, err := s.accounts.Apply(ctx, sellerID, amount, domain.Transaction{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Amount:    amount,
		Reason:    reason,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "credit failed")
		return err
	}

	logger.Ctx(ctx).Info().
		Str("seller_id", sellerID).
		Int64("amount", amount).
		Int64("new_balance", newBalance).
		Str("reason", reason).
		Msg("points credited")
	return nil
}

// Debit 扣减积分。余额不足时整体失败：余额与台账保持原样。
func (s *PointsService) Debit(ctx context.Context, sellerID string, amount int64, reason, reference string) error {
	ctx, span := s.tracer.Start(ctx, "points.Debit")
	defer span.End()
	span.SetAttributes(
		attribute.String("seller.id", sellerID),
		attribute.Int64("points.amount", amount),
	)

	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	newBalance, err := s.accounts.Apply(ctx, sellerID, -amount, domain.Transaction{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Amount:    -amount,
		Reason:    reason,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "debit failed")
		return err
	}

	logger.Ctx(ctx).Info().
		Str("seller_id", sellerID).
		Int64("amount", amount).
		Int64("new_balance", newBalance).
		Str("reason", reason).
		Msg("points debited")
	return nil
}
