// internal/service/offer/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gpoffer/internal/pkg/logger"
	"gpoffer/internal/service/offer/domain"
	"gpoffer/internal/service/offer/domain/port"
)

// OfferApplicationService 编排报价的全部生命周期用例。
// 它是唯一改写 Offer 状态的组件：所有迁移都先拿到该报价的锁，
// 再在临界区内完成校验、扣减与落库；临界区内不做任何外部 I/O，
// 生命周期事件在迁移提交之后才发布。
type OfferApplicationService struct {
	offers       domain.OfferRepository
	participants domain.ParticipantRepository
	settings     domain.SettingsRepository
	points       port.PointsService
	kyc          port.KYCProvider
	locker       port.OfferLocker
	clock        port.Clock
	events       port.EventProducer
	tracer       trace.Tracer
}

func NewOfferApplicationService(
	offers domain.OfferRepository,
	participants domain.ParticipantRepository,
	settings domain.SettingsRepository,
	points port.PointsService,
	kyc port.KYCProvider,
	locker port.OfferLocker,
	clock port.Clock,
	events port.EventProducer,
	tracer trace.Tracer,
) *OfferApplicationService {
	return &OfferApplicationService{
		offers: offers, participants: participants, settings: settings,
		points: points, kyc: kyc, locker: locker, clock: clock,
		events: events, tracer: tracer,
	}
}

// CreateOffer 创建一个 Draft 报价。阶梯表与截止时间在这里一次性校验，
// 不合法的报价不会落库。
func (s *OfferApplicationService) CreateOffer(ctx context.Context, req *CreateOfferRequest) (*domain.Offer, error) {
	ctx, span := s.tracer.Start(ctx, "offer.Create")
	defer span.End()
	span.SetAttributes(attribute.String("seller.id", req.SellerID))

	offer, err := domain.NewOffer(domain.NewOfferParams{
		SellerID:    req.SellerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Region:      req.Region,
		BasePrice:   req.BasePrice,
		Tiers:       req.Tiers,
		Deadline:    req.Deadline,
		MinJoiners:  req.MinJoiners,
		Visibility:  domain.Visibility(req.Visibility),
		Featured:    req.Featured,
	}, s.clock.Now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.offers.Save(ctx, offer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save new offer")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("offer_id", offer.ID).
		Str("seller_id", offer.SellerID).
		Int("tiers", len(offer.Tiers)).
		Msg("offer created in draft")
	return offer, nil
}

// GetOffer 查询单个报价。
func (s *OfferApplicationService) GetOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	return s.offers.FindByID(ctx, offerID)
}

// ListOffers 按条件列出报价。
func (s *OfferApplicationService) ListOffers(ctx context.Context, filter domain.ListFilter) ([]*domain.Offer, error) {
	return s.offers.List(ctx, filter)
}

// ListParticipants 返回某报价的全部参与记录。
func (s *OfferApplicationService) ListParticipants(ctx context.Context, offerID string) ([]domain.ParticipantJoin, error) {
	if _, err := s.offers.FindByID(ctx, offerID); err != nil {
		return nil, err
	}
	return s.participants.ListByOffer(ctx, offerID)
}

// PreviewQuote 计算报价的预览价格，不要求 Active 状态。
func (s *OfferApplicationService) PreviewQuote(ctx context.Context, offerID string) (*domain.Quote, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return domain.PreviewQuoteFor(offer), nil
}

// SubmitOffer 执行 Draft -> PendingApproval 迁移。
// 积分扣减与状态翻转是一个原子单元：资格检查通过后先扣积分，
// 状态落库失败时用反向充值补偿（SAGA 风格），报价保持 Draft。
func (s *OfferApplicationService) SubmitOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	ctx, span := s.tracer.Start(ctx, "offer.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("offer.id", offerID))

	unlock, err := s.locker.Lock(ctx, offerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if offer.Status != domain.StatusDraft {
		return nil, domain.ErrInvalidState
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	kycStatus, err := s.kyc.StatusOf(ctx, offer.SellerID)
	if err != nil {
		return nil, err
	}
	balance, err := s.points.Balance(ctx, offer.SellerID)
	if err != nil {
		return nil, err
	}

	result := domain.CheckEligibility(offer, balance, settings, kycStatus)
	if !result.Passed {
		span.SetAttributes(attribute.Int("eligibility.failures", len(result.Reasons)))
		logger.Ctx(ctx).Warn().
			Str("offer_id", offerID).
			Interface("reasons", result.Reasons).
			Msg("offer failed publish eligibility")
		return nil, eligibilityErr(result)
	}

	// 扣减发布积分；余额并发变化时这里仍可能失败，报价保持 Draft。
	// 平台把发布费用设为 0 时跳过扣减，免费发布不产生台账条目
	if settings.PublishCost > 0 {
		reason := fmt.Sprintf("publish offer %s", offer.ID)
		if err := s.points.Debit(ctx, offer.SellerID, settings.PublishCost, reason, offer.ID); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	now := s.clock.Now()
	if err := offer.MarkPendingApproval(now); err != nil {
		// 状态在检查后被并发改动，退回已扣的积分
		s.compensateDebit(ctx, offer, settings.PublishCost)
		return nil, err
	}
	if err := s.offers.Save(ctx, offer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist submit transition")
		s.compensateDebit(ctx, offer, settings.PublishCost)
		return nil, err
	}

	s.publish(ctx, domain.EventOfferSubmitted, offer, "")
	logger.Ctx(ctx).Info().
		Str("offer_id", offer.ID).
		Int64("publish_cost", settings.PublishCost).
		Msg("offer submitted for approval")
	return offer, nil
}

// compensateDebit 是 submit 的补偿：状态落库失败时退回发布费用。
// 免费发布（费用为 0）没有扣减过，也就无需补偿。
func (s *OfferApplicationService) compensateDebit(ctx context.Context, offer *domain.Offer, amount int64) {
	if amount <= 0 {
		return
	}
	reason := fmt.Sprintf("refund publish cost for offer %s", offer.ID)
	if err := s.points.Credit(ctx, offer.SellerID, amount, reason, offer.ID); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("offer_id", offer.ID).
			Int64("amount", amount).
			Msg("CRITICAL: failed to refund publish cost after aborted submit")
	}
}

// ApproveOffer 管理员审核通过：PendingApproval -> Active。
func (s *OfferApplicationService) ApproveOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	return s.adminTransition(ctx, "offer.Approve", offerID, domain.EventOfferApproved,
		func(o *domain.Offer, now time.Time) error { return o.Approve(now) })
}

// RejectOffer 管理员审核拒绝：PendingApproval -> Rejected。
func (s *OfferApplicationService) RejectOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	return s.adminTransition(ctx, "offer.Reject", offerID, domain.EventOfferRejected,
		func(o *domain.Offer, now time.Time) error { return o.Reject(now) })
}

// CancelOffer 取消一个尚未出结果的 Active 报价。
func (s *OfferApplicationService) CancelOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	return s.adminTransition(ctx, "offer.Cancel", offerID, domain.EventOfferCancelled,
		func(o *domain.Offer, now time.Time) error { return o.Cancel(now) })
}

// adminTransition 是 approve/reject/cancel 共用的骨架：
// 锁 -> 读取 -> 领域迁移 -> 落库 -> 发事件。
func (s *OfferApplicationService) adminTransition(
	ctx context.Context,
	spanName, offerID string,
	eventType domain.EventType,
	transition func(*domain.Offer, time.Time) error,
) (*domain.Offer, error) {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("offer.id", offerID))

	unlock, err := s.locker.Lock(ctx, offerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := transition(offer, s.clock.Now()); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.offers.Save(ctx, offer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist transition")
		return nil, err
	}

	s.publish(ctx, eventType, offer, "")
	logger.Ctx(ctx).Info().
		Str("offer_id", offer.ID).
		Str("status", string(offer.Status)).
		Msg("offer transitioned")
	return offer, nil
}

// JoinOffer 买家加入报价。重复加入是幂等 no-op，照样返回当前报价信息。
// 参与记录写入与人数更新由仓储在同一个原子单元内完成；
// 整个操作持有该报价的锁，并发加入不会基于同一个旧人数各自 +1。
func (s *OfferApplicationService) JoinOffer(ctx context.Context, offerID, userID string) (*JoinOfferResponse, error) {
	ctx, span := s.tracer.Start(ctx, "offer.Join")
	defer span.End()
	span.SetAttributes(
		attribute.String("offer.id", offerID),
		attribute.String("user.id", userID),
	)

	if userID == "" {
		return nil, domain.ErrValidation
	}

	unlock, err := s.locker.Lock(ctx, offerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := s.clock.Now()
	if err := offer.CanJoin(now); err != nil {
		span.RecordError(err)
		return nil, err
	}

	created, newCount, err := s.participants.Add(ctx, domain.ParticipantJoin{
		OfferID:  offerID,
		UserID:   userID,
		JoinedAt: now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record join")
		return nil, err
	}
	offer.CurrentParticipants = newCount

	quote, err := domain.QuoteFor(offer)
	if err != nil {
		return nil, err
	}

	if created {
		s.publish(ctx, domain.EventOfferJoined, offer, userID)
		logger.Ctx(ctx).Info().
			Str("offer_id", offerID).
			Str("user_id", userID).
			Int("participants", newCount).
			Float64("unit_price", quote.UnitPrice).
			Msg("user joined offer")
	}

	return &JoinOfferResponse{
		OfferID:        offerID,
		AlreadyJoined:  !created,
		Participants:   newCount,
		UnitPrice:      quote.UnitPrice,
		Savings:        quote.Savings,
		SavingsPercent: quote.SavingsPercent,
		NextTier:       quote.NextTier,
	}, nil
}

// GetSettings 返回当前平台设置快照。
func (s *OfferApplicationService) GetSettings(ctx context.Context) (domain.PlatformSettings, error) {
	return s.settings.Current(ctx)
}

// UpdateSettings 写入新的平台设置并递增版本。费用为 0 表示免费发布。
func (s *OfferApplicationService) UpdateSettings(ctx context.Context, settings domain.PlatformSettings) (domain.PlatformSettings, error) {
	if settings.PublishCost < 0 {
		return domain.PlatformSettings{}, errors.Wrap(domain.ErrValidation, "publishCost must be >= 0")
	}
	updated, err := s.settings.Update(ctx, settings)
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	logger.Ctx(ctx).Info().
		Int64("version", updated.Version).
		Int64("publish_cost", updated.PublishCost).
		Bool("group_offers_enabled", updated.GroupOffersEnabled).
		Msg("platform settings updated")
	return updated, nil
}

// Stats 返回后台的平台统计。
func (s *OfferApplicationService) Stats(ctx context.Context) (*PlatformStats, error) {
	counts, err := s.offers.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &PlatformStats{TotalOffers: total, OffersByState: counts, Settings: settings}, nil
}

// publish 在迁移提交后发布生命周期事件。
// 发布失败不回滚迁移，只记日志：事件总线是尽力而为的通知通道。
func (s *OfferApplicationService) publish(ctx context.Context, t domain.EventType, offer *domain.Offer, userID string) {
	if s.events == nil {
		return
	}
	evt := &domain.LifecycleEvent{
		EventID:      uuid.NewString(),
		Type:         t,
		OfferID:      offer.ID,
		SellerID:     offer.SellerID,
		UserID:       userID,
		Participants: offer.CurrentParticipants,
		UnitPrice:    domain.PreviewPrice(offer),
		OccurredAt:   s.clock.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("offer_id", offer.ID).
			Str("event_type", string(t)).
			Msg("failed to publish lifecycle event")
	}
}

// eligibilityErr 把资格检查结论包装成带原因列表的错误。
func eligibilityErr(result domain.EligibilityResult) error {
	return &NotEligibleError{Reasons: result.Reasons}
}

// NotEligibleError 携带发布资格检查的全部失败原因。
type NotEligibleError struct {
	Reasons []domain.IneligibleReason
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("offer is not eligible for publishing: %v", e.Reasons)
}

// Unwrap 让 errors.Is(err, domain.ErrNotEligible) 成立。
func (e *NotEligibleError) Unwrap() error {
	return domain.ErrNotEligible
}
