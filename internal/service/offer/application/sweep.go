// internal/service/offer/application/sweep.go
package application

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"gpoffer/internal/pkg/logger"
	"gpoffer/internal/service/offer/domain"
)

// sweepConcurrency 限制一轮扫描中并行处理的报价数量。
const sweepConcurrency = 8

// RunExpirySweep 扫描所有 Active 报价，把截止时间已过的报价结算为
// Fulfilled 或 Expired。每个报价的结算与其它所有迁移一样先拿该报价的锁，
// 锁内重读再判定，不会基于 List 返回的过期快照做决定；迁移本身仍通过
// (offerID, expectedStatus=ACTIVE) 的 compare-and-set 提交，作为多实例
// 部署下的第二道保险，输掉竞争的一方静默跳过（只记日志）。
func (s *OfferApplicationService) RunExpirySweep(ctx context.Context) (*SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "offer.ExpirySweep")
	defer span.End()

	now := s.clock.Now()
	active, err := s.offers.List(ctx, domain.ListFilter{Status: domain.StatusActive})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var fulfilled, expired, conflicts atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, offer := range active {
		offer := offer
		g.Go(func() error {
			unlock, err := s.locker.Lock(gctx, offer.ID)
			if err != nil {
				return err
			}
			defer unlock()

			// 锁内重读：List 之后可能有取消或最后一刻的加入已经提交
			offer, err := s.offers.FindByID(gctx, offer.ID)
			if err != nil {
				return err
			}
			next, due := offer.ResolveOutcome(now)
			if !due {
				return nil
			}

			resolvedAt := now
			committed, err := s.offers.CompareAndSetStatus(gctx, offer.ID, domain.StatusActive, next, resolvedAt)
			if err != nil {
				return err
			}
			if !committed {
				// 另一个实例先完成了迁移，按成功 no-op 处理
				conflicts.Add(1)
				logger.Ctx(gctx).Info().
					Str("offer_id", offer.ID).
					Msg("sweep lost compare-and-set race, skipping")
				return nil
			}

			offer.Status = next
			offer.ResolvedAt = &resolvedAt
			switch next {
			case domain.StatusFulfilled:
				fulfilled.Add(1)
				s.publish(gctx, domain.EventOfferFulfilled, offer, "")
			case domain.StatusExpired:
				expired.Add(1)
				s.publish(gctx, domain.EventOfferExpired, offer, "")
			}
			logger.Ctx(gctx).Info().
				Str("offer_id", offer.ID).
				Str("outcome", string(next)).
				Int("participants", offer.CurrentParticipants).
				Int("minimum_joiners", offer.MinJoiners).
				Msg("offer resolved by sweep")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := &SweepResult{
		Scanned:   len(active),
		Fulfilled: int(fulfilled.Load()),
		Expired:   int(expired.Load()),
		Conflicts: int(conflicts.Load()),
	}
	span.SetAttributes(
		attribute.Int("sweep.scanned", result.Scanned),
		attribute.Int("sweep.fulfilled", result.Fulfilled),
		attribute.Int("sweep.expired", result.Expired),
	)
	return result, nil
}
