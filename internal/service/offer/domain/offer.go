// internal/service/offer/domain/offer.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Offer 是团购报价聚合的根实体。
// 状态字段只能通过本文件中的迁移方法修改，仓储层不做任何状态判断。
type Offer struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Category    string
	Region      string
	BasePrice   float64
	Tiers       []Tier // 按 MinParticipants 升序，创建时已校验
	Deadline    time.Time
	MinJoiners  int // 0 表示无最低人数要求
	Visibility  Visibility
	Featured    bool
	Status      Status

	// CurrentParticipants 由去重后的参与记录派生，
	// 与参与记录的写入在同一个临界区内保持一致。
	CurrentParticipants int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time // 审核通过时间，未通过前为 nil
	ResolvedAt  *time.Time // 进入成团/流团/取消等终态的时间
}

// NewOfferParams 是工厂函数的入参。
type NewOfferParams struct {
	SellerID    string
	Title       string
	Description string
	Category    string
	Region      string
	BasePrice   float64
	Tiers       []Tier
	Deadline    time.Time
	MinJoiners  int
	Visibility  Visibility
	Featured    bool
}

// NewOffer 创建一个 Draft 状态的报价，所有校验都在这里完成。
// 阶梯表违反单调性、截止时间不在未来等问题一律拒绝，不会落库。
func NewOffer(p NewOfferParams, now time.Time) (*Offer, error) {
	if p.SellerID == "" || p.Title == "" {
		return nil, errors.Wrap(ErrValidation, "sellerId and title are required")
	}
	if err := ValidateTiers(p.BasePrice, p.Tiers); err != nil {
		return nil, err
	}
	if !p.Deadline.After(now) {
		return nil, errors.Wrap(ErrValidation, "deadline must be in the future")
	}
	if p.MinJoiners < 0 {
		return nil, errors.Wrap(ErrValidation, "minimumJoiners must be >= 0")
	}
	visibility := p.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if visibility != VisibilityPublic && visibility != VisibilityInviteOnly {
		return nil, errors.Wrapf(ErrValidation, "unknown visibility %q", visibility)
	}

	tiers := make([]Tier, len(p.Tiers))
	copy(tiers, p.Tiers)

	return &Offer{
		ID:          uuid.NewString(),
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Region:      p.Region,
		BasePrice:   p.BasePrice,
		Tiers:       tiers,
		Deadline:    p.Deadline,
		MinJoiners:  p.MinJoiners,
		Visibility:  visibility,
		Featured:    p.Featured,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkPendingApproval 执行 Draft -> PendingApproval 的迁移。
// 发布资格与积分扣减由应用层在同一个原子单元内完成，这里只负责状态流转。
func (o *Offer) MarkPendingApproval(now time.Time) error {
	if o.Status != StatusDraft {
		return errors.Wrapf(ErrInvalidState, "submit requires DRAFT, offer is %s", o.Status)
	}
	o.Status = StatusPendingApproval
	o.UpdatedAt = now
	return nil
}

// Approve 管理员审核通过：PendingApproval -> Active，记录上架时间。
func (o *Offer) Approve(now time.Time) error {
	if o.Status != StatusPendingApproval {
		return errors.Wrapf(ErrInvalidState, "approve requires PENDING_APPROVAL, offer is %s", o.Status)
	}
	o.Status = StatusActive
	publishedAt := now
	o.PublishedAt = &publishedAt
	o.UpdatedAt = now
	return nil
}

// Reject 管理员审核拒绝：PendingApproval -> Rejected（终态）。
func (o *Offer) Reject(now time.Time) error {
	if o.Status != StatusPendingApproval {
		return errors.Wrapf(ErrInvalidState, "reject requires PENDING_APPROVAL, offer is %s", o.Status)
	}
	o.Status = StatusRejected
	resolvedAt := now
	o.ResolvedAt = &resolvedAt
	o.UpdatedAt = now
	return nil
}

// Cancel 卖家或管理员取消：仅允许尚未出结果的 Active 报价。
func (o *Offer) Cancel(now time.Time) error {
	if o.Status != StatusActive {
		return errors.Wrapf(ErrInvalidState, "cancel requires ACTIVE, offer is %s", o.Status)
	}
	o.Status = StatusCancelled
	resolvedAt := now
	o.ResolvedAt = &resolvedAt
	o.UpdatedAt = now
	return nil
}

// CanJoin 检查一次加入请求是否可被接受。
// 买家重复加入不会走到这里报错：去重由参与记录的唯一约束处理。
func (o *Offer) CanJoin(now time.Time) error {
	if o.Status != StatusActive {
		return errors.Wrapf(ErrInvalidState, "join requires ACTIVE, offer is %s", o.Status)
	}
	if !now.Before(o.Deadline) {
		return errors.Wrap(ErrInvalidState, "offer deadline has passed")
	}
	return nil
}

// ResolveOutcome 计算截止后的归宿：达到最低人数成团，否则流团。
// 只做判定不做迁移，真正的状态写入通过仓储的 compare-and-set 完成。
func (o *Offer) ResolveOutcome(now time.Time) (Status, bool) {
	if o.Status != StatusActive || now.Before(o.Deadline) {
		return o.Status, false
	}
	if o.CurrentParticipants >= o.MinJoiners {
		return StatusFulfilled, true
	}
	return StatusExpired, true
}
