// internal/service/offer/domain/event.go
package domain

import "time"

// EventType 标识一次生命周期事件。
type EventType string

const (
	EventOfferSubmitted EventType = "offer.submitted"
	EventOfferApproved  EventType = "offer.approved"
	EventOfferRejected  EventType = "offer.rejected"
	EventOfferJoined    EventType = "offer.joined"
	EventOfferFulfilled EventType = "offer.fulfilled"
	EventOfferExpired   EventType = "offer.expired"
	EventOfferCancelled EventType = "offer.cancelled"
)

// LifecycleEvent 在每次成功的状态迁移之后发布到消息总线。
// 通知投递本身不在本模块范围内：下游消费者（站内信、邮件等）
// 观察到事件后再发起自己的外部 I/O，临界区内不做任何阻塞调用。
type LifecycleEvent struct {
	EventID      string    `json:"eventId"`
	Type         EventType `json:"type"`
	OfferID      string    `json:"offerId"`
	SellerID     string    `json:"sellerId"`
	UserID       string    `json:"userId,omitempty"` // 仅 joined 事件携带
	Participants int       `json:"participants"`
	UnitPrice    float64   `json:"unitPrice,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
