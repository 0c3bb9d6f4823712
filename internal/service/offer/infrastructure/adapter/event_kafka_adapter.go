// internal/service/offer/infrastructure/adapter/event_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"gpoffer/internal/pkg/mq"
	"gpoffer/internal/service/offer/domain"
)

// EventKafkaAdapter 是 port.EventProducer 的 Kafka 实现。
// 以 offerID 为 key，保证同一报价的事件落在同一个分区、保持顺序。
type EventKafkaAdapter struct {
	writer *kafka.Writer
}

func NewEventKafkaAdapter(writer *kafka.Writer) *EventKafkaAdapter {
	return &EventKafkaAdapter{writer: writer}
}

func (a *EventKafkaAdapter) Publish(ctx context.Context, event *domain.LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(event.OfferID), payload)
}
