package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"festival-tickets/internal/models"
)

// Producer streams B2B order lifecycle events to the order-events topic.
// Downstream consumers (operations dashboard, accounting export) react to
// these; the engine itself never reads them back.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

type orderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	FromStatus  models.OrderStatus `json:"from_status,omitempty"`
	ToStatus    models.OrderStatus `json:"to_status,omitempty"`
	Actor       string             `json:"actor,omitempty"`
	FinalAmount int64              `json:"final_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// PublishOrderCreated streams the order creation event.
func (p *Producer) PublishOrderCreated(order *models.B2BOrder) error {
	return p.publish(orderEvent{
		Type:        "b2b_order_created",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ToStatus:    order.Status,
		FinalAmount: order.FinalAmount,
		OccurredAt:  time.Now(),
	})
}

// PublishStatusChanged streams one guarded transition.
func (p *Producer) PublishStatusChanged(order *models.B2BOrder, from, to models.OrderStatus, actor string) error {
	return p.publish(orderEvent{
		Type:        "b2b_order_status_changed",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		FromStatus:  from,
		ToStatus:    to,
		Actor:       actor,
		FinalAmount: order.FinalAmount,
		OccurredAt:  time.Now(),
	})
}

func (p *Producer) publish(event orderEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.OrderID),
			Value: msgBytes,
		},
	)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.Writer.Close()
}
