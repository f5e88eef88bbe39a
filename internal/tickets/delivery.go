package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"festival-tickets/internal/logger"
	"festival-tickets/internal/models"
)

// KafkaDeliverer hands issued tickets to the delivery pipeline by publishing
// them on the ticket-delivery topic. The actual email/PDF send is the
// delivery worker's job; from the engine's point of view a successful
// publish means the tickets are on their way.
type KafkaDeliverer struct {
	Writer *kafka.Writer
	Logger *logger.Logger
}

func NewKafkaDeliverer(brokers []string, topic string, log *logger.Logger) *KafkaDeliverer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &KafkaDeliverer{Writer: writer, Logger: log}
}

type deliveryMessage struct {
	OrderID      string                  `json:"order_id"`
	ContactEmail string                  `json:"contact_email"`
	ContactName  string                  `json:"contact_name"`
	Tickets      []models.TicketArtifact `json:"tickets"`
	QueuedAt     time.Time               `json:"queued_at"`
}

// DeliverTickets publishes the order's artifacts for delivery.
func (d *KafkaDeliverer) DeliverTickets(ctx context.Context, order *models.B2BOrder, artifacts []models.TicketArtifact) error {
	if len(artifacts) == 0 {
		return fmt.Errorf("order %s has no issued tickets to deliver", order.ID)
	}

	msg := deliveryMessage{
		OrderID:      order.ID,
		ContactEmail: order.ContactEmail,
		ContactName:  order.ContactName,
		Tickets:      artifacts,
		QueuedAt:     time.Now(),
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = d.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: msgBytes,
	})
	if err != nil {
		return fmt.Errorf("queue ticket delivery for order %s: %w", order.ID, err)
	}

	d.Logger.LogKafka("DELIVERY", d.Writer.Topic, fmt.Sprintf("queued %d tickets for order %s", len(artifacts), order.ID))
	return nil
}
