// Package events publishes submitted-order notifications for downstream
// consumers (kitchen display, delivery dispatch). Publishing is best effort:
// checkout never fails because the broker is down.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/segmentio/kafka-go"
)

const topic = "order-events"

type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) OrderSubmitted(ctx context.Context, order *domain.Order) error {
	payload := map[string]interface{}{
		"order_id":      order.ID,
		"user_id":       order.UserID,
		"restaurant_id": order.RestaurantID,
		"total_price":   order.TotalPrice,
		"shipping_fee":  order.ShippingFee,
		"submitted_at":  time.Now(),
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)), // order id for ordering
		Value: payloadJSON,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.submitted")},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
