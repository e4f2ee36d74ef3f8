package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"dealscan/internal/model"
)

const EventPriceObserved = "PRICE_OBSERVED"

// PriceEvent is published for every quote a scrape finds.
type PriceEvent struct {
	EventType  string            `json:"event_type"`
	ProductID  string            `json:"product_id,omitempty"`
	SearchTerm string            `json:"search_term"`
	Quote      model.PriceRecord `json:"quote"`
	Timestamp  time.Time         `json:"timestamp"`
}

type Publisher interface {
	PublishPriceObserved(ctx context.Context, productID, term string, quote model.PriceRecord) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing price events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, topic: topic}
}

// New returns a Kafka producer, or Noop when no brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	return NewProducer(brokers, topic)
}

func (p *Producer) PublishPriceObserved(ctx context.Context, productID, term string, quote model.PriceRecord) error {
	event := PriceEvent{
		EventType:  EventPriceObserved,
		ProductID:  productID,
		SearchTerm: term,
		Quote:      quote,
		Timestamp:  time.Now().UTC(),
	}

	key := productID
	if key == "" {
		key = term
	}
	return p.publish(ctx, key, event)
}

func (p *Producer) publish(ctx context.Context, key string, event PriceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) PublishPriceObserved(context.Context, string, string, model.PriceRecord) error {
	return nil
}

func (Noop) Close() error { return nil }
