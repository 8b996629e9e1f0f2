// Package events publishes order lifecycle events of the backend.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"craftmart/internal/domain"
)

type Type string

const (
	OrderCreated             Type = "order.created"
	OrderStatusChanged       Type = "order.status_changed"
	CustomOrderCreated       Type = "custom_order.created"
	CustomOrderStatusChanged Type = "custom_order.status_changed"
)

type Event struct {
	EventID  string        `json:"eventId"`
	Type     Type          `json:"type"`
	OrderID  int64         `json:"orderId"`
	BuyerID  int64         `json:"buyerId"`
	SellerID int64         `json:"sellerId"`
	From     domain.Status `json:"from,omitempty"`
	Status   domain.Status `json:"status"`
	At       time.Time     `json:"at"`
}

// New stamps an event with a fresh id and the current time
func New(t Type, orderID, buyerID, sellerID int64, from, to domain.Status) Event {
	return Event{
		EventID:  uuid.NewString(),
		Type:     t,
		OrderID:  orderID,
		BuyerID:  buyerID,
		SellerID: sellerID,
		From:     from,
		Status:   to,
		At:       time.Now().UTC(),
	}
}

// Key groups events of one order, e.g. "order:42"
func (e Event) Key() string {
	family, _, _ := strings.Cut(string(e.Type), ".")
	return family + ":" + strconv.FormatInt(e.OrderID, 10)
}

// Publisher is best effort: callers log failures and carry on
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// KafkaPublisher writes events keyed by order id so one order stays on one partition
type KafkaPublisher struct {
	writer  *kafka.Writer
	logger  *zap.Logger
	timeout time.Duration
}

func NewKafkaPublisher(brokers, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(splitBrokers(brokers)...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaPublisher{writer: writer, logger: logger, timeout: 10 * time.Second}
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func encode(e Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Time:  e.At,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := encode(e)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", e.EventID),
			zap.String("type", string(e.Type)),
			zap.Error(err))
		return err
	}
	p.logger.Debug("event published",
		zap.String("event_id", e.EventID),
		zap.Int64("order_id", e.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
