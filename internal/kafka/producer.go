package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// События действий администратора.
const (
	EventTicketReplied       = "ticket.replied"
	EventTicketStatusChanged = "ticket.status_changed"
	EventTicketMessageSent   = "ticket.message_sent"
	EventUserAdminToggled    = "user.admin_toggled"
	EventUserSuspended       = "user.suspended"
	EventUserUnsuspended     = "user.unsuspended"
	EventUserCreditsAdjusted = "user.credits_adjusted"
	EventPostHiddenToggled   = "post.hidden_toggled"
	EventPostPinnedToggled   = "post.pinned_toggled"
	EventPostDeleted         = "post.deleted"
	EventReportResolved      = "report.resolved"
	EventUserReportResolved  = "user_report.resolved"
	EventReviewDeleted       = "review.deleted"
	EventCheckInDeleted      = "checkin.deleted"
	EventPlaceActiveToggled  = "place.active_toggled"
)

// PublishTimeout ограничивает одну отправку и ожидание в Close.
const PublishTimeout = 5 * time.Second

// AdminEventProducer публикует действия администратора в фоне (подменяется в тестах).
type AdminEventProducer interface {
	PublishAdminEvent(event string, payload map[string]interface{})
}

// Producer пишет события в топик Kafka (best-effort, не блокирует команды).
// Close дожидается отправок, начатых до него.
type Producer struct {
	write  func(ctx context.Context, msgs ...kafka.Message) error
	closer func() error
	topic  string
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewProducer создаёт продюсер. Если brokers или topic пустые, методы no-op.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Producer{logger: logger.With("component", "kafka")}
	if len(brokers) == 0 || topic == "" {
		return p
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	p.topic = topic
	p.write = w.WriteMessages
	p.closer = w.Close
	return p
}

func (p *Producer) Enabled() bool { return p.write != nil }

// PublishAdminEvent отправляет событие в отдельной горутине с таймаутом
// PublishTimeout. После Close события отбрасываются.
func (p *Producer) PublishAdminEvent(event string, payload map[string]interface{}) {
	if p.write == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("admin event dropped: producer closed", "event", event)
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()
		p.ProduceAdminEvent(ctx, event, payload)
	}()
}

// ProduceAdminEvent пишет событие синхронно; ключ сообщения target_id, чтобы
// события одного тикета или пользователя шли в одну партицию.
func (p *Producer) ProduceAdminEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.write == nil {
		return
	}
	body, err := encodeEvent(event, payload)
	if err != nil {
		p.logger.Warn("marshal admin event", "event", event, "error", err)
		return
	}
	var key []byte
	if id, ok := payload["target_id"].(string); ok {
		key = []byte(id)
	}
	if err := p.write(ctx, kafka.Message{Key: key, Value: body}); err != nil {
		p.logger.Warn("write admin event", "event", event, "topic", p.topic, "error", err)
	}
}

func encodeEvent(event string, payload map[string]interface{}) ([]byte, error) {
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	return json.Marshal(msg)
}

// Close ждёт начатые отправки (не дольше PublishTimeout) и закрывает writer.
func (p *Producer) Close() error {
	if p.write == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(PublishTimeout):
		p.logger.Warn("closing kafka writer with events still in flight")
	}
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// ParseBrokers разбивает строку брокеров "host1:9092,host2:9092" на слайс.
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
