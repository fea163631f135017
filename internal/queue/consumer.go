package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventLog appends one human-readable line per event to a file.  It is
// safe for concurrent use.
type EventLog struct {
	mu   sync.Mutex
	path string
}

// NewEventLog returns an EventLog writing to path.  Parent directories are
// created on first write.
func NewEventLog(path string) *EventLog { return &EventLog{path: path} }

// Handle decodes body according to queue and appends the formatted line.
func (l *EventLog) Handle(queue string, body []byte) error {
	line, err := formatEvent(queue, body)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEvent(queue string, body []byte) (string, error) {
	switch queue {
	case DistributionRecordedQueue:
		var ev DistributionRecordedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Distribution recorded | record_id=%d | family=%s | village=%q | members=%d | received=%s kg | entitled=%s kg | deficit=%s kg | date=%s\n",
			ev.RecordedAt, ev.RecordID, ev.UniqueFamilyID, ev.VillageName, ev.NumMembers,
			ev.RiceReceivedKg, ev.EntitlementKg, ev.DeficitKg, ev.DistributionDate), nil
	case GrievanceFiledQueue:
		var ev GrievanceFiledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Grievance filed | grievance_id=%d | tracking_id=%s | subject=%q | image=%t\n",
			ev.FiledAt, ev.GrievanceID, ev.TrackingID, ev.Subject, ev.HasImage), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}

// Consumer reads both event queues and hands every delivery to an
// EventLog.
type Consumer struct {
	url  string
	sink *EventLog
	log  *zap.Logger
}

// NewConsumer returns a Consumer for the broker at url.
func NewConsumer(url string, sink *EventLog, log *zap.Logger) *Consumer {
	return &Consumer{url: url, sink: sink, log: log.Named("consumer")}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures trigger a reconnect with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended; reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}

	queues := []string{DistributionRecordedQueue, GrievanceFiledQueue}
	deliveries := make([]<-chan amqp.Delivery, 0, len(queues))
	for _, q := range queues {
		if _, err := declareQueue(ch, q); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries = append(deliveries, msgs)
	}

	recorded, filed := deliveries[0], deliveries[1]
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-recorded:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(DistributionRecordedQueue, d)
		case d, ok := <-filed:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(GrievanceFiledQueue, d)
		}
	}
}

func (c *Consumer) handle(queue string, d amqp.Delivery) {
	if err := c.sink.Handle(queue, d.Body); err != nil {
		c.log.Error("handle message failed", zap.String("queue", queue), zap.Error(err))
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
