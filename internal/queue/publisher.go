package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ.  Each publish opens its own
// connection; event volume is a handful per minute.  Errors are logged and
// returned so callers can ignore them without interrupting the request.
type Publisher struct {
	url string
	log *zap.Logger

	// DialTimeout bounds the TCP connect and the AMQP handshake.  A
	// shorter deadline on the publish context wins.
	DialTimeout time.Duration
}

// DefaultDialTimeout is used when DialTimeout is unset.
const DefaultDialTimeout = 2 * time.Second

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log.Named("publisher"), DialTimeout: DefaultDialTimeout}
}

// dialTimeout returns the connect budget left for ctx.
func (p *Publisher) dialTimeout(ctx context.Context) (time.Duration, error) {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

// PublishDistributionRecorded publishes ev to the distribution.recorded queue.
func (p *Publisher) PublishDistributionRecorded(ctx context.Context, ev DistributionRecordedEvent) error {
	return p.publish(ctx, DistributionRecordedQueue, ev)
}

// PublishGrievanceFiled publishes ev to the grievance.filed queue.
func (p *Publisher) PublishGrievanceFiled(ctx context.Context, ev GrievanceFiledEvent) error {
	return p.publish(ctx, GrievanceFiledQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	log := p.log.With(zap.String("queue", queue))

	body, err := json.Marshal(event)
	if err != nil {
		log.Error("marshal event failed", zap.Error(err))
		return err
	}

	timeout, err := p.dialTimeout(ctx)
	if err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(timeout), Locale: "en_US"})
	if err != nil {
		log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := declareQueue(ch, queue); err != nil {
		log.Warn("queue declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Warn("publish failed", zap.Error(err))
		return err
	}
	return nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}

// NopPublisher drops every event.  It is used when no broker URL is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishDistributionRecorded(context.Context, DistributionRecordedEvent) error {
	return nil
}

func (NopPublisher) PublishGrievanceFiled(context.Context, GrievanceFiledEvent) error { return nil }
