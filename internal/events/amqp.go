package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (amqpChannel, func() error, error)

const (
	dialTimeout       = 5 * time.Second
	minRedialInterval = time.Second
	maxRedialInterval = 30 * time.Second
)

// ErrBrokerBackoff is returned without dialing while the publisher waits to
// retry an unreachable broker.
var ErrBrokerBackoff = errors.New("amqp broker unavailable; retry pending")

func dialAMQP(url string) (amqpChannel, func() error, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	return ch, conn.Close, nil
}

// AMQPPublisher forwards events as persistent JSON messages to a durable
// queue. The connection is opened on first use and reopened after a failure.
// After a failed dial, events are dropped without dialing until a backoff
// interval (doubling up to 30s) has passed.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *zap.Logger
	dial   dialFunc
	now    func() time.Time

	mu        sync.Mutex
	ch        amqpChannel
	closeConn func() error
	retryAt   time.Time
	backoff   time.Duration
}

// NewAMQPPublisher builds a publisher for queue on the broker at url.
func NewAMQPPublisher(url, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is required")
	}
	if queue == "" {
		return nil, errors.New("amqp queue is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{url: url, queue: queue, logger: logger, dial: dialAMQP, now: time.Now}, nil
}

func (p *AMQPPublisher) channel() (amqpChannel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerBackoff
	}
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		p.deferRetry()
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if closeConn != nil {
			_ = closeConn()
		}
		p.deferRetry()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	p.ch, p.closeConn = ch, closeConn
	p.backoff, p.retryAt = 0, time.Time{}
	return ch, nil
}

func (p *AMQPPublisher) deferRetry() {
	switch {
	case p.backoff == 0:
		p.backoff = minRedialInterval
	case p.backoff < maxRedialInterval:
		p.backoff = min(2*p.backoff, maxRedialInterval)
	}
	p.retryAt = p.now().Add(p.backoff)
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch, p.closeConn = nil, nil
}

// Handle publishes one event. It has the EventHandler signature so it can be
// subscribed to a Dispatcher directly.
func (p *AMQPPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if errors.Is(err, ErrBrokerBackoff) {
		p.logger.Debug("amqp event dropped during backoff", zap.String("event_type", string(event.Type)))
		return err
	}
	if err != nil {
		p.logger.Warn("amqp unavailable",
			zap.String("event_type", string(event.Type)),
			zap.Duration("retry_in", p.backoff),
			zap.Error(err))
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.reset()
		p.logger.Warn("amqp publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}
