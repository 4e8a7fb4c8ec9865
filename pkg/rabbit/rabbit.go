package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	amqp "github.com/rabbitmq/amqp091-go"
)

const heartbeat = 10 * time.Second

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel

	mu       sync.Mutex
	isClosed bool
	dsn      string

	log logger.Logger
}

// New connects to the broker and opens a channel.
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	conn, ch, err := dial(dsn)
	if err != nil {
		return nil, err
	}

	r := &RabbitMQ{
		Conn:    conn,
		Channel: ch,
		dsn:     dsn,
		log:     log,
	}
	go r.monitorConnection(conn, ch)

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")
	return r, nil
}

func dial(dsn string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{Heartbeat: heartbeat})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// monitorConnection marks the client closed when either the connection or the channel goes away.
func (r *RabbitMQ) monitorConnection(conn *amqp.Connection, ch *amqp.Channel) {
	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	var closeErr *amqp.Error
	select {
	case closeErr = <-connClose:
	case closeErr = <-chClose:
	}

	r.mu.Lock()
	if r.Conn == conn {
		r.isClosed = true
	}
	r.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)
	if closeErr != nil {
		r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
	} else {
		r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
	}
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Conn == nil || r.Channel == nil {
		return true
	}
	return r.isClosed || r.Conn.IsClosed() || r.Channel.IsClosed()
}

// DeclareTopic declares a durable topic exchange.
func (r *RabbitMQ) DeclareTopic(exchange string) error {
	if err := r.channel().ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}
	return nil
}

// DeclareQueue declares a durable queue bound to exchange with bindingKey.
func (r *RabbitMQ) DeclareQueue(queue, exchange, bindingKey string) error {
	ch := r.channel()
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, bindingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q: %w", queue, err)
	}
	return nil
}

// PublishJSON marshals msg and publishes it as a persistent message.
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchange, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return r.channel().PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Body:          body,
		Timestamp:     time.Now(),
		CorrelationId: wrap.RequestID(ctx),
	})
}

// Consume starts a manual-ack consumer on queue.
func (r *RabbitMQ) Consume(queue string, prefetch int) (<-chan amqp.Delivery, error) {
	ch := r.channel()
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set qos: %w", err)
		}
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

func (r *RabbitMQ) channel() *amqp.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Channel
}

// Close closes rabbit connection
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	r.mu.Lock()
	if r.Conn == nil {
		r.mu.Unlock()
		return nil
	}
	ch, conn := r.Channel, r.Conn
	r.isClosed = true
	r.Channel, r.Conn = nil, nil
	r.mu.Unlock()

	r.log.Debug(ctx, "closing channel")
	if ch != nil {
		if err := closeWithCtxFunc(ctx, ch.Close); err != nil {
			if ctx.Err() != nil {
				r.log.Debug(ctx, "context cancelled while closing channel")
			} else {
				r.log.Error(ctx, "error closing channel", err)
			}
		}
	}

	r.log.Debug(ctx, "closing RabbitMQ connection")
	if err := closeWithCtxFunc(ctx, conn.Close); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to close connection: %w", err)
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "rabbitMQ closed")
	return nil
}

// helper to close a resource with context cancellation safely
func closeWithCtxFunc(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconnect dials again with linear backoff. It is a no-op on a healthy client.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}
	if !r.IsConnectionClosed() {
		return nil
	}

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
		err  error
	)
	for i := range 5 {
		conn, ch, err = dial(r.dsn)
		if err == nil {
			break
		}

		wait := time.Duration(i+1) * 2 * time.Second
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}

	r.mu.Lock()
	r.Conn, r.Channel = conn, ch
	r.isClosed = false
	r.mu.Unlock()

	go r.monitorConnection(conn, ch)

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitReconnected), "RabbitMQ reconnected successfully")
	return nil
}

func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if r.IsConnectionClosed() {
		r.log.Warn(ctx, "rabbit connection closed, reconnecting...")
		if err := r.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
		}
	}
	return nil
}
