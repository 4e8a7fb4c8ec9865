package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/rabbit"
)

const reconnectDelay = 2 * time.Second

type LocationHandlerFunc func(ctx context.Context, ping models.LocationPing) error

// LocationConsumer feeds pings published by device gateways into the ingestor.
type LocationConsumer struct {
	client   *rabbit.RabbitMQ
	queue    string
	prefetch int
	l        logger.Logger
}

func NewLocationConsumer(client *rabbit.RabbitMQ, queue string, prefetch int, l logger.Logger) *LocationConsumer {
	return &LocationConsumer{client: client, queue: queue, prefetch: prefetch, l: l}
}

// Run consumes until ctx is done, reconnecting when the channel closes.
// Messages of one queue are handled sequentially, which keeps per-driver order.
func (c *LocationConsumer) Run(ctx context.Context, fn LocationHandlerFunc) error {
	const op = "LocationConsumer.Run"
	ctx = wrap.WithAction(ctx, "consume_location_updates")

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := c.client.EnsureConnection(ctx); err != nil {
			c.l.Error(ctx, "ensure connection failed", err, "op", op)
			if !sleep(ctx, reconnectDelay) {
				return nil
			}
			continue
		}

		msgs, err := c.client.Consume(c.queue, c.prefetch)
		if err != nil {
			c.l.Error(ctx, "consume failed", err, "op", op)
			if !sleep(ctx, reconnectDelay) {
				return nil
			}
			continue
		}

		c.l.Info(ctx, "start consuming location updates", "queue", c.queue)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				c.l.Info(ctx, "location consumer shutting down")
				return nil

			case msg, ok := <-msgs:
				if !ok {
					c.l.Warn(ctx, "message channel closed, reconnecting...", "op", op)
					break consumeLoop
				}
				c.handle(ctx, fn, msg)
			}
		}
	}
}

func (c *LocationConsumer) handle(ctx context.Context, fn LocationHandlerFunc, msg amqp.Delivery) {
	var ping models.LocationPing
	if err := json.Unmarshal(msg.Body, &ping); err != nil {
		metrics.RecordRabbitMQConsume(c.queue, err)
		c.l.Warn(ctx, "dropping undecodable location message", "error", err.Error())
		_ = msg.Nack(false, false)
		return
	}

	ctx = wrap.WithRequestID(wrap.WithDriverID(ctx, ping.DriverID), msg.CorrelationId)
	err := fn(ctx, ping)
	metrics.RecordRabbitMQConsume(c.queue, err)
	if err != nil {
		c.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle location update", err)
		_ = msg.Nack(false, errors.Is(err, context.Canceled))
		return
	}

	if err := msg.Ack(false); err != nil {
		c.l.Warn(ctx, "ack failed", "error", err.Error())
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
