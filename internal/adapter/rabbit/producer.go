package rabbit

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/rabbit"
)

// LocationBinding routes every location.* message to the location queue.
const LocationBinding = "location.#"

func alertKey(a models.Alert) string {
	return fmt.Sprintf("alert.%s.%s", a.Type, a.DriverID)
}

func deliveryKey(id string) string {
	return fmt.Sprintf("delivery.status.%s", id)
}

func LocationKey(driverID string) string {
	return fmt.Sprintf("location.%s", driverID)
}

// Setup declares the tracking exchange and the location queue.
func Setup(client *rabbit.RabbitMQ, exchange, locationQueue string) error {
	if err := client.DeclareTopic(exchange); err != nil {
		return err
	}
	return client.DeclareQueue(locationQueue, exchange, LocationBinding)
}

// Producer publishes alert and delivery events on the tracking exchange.
type Producer struct {
	client   *rabbit.RabbitMQ
	exchange string
}

func NewProducer(client *rabbit.RabbitMQ, exchange string) *Producer {
	return &Producer{client: client, exchange: exchange}
}

func (p *Producer) publish(ctx context.Context, key string, msg any) error {
	if err := p.client.EnsureConnection(ctx); err != nil {
		metrics.RecordRabbitMQPublish(key, err)
		return err
	}
	err := p.client.PublishJSON(ctx, p.exchange, key, msg)
	metrics.RecordRabbitMQPublish(key, err)
	return err
}

// PublishAlert implements pipeline.AlertPublisher.
func (p *Producer) PublishAlert(ctx context.Context, ev models.AlertEvent) error {
	const op = "Producer.PublishAlert"
	ctx = wrap.WithAction(ctx, "publish_alert")

	if err := p.publish(ctx, alertKey(ev.Alert), ev); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// PublishDeliveryStatus implements pipeline.DeliveryPublisher.
func (p *Producer) PublishDeliveryStatus(ctx context.Context, ev models.DeliveryStatusEvent) error {
	const op = "Producer.PublishDeliveryStatus"
	ctx = wrap.WithAction(ctx, "publish_delivery_status")

	if err := p.publish(ctx, deliveryKey(ev.DeliveryID), ev); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
