package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
)

const (
	GeoKey          = "site:drivers:geo"
	ChannelLocation = "site:locations"
	ChannelAlerts   = "site:alerts"
)

func stateKey(driverID string) string {
	return fmt.Sprintf("driver:%s:state", driverID)
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and checks the connection.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// LiveState mirrors live positions and alert events into redis so other
// processes can read the fleet state and subscribe to changes.
type LiveState struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLiveState(client *redis.Client, ttl time.Duration) *LiveState {
	return &LiveState{client: client, ttl: ttl}
}

// SavePositions writes a batch of positions in a single pipeline.
func (s *LiveState) SavePositions(ctx context.Context, positions []models.LivePosition) (err error) {
	const op = "LiveState.SavePositions"
	start := time.Now()
	defer func() { metrics.RecordDatabaseQuery("redis."+op, err, time.Since(start)) }()

	pipe := s.client.Pipeline()
	for _, p := range positions {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}

		key := stateKey(p.DriverID)
		pipe.HSet(ctx, key, map[string]any{
			"driver_id":     p.DriverID,
			"driver_name":   p.DriverName,
			"delivery_id":   p.DeliveryID,
			"route_id":      p.RouteID,
			"lat":           p.Latitude,
			"lng":           p.Longitude,
			"speed":         p.Speed,
			"derived_speed": p.DerivedSpeed,
			"heading":       p.Heading,
			"timestamp":     p.Timestamp.UnixMilli(),
			"received_at":   p.ReceivedAt.UnixMilli(),
		})
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		pipe.GeoAdd(ctx, GeoKey, &redis.GeoLocation{
			Name:      p.DriverID,
			Longitude: p.Longitude,
			Latitude:  p.Latitude,
		})
		pipe.Publish(ctx, ChannelLocation, payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: redis pipeline failed: %w", op, err)
	}
	return nil
}

// PublishAlert implements pipeline.AlertPublisher.
func (s *LiveState) PublishAlert(ctx context.Context, ev models.AlertEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("LiveState.PublishAlert: marshal: %w", err)
	}
	if err := s.client.Publish(ctx, ChannelAlerts, payload).Err(); err != nil {
		return fmt.Errorf("LiveState.PublishAlert: %w", err)
	}
	return nil
}

// Position reads the mirrored state of a driver. ok is false when it expired.
func (s *LiveState) Position(ctx context.Context, driverID string) (models.LivePosition, bool, error) {
	vals, err := s.client.HGetAll(ctx, stateKey(driverID)).Result()
	if err != nil {
		return models.LivePosition{}, false, fmt.Errorf("LiveState.Position: %w", err)
	}
	if len(vals) == 0 {
		return models.LivePosition{}, false, nil
	}

	f := func(k string) float64 {
		v, _ := strconv.ParseFloat(vals[k], 64)
		return v
	}
	ms := func(k string) time.Time {
		v, _ := strconv.ParseInt(vals[k], 10, 64)
		return time.UnixMilli(v)
	}

	return models.LivePosition{
		LocationPing: models.LocationPing{
			DriverID:   vals["driver_id"],
			DriverName: vals["driver_name"],
			DeliveryID: vals["delivery_id"],
			Latitude:   f("lat"),
			Longitude:  f("lng"),
			Speed:      f("speed"),
			Heading:    f("heading"),
			Timestamp:  ms("timestamp"),
			ReceivedAt: ms("received_at"),
		},
		DerivedSpeed: f("derived_speed"),
		RouteID:      vals["route_id"],
	}, true, nil
}
