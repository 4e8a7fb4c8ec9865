package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/sitetrack/config"
	"github.com/Temutjin2k/sitetrack/internal/adapter/http/handler"
	repo "github.com/Temutjin2k/sitetrack/internal/adapter/postgres"
	mq "github.com/Temutjin2k/sitetrack/internal/adapter/rabbit"
	"github.com/Temutjin2k/sitetrack/internal/adapter/redis"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/postgres"
	"github.com/Temutjin2k/sitetrack/pkg/rabbit"
	"github.com/Temutjin2k/sitetrack/pkg/trm"
)

var errRabbitDisconnected = errors.New("rabbitmq connection is closed")

// consumerPrefetch bounds unacknowledged location messages per consumer.
const consumerPrefetch = 50

// infra holds the optional backends. A nil field means the backend is disabled.
type infra struct {
	db    *postgres.PostgreDB
	redis *goredis.Client
	mq    *rabbit.RabbitMQ

	deliveries *repo.DeliveryRepo
	alerts     *repo.AlertRepo
	history    *repo.LocationHistoryRepo
	routes     *repo.RouteRepo

	liveState *redis.LiveState
	producer  *mq.Producer
	consumer  *mq.LocationConsumer
}

func openInfra(ctx context.Context, cfg config.Config, log logger.Logger) (_ *infra, err error) {
	in := &infra{}
	defer func() {
		if err != nil {
			in.close(ctx, log)
		}
	}()

	if cfg.Database.Enabled {
		ctx := wrap.WithAction(ctx, "postgres_connect")
		if in.db, err = postgres.New(ctx, cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to setup database: %w", err)
		}
		if cfg.Database.Migrate {
			if err = repo.Migrate(ctx, in.db.Pool); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		tx := trm.New(in.db.Pool)
		in.deliveries = repo.NewDeliveryRepo(in.db.Pool, tx)
		in.alerts = repo.NewAlertRepo(in.db.Pool)
		in.history = repo.NewLocationHistoryRepo(in.db.Pool)
		in.routes = repo.NewRouteRepo(in.db.Pool)
		log.Info(ctx, "connected to postgres", "host", cfg.Database.Host, "database", cfg.Database.Database)
	}

	if cfg.Redis.Enabled {
		in.redis, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		in.liveState = redis.NewLiveState(in.redis, cfg.Redis.StateTTL)
		log.Info(ctx, "connected to redis", "addr", cfg.Redis.Addr)
	}

	if cfg.RabbitMQ.Enabled {
		if in.mq, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log); err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		if err = mq.Setup(in.mq, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.LocationQueue); err != nil {
			return nil, fmt.Errorf("failed to declare rabbitmq topology: %w", err)
		}
		in.producer = mq.NewProducer(in.mq, cfg.RabbitMQ.Exchange)
		in.consumer = mq.NewLocationConsumer(in.mq, cfg.RabbitMQ.LocationQueue, consumerPrefetch, log)
		log.Info(ctx, "connected to rabbitmq", "host", cfg.RabbitMQ.Host, "exchange", cfg.RabbitMQ.Exchange)
	}

	return in, nil
}

// healthChecks probes every connected backend.
func (in *infra) healthChecks() []handler.HealthCheck {
	var checks []handler.HealthCheck
	if in.db != nil {
		checks = append(checks, handler.HealthCheck{Name: "postgres", Check: in.db.Pool.Ping})
	}
	if in.redis != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return in.redis.Ping(ctx).Err()
		}})
	}
	if in.mq != nil {
		checks = append(checks, handler.HealthCheck{Name: "rabbitmq", Check: func(context.Context) error {
			if in.mq.IsConnectionClosed() {
				return errRabbitDisconnected
			}
			return nil
		}})
	}
	return checks
}

func (in *infra) close(ctx context.Context, log logger.Logger) {
	if in.mq != nil {
		if err := in.mq.Close(ctx); err != nil {
			log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn(ctx, "failed to close redis client", "error", err.Error())
		}
	}
	in.db.Close()
}
