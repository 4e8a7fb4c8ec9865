package config

import (
	"context"
	"flag"
	"fmt"

	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

const HelpMessage = `SiteTrack - real-time tracking and alerting engine

Usage:
  sitetrack [-config-path <file>] [-help]

Options:
  -config-path   YAML config file; keys are flattened into env vars
                 (database.host -> DATABASE_HOST). Values already set in
                 the environment or in .env take precedence.
  -help          Show this message.

Components are enabled with DATABASE_ENABLED, REDIS_ENABLED,
RABBITMQ_ENABLED and AUTH_ENABLED. Without them the engine runs
fully in memory.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig logs the effective configuration with secrets masked.
func PrintConfig(ctx context.Context, cfg *Config, log logger.Logger) {
	log.Info(ctx, "configuration loaded",
		"service", cfg.ServiceName,
		"log_level", cfg.LogLevel,
		"http_port", cfg.HTTP.Port,
		"database_enabled", cfg.Database.Enabled,
		"database_host", cfg.Database.Host,
		"database_password", mask(cfg.Database.Password),
		"redis_enabled", cfg.Redis.Enabled,
		"redis_addr", cfg.Redis.Addr,
		"rabbitmq_enabled", cfg.RabbitMQ.Enabled,
		"rabbitmq_host", cfg.RabbitMQ.Host,
		"auth_enabled", cfg.Auth.Enabled,
		"jwt_secret", mask(cfg.Auth.JWTSecret),
		"shards", cfg.Tracking.Shards,
		"stale_timeout", cfg.Tracking.StaleTimeout.String(),
		"deviation_threshold_m", cfg.Geofence.DeviationThreshold,
		"speed_limit_kmh", cfg.Geofence.SpeedLimit,
		"speed_source", cfg.Geofence.SpeedSource,
		"alert_cooldown", cfg.Alerts.Cooldown.String(),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
