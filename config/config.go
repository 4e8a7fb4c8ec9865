package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/configparser"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

// Flags
var (
	configPathFlag = flag.String("config-path", "", "path to the YAML config file")
	helpFlag       = flag.Bool("help", false, "print help and exit")
)

// Errors
var (
	ErrHelpRequested   = errors.New("help requested")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidSpeedSrc = errors.New("invalid speed source")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" default:"sitetrack"`
		LogLevel    string `env:"LOG_LEVEL" default:"INFO"`

		HTTP        HTTPConfig
		Database    DatabaseConfig
		Redis       RedisConfig
		RabbitMQ    RabbitMQConfig
		Auth        Auth
		Tracking    TrackingConfig
		Geofence    GeofenceConfig
		Alerts      AlertsConfig
		Pipeline    PipelineConfig
		Persistence PersistenceConfig
	}

	HTTPConfig struct {
		Port            string        `env:"HTTP_PORT" default:"8001"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" default:"10s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" default:"5s"`
		AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" default:"*"`
	}

	DatabaseConfig struct {
		Enabled  bool   `env:"DATABASE_ENABLED" default:"false"`
		Migrate  bool   `env:"DATABASE_MIGRATE" default:"true"`
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"sitetrack"`
		Password string `env:"DATABASE_PASSWORD" default:"sitetrack"`
		Database string `env:"DATABASE_DATABASE" default:"sitetrack"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RedisConfig struct {
		Enabled  bool          `env:"REDIS_ENABLED" default:"false"`
		Addr     string        `env:"REDIS_ADDR" default:"localhost:6379"`
		Password string        `env:"REDIS_PASSWORD" default:""`
		DB       int           `env:"REDIS_DB" default:"0"`
		StateTTL time.Duration `env:"REDIS_STATE_TTL" default:"30s"`
	}

	RabbitMQConfig struct {
		Enabled       bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host          string `env:"RABBITMQ_HOST" default:"localhost"`
		Port          string `env:"RABBITMQ_PORT" default:"5672"`
		User          string `env:"RABBITMQ_USER" default:"guest"`
		Password      string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange      string `env:"RABBITMQ_EXCHANGE" default:"tracking_topic"`
		LocationQueue string `env:"RABBITMQ_LOCATION_QUEUE" default:"location_updates"`
	}

	Auth struct {
		Enabled   bool   `env:"AUTH_ENABLED" default:"false"`
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	TrackingConfig struct {
		Shards          int           `env:"TRACKING_SHARDS" default:"64"`
		HistoryWindow   int           `env:"TRACKING_HISTORY_WINDOW" default:"3"`
		StaleTimeout    time.Duration `env:"TRACKING_STALE_TIMEOUT" default:"60s"`
		SweepInterval   time.Duration `env:"TRACKING_SWEEP_INTERVAL" default:"10s"`
		ActiveDriverTTL time.Duration `env:"TRACKING_ACTIVE_DRIVER_TTL" default:"5m"`
	}

	GeofenceConfig struct {
		DeviationThreshold float64 `env:"GEOFENCE_DEVIATION_THRESHOLD" default:"50"`
		SpeedLimit         float64 `env:"GEOFENCE_SPEED_LIMIT" default:"30"`
		HighSpeedFactor    float64 `env:"GEOFENCE_HIGH_SPEED_FACTOR" default:"1.5"`
		SpeedSource        string  `env:"GEOFENCE_SPEED_SOURCE" default:"derived"`
	}

	AlertsConfig struct {
		Cooldown time.Duration `env:"ALERTS_COOLDOWN" default:"5m"`
		Stripes  int           `env:"ALERTS_STRIPES" default:"64"`
	}

	PipelineConfig struct {
		BufferSize    int           `env:"PIPELINE_BUFFER_SIZE" default:"4096"`
		BatchSize     int           `env:"PIPELINE_BATCH_SIZE" default:"500"`
		FlushInterval time.Duration `env:"PIPELINE_FLUSH_INTERVAL" default:"1s"`
		Workers       int           `env:"PIPELINE_WORKERS" default:"2"`
	}

	PersistenceConfig struct {
		RetryAttempts int           `env:"PERSISTENCE_RETRY_ATTEMPTS" default:"3"`
		RetryInitial  time.Duration `env:"PERSISTENCE_RETRY_INITIAL" default:"50ms"`
		RetryMax      time.Duration `env:"PERSISTENCE_RETRY_MAX" default:"1s"`
		Timeout       time.Duration `env:"PERSISTENCE_TIMEOUT" default:"2s"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolLimits() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// NewConfig parses flags, then loads .env, the YAML file and env/default tags.
func NewConfig() (*Config, error) {
	if !flag.Parsed() {
		flag.Parse()
	}
	if *helpFlag {
		return nil, ErrHelpRequested
	}
	return Load(*configPathFlag)
}

// Load builds a Config from the given YAML path (may be empty).
func Load(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !logger.ValidateLogLevel(c.LogLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	switch types.SpeedSource(c.Geofence.SpeedSource) {
	case types.SpeedDerived, types.SpeedReported, types.SpeedMax:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSpeedSrc, c.Geofence.SpeedSource)
	}
	if c.Tracking.Shards <= 0 {
		c.Tracking.Shards = 64
	}
	if c.Tracking.HistoryWindow < 2 {
		c.Tracking.HistoryWindow = 2
	}
	return nil
}
