package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tracking.Shards != 64 || cfg.Tracking.HistoryWindow != 3 {
		t.Errorf("unexpected tracking defaults: %+v", cfg.Tracking)
	}
	if cfg.Tracking.StaleTimeout != 60*time.Second {
		t.Errorf("stale timeout = %v", cfg.Tracking.StaleTimeout)
	}
	if cfg.Geofence.DeviationThreshold != 50 || cfg.Geofence.SpeedLimit != 30 || cfg.Geofence.HighSpeedFactor != 1.5 {
		t.Errorf("unexpected geofence defaults: %+v", cfg.Geofence)
	}
	if cfg.Alerts.Cooldown != 5*time.Minute {
		t.Errorf("cooldown = %v", cfg.Alerts.Cooldown)
	}
	if cfg.Database.Enabled || cfg.Redis.Enabled || cfg.RabbitMQ.Enabled {
		t.Error("infrastructure must be disabled by default")
	}
}

func TestLoadRejectsBadSpeedSource(t *testing.T) {
	t.Setenv("GEOFENCE_SPEED_SOURCE", "gps")
	if _, err := Load(""); !errors.Is(err, ErrInvalidSpeedSrc) {
		t.Fatalf("expected ErrInvalidSpeedSrc, got %v", err)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "TRACE")
	if _, err := Load(""); !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "1", Database: "d"}
	if got := db.GetDSN(); got != "postgres://u:p@h:1/d?sslmode=disable" {
		t.Errorf("GetDSN = %q", got)
	}
	mq := RabbitMQConfig{User: "u", Password: "p", Host: "h", Port: "2"}
	if got := mq.GetDSN(); got != "amqp://u:p@h:2/" {
		t.Errorf("GetDSN = %q", got)
	}
}
