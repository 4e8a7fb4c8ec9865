package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "sitetrack", LevelDebug)

	ctx := wrap.WithAction(context.Background(), "ingest")
	ctx = wrap.WithDriverID(ctx, "drv-1")
	l.Info(ctx, "ping accepted", "lat", 43.2)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	line := lines[0]
	for key, want := range map[string]any{
		"message":   "ping accepted",
		"service":   "sitetrack",
		"action":    "ingest",
		"driver_id": "drv-1",
		"lat":       43.2,
	} {
		if line[key] != want {
			t.Errorf("%s = %v, want %v", key, line[key], want)
		}
	}
	if _, ok := line["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "sitetrack", "warn")

	ctx := context.Background()
	l.Debug(ctx, "debug")
	l.Info(ctx, "info")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["message"] != "warn" || lines[1]["message"] != "error" {
		t.Errorf("unexpected messages: %v, %v", lines[0]["message"], lines[1]["message"])
	}
}

func TestErrorMergesWrappedContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "sitetrack", LevelDebug)

	failing := wrap.WithDeliveryID(wrap.WithAction(context.Background(), "persist_delivery"), "del-9")
	err := wrap.Error(failing, errors.New("connection reset"))

	ctx := wrap.WithRequestID(wrap.WithAction(context.Background(), "update_status"), "req-1")
	l.Error(ctx, "status update failed", err)

	line := decodeLines(t, &buf)[0]
	if line["action"] != "persist_delivery" {
		t.Errorf("action = %v, want the one recorded with the error", line["action"])
	}
	if line["delivery_id"] != "del-9" || line["request_id"] != "req-1" {
		t.Errorf("fields not merged: %v", line)
	}
	group, ok := line["error"].(map[string]any)
	if !ok || group["msg"] != "connection reset" {
		t.Errorf("error group = %v", line["error"])
	}
}

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"DEBUG", true},
		{"info", true},
		{" Warn ", true},
		{"ERROR", true},
		{"TRACE", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateLogLevel(tt.in); got != tt.want {
			t.Errorf("ValidateLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
