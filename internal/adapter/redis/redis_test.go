package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

func newStore(t *testing.T) (*LiveState, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewLiveState(client, 30*time.Second), mr, client
}

func TestSavePositions(t *testing.T) {
	store, mr, _ := newStore(t)
	ctx := context.Background()
	ts := time.UnixMilli(1_700_000_000_000)

	positions := []models.LivePosition{
		{
			LocationPing: models.LocationPing{
				DriverID: "D1", DriverName: "Alice", DeliveryID: "dl-1",
				Latitude: 48.8049, Longitude: 2.1201, Speed: 12, Heading: 90,
				Timestamp: ts, ReceivedAt: ts,
			},
			DerivedSpeed: 14.5,
			RouteID:      "route-chateau",
		},
		{LocationPing: models.LocationPing{DriverID: "D2", Latitude: 48.81, Longitude: 2.11, Timestamp: ts}},
	}
	if err := store.SavePositions(ctx, positions); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}

	if got := mr.HGet(stateKey("D1"), "delivery_id"); got != "dl-1" {
		t.Errorf("delivery_id = %q", got)
	}
	if ttl := mr.TTL(stateKey("D1")); ttl != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", ttl)
	}

	got, ok, err := store.Position(ctx, "D1")
	if err != nil || !ok {
		t.Fatalf("Position: ok=%v err=%v", ok, err)
	}
	if got.DerivedSpeed != 14.5 || got.RouteID != "route-chateau" || !got.Timestamp.Equal(ts) || got.DriverName != "Alice" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	mr.FastForward(31 * time.Second)
	if _, ok, _ := store.Position(ctx, "D1"); ok {
		t.Error("state should expire after the ttl")
	}
}

func TestPublishAlert(t *testing.T) {
	store, _, client := newStore(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, ChannelAlerts)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ev := models.AlertEvent{Kind: models.AlertCreated, Alert: models.Alert{ID: "a1", Type: types.AlertSpeed, DriverID: "D1"}}
	if err := store.PublishAlert(ctx, ev); err != nil {
		t.Fatalf("PublishAlert: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got models.AlertEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatal(err)
		}
		if got.Alert.ID != "a1" || got.Kind != models.AlertCreated {
			t.Errorf("unexpected event %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no alert published")
	}
}
