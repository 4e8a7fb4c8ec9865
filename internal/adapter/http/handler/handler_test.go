package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/service/alert"
	"github.com/Temutjin2k/sitetrack/internal/service/dashboard"
	"github.com/Temutjin2k/sitetrack/internal/service/delivery"
	"github.com/Temutjin2k/sitetrack/internal/service/geofence"
	"github.com/Temutjin2k/sitetrack/internal/service/route"
	"github.com/Temutjin2k/sitetrack/internal/service/tracking"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

type testEnv struct {
	mux        *http.ServeMux
	deliveries *delivery.StateMachine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	routes := route.NewCatalog(route.DemoRoutes())
	alerts := alert.NewManager(alert.Config{Cooldown: 5 * time.Minute}, log)
	deliveries := delivery.New(routes, log)
	eval := geofence.New(geofence.Config{DeviationThreshold: 50, SpeedLimit: 30})
	tracker := tracking.New(tracking.Config{StaleTimeout: time.Minute, ActiveDriverTTL: 5 * time.Minute},
		tracking.NewLiveStore(4, 3), deliveries, routes, alerts, eval, log)
	agg := dashboard.New(tracker, deliveries, alerts, routes)

	loc := NewLocation(tracker, agg, nil, log)
	al := NewAlert(alerts, tracker, log)
	del := NewDelivery(deliveries, routes, log)
	rt := NewRoute(routes, log)
	dash := NewDashboard(agg, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/location/update", loc.Update)
	mux.HandleFunc("GET /api/location/active", loc.Active)
	mux.HandleFunc("GET /api/location/history/{delivery_id}", loc.History)
	mux.HandleFunc("GET /api/alerts", al.List)
	mux.HandleFunc("PUT /api/alerts/{id}/resolve", al.Resolve)
	mux.HandleFunc("POST /api/alerts/emergency", al.Emergency)
	mux.HandleFunc("POST /api/deliveries", del.Create)
	mux.HandleFunc("GET /api/deliveries", del.List)
	mux.HandleFunc("GET /api/deliveries/{id}", del.Get)
	mux.HandleFunc("PUT /api/deliveries/{id}/status", del.UpdateStatus)
	mux.HandleFunc("POST /api/deliveries/{id}/assign", del.Assign)
	mux.HandleFunc("POST /api/qr/scan", del.ScanQR)
	mux.HandleFunc("GET /api/routes", rt.List)
	mux.HandleFunc("GET /api/routes/{id}", rt.Get)
	mux.HandleFunc("GET /api/stats/dashboard", dash.Stats)

	return &testEnv{mux: mux, deliveries: deliveries}
}

var (
	adminActor  = models.Actor{ID: "admin-1", Role: types.AdminRole}
	driverActor = models.Actor{ID: "drv-1", Role: types.DriverRole}
)

func (e *testEnv) do(t *testing.T, actor models.Actor, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r = r.WithContext(models.WithActor(r.Context(), actor))

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) createDelivery(t *testing.T, body string) models.Delivery {
	t.Helper()
	w := e.do(t, adminActor, http.MethodPost, "/api/deliveries", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create delivery: status %d body %s", w.Code, w.Body.String())
	}
	return decode[models.Delivery](t, w)
}

func TestLocationUpdate(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name       string
		actor      models.Actor
		body       string
		wantStatus int
		wantAccept bool
		wantReason string
	}{
		{"malformed json", driverActor, `{"driver_id":`, http.StatusBadRequest, false, ""},
		{"unknown field", driverActor, `{"driver_id":"drv-1","latitude":48.8,"longitude":2.1,"foo":1}`, http.StatusBadRequest, false, ""},
		{"missing latitude", driverActor, `{"driver_id":"drv-1","longitude":2.1}`, http.StatusUnprocessableEntity, false, ""},
		{"missing driver", driverActor, `{"latitude":48.8,"longitude":2.1}`, http.StatusUnprocessableEntity, false, ""},
		{"other driver", driverActor, `{"driver_id":"drv-2","latitude":48.8,"longitude":2.1}`, http.StatusForbidden, false, ""},
		{"out of range is dropped", driverActor, `{"driver_id":"drv-1","latitude":120,"longitude":2.1}`, http.StatusOK, false, "invalid"},
		{"accepted", driverActor, `{"driver_id":"drv-1","latitude":48.8049,"longitude":2.1201,"speed":12,"heading":90}`, http.StatusOK, true, ""},
		{"admin for any driver", adminActor, `{"driver_id":"drv-3","latitude":48.8049,"longitude":2.1201}`, http.StatusOK, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, tt.actor, http.MethodPost, "/api/location/update", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}
			resp := decode[map[string]any](t, w)
			if resp["success"] != true || resp["accepted"] != tt.wantAccept {
				t.Errorf("unexpected response %v", resp)
			}
			if tt.wantReason != "" && resp["reason"] != tt.wantReason {
				t.Errorf("reason = %v, want %s", resp["reason"], tt.wantReason)
			}
		})
	}

	w := e.do(t, adminActor, http.MethodGet, "/api/location/active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("active: status %d", w.Code)
	}
	if drivers := decode[[]models.ActiveDriver](t, w); len(drivers) != 2 {
		t.Errorf("active drivers = %d, want 2", len(drivers))
	}
}

func TestLocationHistoryWithoutDatabase(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, adminActor, http.MethodGet, "/api/location/history/some-delivery", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

type historyStub struct {
	points []models.HistoryPoint
	limit  int
}

func (h *historyStub) ListByDelivery(_ context.Context, deliveryID string, limit int) ([]models.HistoryPoint, error) {
	h.limit = limit
	if deliveryID == "broken" {
		return nil, errors.New("connection refused")
	}
	return h.points, nil
}

func TestLocationHistory(t *testing.T) {
	store := &historyStub{points: []models.HistoryPoint{{DriverID: "drv-1", DeliveryID: "d-1", Latitude: 48.8, Longitude: 2.1}}}
	loc := NewLocation(nil, nil, store, logger.Discard())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/location/history/{delivery_id}", loc.History)

	tests := []struct {
		target     string
		wantStatus int
		wantLimit  int
	}{
		{"/api/location/history/d-1", http.StatusOK, 1000},
		{"/api/location/history/d-1?limit=10", http.StatusOK, 10},
		{"/api/location/history/d-1?limit=0", http.StatusUnprocessableEntity, 0},
		{"/api/location/history/d-1?limit=abc", http.StatusUnprocessableEntity, 0},
		{"/api/location/history/broken", http.StatusInternalServerError, 1000},
	}
	for _, tt := range tests {
		store.limit = 0
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if w.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.target, w.Code, tt.wantStatus)
		}
		if store.limit != tt.wantLimit {
			t.Errorf("%s: limit = %d, want %d", tt.target, store.limit, tt.wantLimit)
		}
	}
}

func TestAlertEndpoints(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, driverActor, http.MethodPost, "/api/alerts/emergency",
		`{"driver_id":"drv-1","driver_name":"Jean","latitude":48.8049,"longitude":2.1201,"message":"Flat tyre"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("emergency: status %d body %s", w.Code, w.Body.String())
	}
	created := decode[map[string]any](t, w)
	id, _ := created["alert_id"].(string)
	if id == "" {
		t.Fatalf("emergency response has no alert id: %v", created)
	}

	if w := e.do(t, driverActor, http.MethodPost, "/api/alerts/emergency",
		`{"driver_id":"drv-2","latitude":48.8,"longitude":2.1}`); w.Code != http.StatusForbidden {
		t.Errorf("emergency for another driver: status %d, want 403", w.Code)
	}
	if w := e.do(t, driverActor, http.MethodPost, "/api/alerts/emergency", `{"driver_id":"drv-1"}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("emergency without position: status %d, want 422", w.Code)
	}

	w = e.do(t, adminActor, http.MethodGet, "/api/alerts?resolved=false", "")
	open := decode[[]models.Alert](t, w)
	if len(open) != 1 || open[0].Type != types.AlertEmergency || open[0].Severity != types.SeverityCritical {
		t.Fatalf("open alerts = %+v", open)
	}

	if w := e.do(t, adminActor, http.MethodGet, "/api/alerts?resolved=maybe", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad resolved flag: status %d, want 422", w.Code)
	}
	if w := e.do(t, adminActor, http.MethodGet, "/api/alerts?type=fire", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type: status %d, want 422", w.Code)
	}

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantReason string
	}{
		{"resolve", id, http.StatusOK, ""},
		{"resolve twice", id, http.StatusConflict, "already_resolved"},
		{"unknown", "nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := e.do(t, adminActor, http.MethodPut, "/api/alerts/"+tt.id+"/resolve", "")
		if w.Code != tt.wantStatus {
			t.Fatalf("%s: status = %d, want %d", tt.name, w.Code, tt.wantStatus)
		}
		if tt.wantReason != "" {
			if got := decode[map[string]any](t, w)["reason"]; got != tt.wantReason {
				t.Errorf("%s: reason = %v, want %s", tt.name, got, tt.wantReason)
			}
		}
	}

	w = e.do(t, adminActor, http.MethodGet, "/api/alerts?resolved=true", "")
	resolved := decode[[]models.Alert](t, w)
	if len(resolved) != 1 || resolved[0].ResolvedBy != adminActor.ID || resolved[0].ResolvedAt == nil {
		t.Errorf("resolved alerts = %+v", resolved)
	}
}

func TestDeliveryLifecycle(t *testing.T) {
	e := newTestEnv(t)

	if w := e.do(t, driverActor, http.MethodPost, "/api/deliveries", `{"route_id":"route-chateau"}`); w.Code != http.StatusForbidden {
		t.Errorf("driver create: status %d, want 403", w.Code)
	}
	if w := e.do(t, adminActor, http.MethodPost, "/api/deliveries", `{"route_id":"route-nowhere"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown route: status %d, want 404", w.Code)
	}

	d := e.createDelivery(t, `{"route_id":"route-chateau","company":"BTP Versailles"}`)
	if d.Status != types.StatusPending || d.RouteName == "" {
		t.Fatalf("created delivery %+v", d)
	}
	status := func(actor models.Actor, query string) *httptest.ResponseRecorder {
		return e.do(t, actor, http.MethodPut, fmt.Sprintf("/api/deliveries/%s/status?%s", d.ID, query), "")
	}

	steps := []struct {
		name       string
		run        func() *httptest.ResponseRecorder
		wantStatus int
		wantReason string
	}{
		{"start unbound", func() *httptest.ResponseRecorder { return status(adminActor, "status=in_progress") }, http.StatusConflict, "driver_not_bound"},
		{"missing status", func() *httptest.ResponseRecorder { return status(adminActor, "") }, http.StatusUnprocessableEntity, ""},
		{"unknown status", func() *httptest.ResponseRecorder { return status(adminActor, "status=lost") }, http.StatusUnprocessableEntity, ""},
		{"unknown action", func() *httptest.ResponseRecorder { return status(adminActor, "action=fly") }, http.StatusUnprocessableEntity, ""},
		{"assign", func() *httptest.ResponseRecorder {
			return e.do(t, adminActor, http.MethodPost, "/api/deliveries/"+d.ID+"/assign",
				`{"driver_id":"drv-1","driver_name":"Jean","vehicle_type":"truck","license_plate":"AB-123-CD"}`)
		}, http.StatusOK, ""},
		{"rebind to other driver", func() *httptest.ResponseRecorder {
			return e.do(t, adminActor, http.MethodPost, "/api/deliveries/"+d.ID+"/assign", `{"driver_id":"drv-9"}`)
		}, http.StatusConflict, "already_bound"},
		{"other driver starts", func() *httptest.ResponseRecorder {
			return status(models.Actor{ID: "drv-2", Role: types.DriverRole}, "status=in_progress")
		}, http.StatusForbidden, "not_assigned_driver"},
		{"start", func() *httptest.ResponseRecorder { return status(driverActor, "status=in_progress") }, http.StatusOK, ""},
		{"back to pending", func() *httptest.ResponseRecorder { return status(adminActor, "status=pending") }, http.StatusConflict, "invalid_transition"},
		{"driver cancels", func() *httptest.ResponseRecorder { return status(driverActor, "status=cancelled") }, http.StatusForbidden, "admin_only"},
		{"arrive", func() *httptest.ResponseRecorder { return status(driverActor, "action=arrive") }, http.StatusOK, ""},
		{"complete again", func() *httptest.ResponseRecorder { return status(driverActor, "status=completed") }, http.StatusConflict, "invalid_transition"},
	}

	for _, s := range steps {
		w := s.run()
		if w.Code != s.wantStatus {
			t.Fatalf("%s: status = %d, want %d (body %s)", s.name, w.Code, s.wantStatus, w.Body.String())
		}
		if s.wantReason != "" {
			if got := decode[map[string]any](t, w)["reason"]; got != s.wantReason {
				t.Errorf("%s: reason = %v, want %s", s.name, got, s.wantReason)
			}
		}
	}

	w := e.do(t, adminActor, http.MethodGet, "/api/deliveries/"+d.ID, "")
	got := decode[models.Delivery](t, w)
	if got.Status != types.StatusCompleted || got.DriverName != "Jean" || got.LicensePlate != "AB-123-CD" || got.EndTime == nil {
		t.Errorf("final delivery %+v", got)
	}

	if w := e.do(t, adminActor, http.MethodGet, "/api/deliveries/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing delivery: status %d, want 404", w.Code)
	}
	if w := e.do(t, adminActor, http.MethodPut, "/api/deliveries/missing/status?status=completed", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing delivery transition: status %d, want 404", w.Code)
	}
}

func TestDeliveryList(t *testing.T) {
	e := newTestEnv(t)
	e.createDelivery(t, `{"route_id":"route-chateau"}`)
	e.createDelivery(t, `{"route_id":"route-grand-trianon","driver_id":"drv-1","driver_name":"Jean"}`)

	tests := []struct {
		query      string
		wantStatus int
		wantLen    int
	}{
		{"", http.StatusOK, 2},
		{"?status=pending", http.StatusOK, 2},
		{"?status=completed", http.StatusOK, 0},
		{"?driver_id=drv-1", http.StatusOK, 1},
		{"?status=done", http.StatusUnprocessableEntity, 0},
	}
	for _, tt := range tests {
		w := e.do(t, adminActor, http.MethodGet, "/api/deliveries"+tt.query, "")
		if w.Code != tt.wantStatus {
			t.Fatalf("%q: status = %d, want %d", tt.query, w.Code, tt.wantStatus)
		}
		if w.Code == http.StatusOK {
			if got := decode[[]models.Delivery](t, w); len(got) != tt.wantLen {
				t.Errorf("%q: len = %d, want %d", tt.query, len(got), tt.wantLen)
			}
		}
	}
}

func TestScanQR(t *testing.T) {
	e := newTestEnv(t)
	d := e.createDelivery(t, `{"route_id":"route-chateau"}`)
	other := e.createDelivery(t, `{"route_id":"route-chateau"}`)

	payload, _ := json.Marshal(map[string]string{"delivery_id": d.ID, "route_id": "route-chateau"})
	asString, _ := json.Marshal(string(payload))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"garbage", `{"qr_data":"not json"}`, http.StatusBadRequest},
		{"missing", `{}`, http.StatusBadRequest},
		{"incomplete", `{"qr_data":{"delivery_id":"x"}}`, http.StatusUnprocessableEntity},
		{"route mismatch", fmt.Sprintf(`{"qr_data":{"delivery_id":%q,"route_id":"route-orangerie"}}`, other.ID), http.StatusUnprocessableEntity},
		{"unknown delivery", `{"qr_data":{"delivery_id":"nope","route_id":"route-chateau"}}`, http.StatusNotFound},
		{"string payload", fmt.Sprintf(`{"qr_data":%s,"driver_name":"Jean"}`, asString), http.StatusOK},
	}
	for _, tt := range tests {
		w := e.do(t, driverActor, http.MethodPost, "/api/qr/scan", tt.body)
		if w.Code != tt.wantStatus {
			t.Fatalf("%s: status = %d, want %d (body %s)", tt.name, w.Code, tt.wantStatus, w.Body.String())
		}
	}

	got, err := e.deliveries.Get(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DriverID != driverActor.ID || got.DriverName != "Jean" {
		t.Errorf("scan did not bind the driver: %+v", got)
	}
}

func TestRoutesAndDashboard(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, driverActor, http.MethodGet, "/api/routes", "")
	if routes := decode[[]models.Route](t, w); len(routes) != len(route.DemoRoutes()) {
		t.Errorf("routes = %d, want %d", len(routes), len(route.DemoRoutes()))
	}

	w = e.do(t, driverActor, http.MethodGet, "/api/routes/route-chateau", "")
	if r := decode[models.Route](t, w); r.ID != "route-chateau" || len(r.Waypoints) == 0 {
		t.Errorf("route = %+v", r)
	}
	if w := e.do(t, driverActor, http.MethodGet, "/api/routes/unknown", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route: status %d, want 404", w.Code)
	}

	e.createDelivery(t, `{"route_id":"route-chateau"}`)
	w = e.do(t, adminActor, http.MethodGet, "/api/stats/dashboard", "")
	stats := decode[models.DashboardStats](t, w)
	if stats.TotalDeliveries != 1 || stats.PendingDeliveries != 1 || stats.ActiveDrivers != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("op: %w", types.ErrDeliveryNotFound), http.StatusNotFound},
		{types.ErrRouteMismatch, http.StatusUnprocessableEntity},
		{types.ErrAdminOnly, http.StatusForbidden},
		{types.ErrInvalidTransition, http.StatusConflict},
		{types.ErrAlertAlreadyResolved, http.StatusConflict},
		{fmt.Errorf("op: %w", types.ErrPersistence), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	ok := HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }}

	tests := []struct {
		name       string
		checks     []HealthCheck
		wantCode   int
		wantStatus string
	}{
		{"no backends", nil, http.StatusOK, "available"},
		{"all reachable", []HealthCheck{ok}, http.StatusOK, "available"},
		{"one down", []HealthCheck{ok, down}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealth("sitetrack", logger.Discard(), tt.checks...)
			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body struct {
				Status     string            `json:"status"`
				Components map[string]string `json:"components"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if len(body.Components) != len(tt.checks) {
				t.Errorf("components = %v", body.Components)
			}
			if tt.name == "one down" && body.Components["redis"] != "unavailable" {
				t.Errorf("redis = %q", body.Components["redis"])
			}
		})
	}
}
