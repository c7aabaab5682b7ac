package server

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/routesim/gtfsrt"
	"github.com/theoremus-urban-solutions/routesim/route"
	"github.com/theoremus-urban-solutions/routesim/sim"
)

var t0 = time.Date(2025, 10, 3, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *sim.Engine) {
	t.Helper()
	reg, err := route.NewRegistry(
		route.New("danang-hue", []route.Waypoint{
			{Lat: 16.0544, Lng: 108.2022},
			{Lat: 16.2, Lng: 108.12},
			{Lat: 16.4637, Lng: 107.5909},
		}, route.SpeedProfile{Base: 1}, []string{"Da Nang", "Hai Van Pass", "Hue"}),
		route.New("hoian-loop", []route.Waypoint{
			{Lat: 15.8801, Lng: 108.338},
			{Lat: 15.8771, Lng: 108.3265},
		}, route.SpeedProfile{Base: 1}, nil),
	)
	require.NoError(t, err)
	engine := sim.NewEngine(reg, sim.EngineOptions{Seed: 1, Speed: sim.DefaultSpeedConfig()})
	return New(engine, reg, Options{AgencyID: "VNTOURS"}), engine
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.Routes)
	assert.False(t, health.Paused)
}

func TestRoutes(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var routes []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))
	require.Len(t, routes, 2)
	assert.Equal(t, "danang-hue", routes[0]["id"])
	assert.Equal(t, float64(2), routes[0]["segments"])

	rec = do(t, h, http.MethodGet, "/api/routes/hoian-loop", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/routes/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "getRoute", decodeError(t, rec).Error.Call)
}

func TestStartVehicle(t *testing.T) {
	s, engine := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/vehicles",
		`{"vehicleId":"bus-1","routeId":"danang-hue","mode":"oneshot","driverName":"Minh","passengers":5,"capacity":29}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "bus-1", snap["vehicleId"])
	assert.Equal(t, "moving", snap["status"])
	assert.Equal(t, "Da Nang", snap["label"])

	v, ok := engine.Vehicle("bus-1")
	require.True(t, ok)
	assert.Equal(t, sim.OneShot, v.Mode)
	assert.Equal(t, 29, v.Metadata.Capacity)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"duplicate", `{"vehicleId":"bus-1","routeId":"danang-hue"}`, http.StatusConflict},
		{"unknown route", `{"vehicleId":"bus-2","routeId":"saigon"}`, http.StatusNotFound},
		{"missing route", `{"vehicleId":"bus-2"}`, http.StatusBadRequest},
		{"bad mode", `{"vehicleId":"bus-2","routeId":"danang-hue","mode":"pingpong"}`, http.StatusBadRequest},
		{"hyphenated mode", `{"vehicleId":"bus-2","routeId":"danang-hue","mode":"one-shot"}`, http.StatusBadRequest},
		{"negative passengers", `{"vehicleId":"bus-2","routeId":"danang-hue","passengers":-1}`, http.StatusBadRequest},
		{"unknown field", `{"vehicleId":"bus-2","routeId":"danang-hue","colour":"red"}`, http.StatusBadRequest},
		{"not json", `bus-2`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/vehicles", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "startVehicle", decodeError(t, rec).Error.Call)
		})
	}
	_, created := engine.Vehicle("bus-2")
	assert.False(t, created)
	assert.Equal(t, 1, engine.Stats().Active)
}

func TestStartVehicle_GeneratesID(t *testing.T) {
	s, engine := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/vehicles",
		`{"routeId":"hoian-loop","departAt":"2030-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	id, _ := snap["vehicleId"].(string)
	assert.Len(t, id, 36)
	assert.Equal(t, "scheduled", snap["status"])

	v, ok := engine.Vehicle(id)
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), v.DepartAt)
}

func TestCancelVehicle(t *testing.T) {
	s, engine := newTestServer(t)
	h := s.Handler()
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "bus-1", RouteID: "danang-hue"}))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/vehicles/bus-1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/vehicles/bus-1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/vehicles/bus-1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/vehicles/ghost", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/vehicles/bus-1", "").Code)

	rec := do(t, h, http.MethodGet, "/api/vehicles", "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPauseResume(t *testing.T) {
	s, engine := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/pause", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, engine.Paused())
	assert.Contains(t, rec.Body.String(), `"paused":true`)

	rec = do(t, h, http.MethodPost, "/api/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, engine.Paused())

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/pause", "").Code)
}

func TestVehicleMonitoring(t *testing.T) {
	s, engine := newTestServer(t)
	h := s.Handler()
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "bus-1", RouteID: "danang-hue"}))
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "van-2", RouteID: "hoian-loop"}))
	engine.Tick(t0)

	rec := do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `"VehicleRef":"VNTOURS:VehicleRef:bus-1"`)
	assert.Contains(t, body, `"VehicleRef":"VNTOURS:VehicleRef:van-2"`)
	assert.Contains(t, body, `"ProducerRef":"VNTOURS"`)

	rec = do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json?LineRef=hoian", "")
	assert.NotContains(t, rec.Body.String(), "bus-1")
	assert.Contains(t, rec.Body.String(), "van-2")

	rec = do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json?MaximumVehicles=1", "")
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `"VehicleRef"`))

	rec = do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json?MaximumVehicles=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ErrorCondition")

	rec = do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.xml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<Siri"))
	assert.Contains(t, rec.Body.String(), "<VehicleRef>VNTOURS:VehicleRef:bus-1</VehicleRef>")
}

func TestVehicleMonitoring_EncodeFailure(t *testing.T) {
	reg, err := route.NewRegistry(route.New("broken", []route.Waypoint{
		{Lat: math.NaN(), Lng: 108.2},
		{Lat: 16.2, Lng: 108.12},
	}, route.SpeedProfile{Base: 1}, nil))
	require.NoError(t, err)
	engine := sim.NewEngine(reg, sim.EngineOptions{Seed: 1, Speed: sim.DefaultSpeedConfig()})
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "bus-1", RouteID: "broken"}))
	s := New(engine, reg, Options{AgencyID: "VNTOURS"})

	rec := do(t, s.Handler(), http.MethodGet, "/api/siri/vehicle-monitoring.json", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "vehicleMonitoring", body.Error.Call)
	assert.Zero(t, s.cache.len(), "failed builds are not cached")
}

func TestVehicleMonitoring_CachedPerRevision(t *testing.T) {
	s, engine := newTestServer(t)
	h := s.Handler()
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "bus-1", RouteID: "danang-hue"}))

	first := do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json", "").Body.String()
	second := do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json", "").Body.String()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.cache.len())

	do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.xml", "")
	assert.Equal(t, 2, s.cache.len())

	engine.CancelVehicle("bus-1")
	after := do(t, h, http.MethodGet, "/api/siri/vehicle-monitoring.json", "").Body.String()
	assert.NotContains(t, after, "bus-1")
	assert.Equal(t, 1, s.cache.len())
}

func TestVehiclePositionsFeed(t *testing.T) {
	s, engine := newTestServer(t)
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "bus-1", RouteID: "danang-hue"}))
	engine.Tick(t0)

	rec := do(t, s.Handler(), http.MethodGet, "/api/gtfsrt/vehicle-positions.pb", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-protobuf", rec.Header().Get("Content-Type"))

	fm, err := gtfsrt.ParseFeed(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fm.GetEntity(), 1)
	assert.Equal(t, "bus-1", fm.GetEntity()[0].GetVehicle().GetVehicle().GetId())
}

func TestWebSocketStream(t *testing.T) {
	s, engine := newTestServer(t)
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "bus-1", RouteID: "danang-hue"}))
	require.NoError(t, engine.StartVehicle(sim.StartRequest{VehicleID: "van-2", RouteID: "hoian-loop"}))

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?vehicle=bus-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]any {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	initial := read()
	assert.Equal(t, "bus-1", initial["vehicleId"])
	assert.Equal(t, float64(0), initial["tick"])

	require.Eventually(t, func() bool { return engine.Publisher().Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	engine.Tick(t0)

	update := read()
	assert.Equal(t, "bus-1", update["vehicleId"])
	assert.Equal(t, float64(1), update["tick"])

	conn.Close()
	require.Eventually(t, func() bool { return engine.Publisher().Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}
