package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnav/pkg/config"
	"campusnav/pkg/floor"
	"campusnav/pkg/model"
	"campusnav/pkg/nav"
	"campusnav/pkg/router"
	"campusnav/pkg/stairs"
	"campusnav/pkg/tracker"
)

// fakeStore is an in-memory StateStore for handler tests.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) GetState(_ context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeStore) SetState(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) DeleteState(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type testEnv struct {
	ts       *httptest.Server
	session  *nav.Session
	shutdown chan struct{}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()

	entrances := []model.Entrance{
		{RoomNumber: "101", Name: "Physics Lab", Position: orb.Point{18, 18}, Building: "science", Floor: "science-1"},
	}
	buildings := []model.CampusBuilding{{
		Building:    "science",
		Floor:       "science-1",
		FloorNumber: 1,
		Boundary: []orb.Polygon{{orb.Ring{
			{0, 0}, {20, 0}, {20, 20}, {0, 20}, {0, 0},
		}}},
		Constraints: &model.FloorConstraintData{Floor: "science-1", Entrances: entrances},
	}}

	st := newFakeStore()
	provider := config.NewProvider(cfg, st)

	r := router.NewRouter(cfg.Router, nil)
	r.SupplyFloorData(buildings, nil, entrances)

	session := nav.NewSession(nav.Deps{
		Provider: provider,
		Store:    st,
		Tracker:  tracker.New(cfg.Stride, nil),
		Floors:   floor.NewDetector(buildings, nil),
		Stairs:   stairs.New(cfg.Stairs, nil, nil),
		Router:   r,
	})
	t.Cleanup(session.Stop)

	shutdown := make(chan struct{})
	srv := NewServer("localhost:0",
		NewSessionHandler(session),
		NewRouteHandler(session, r),
		NewConfigHandler(provider, st),
		NewStreamHandler(session),
		func() { close(shutdown) },
	)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, session: session, shutdown: shutdown}
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.ts.URL + path)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.get(t, "/api/version")
	body := decode[map[string]string](t, resp)
	assert.NotEmpty(t, body["version"])
}

func TestOriginAndStatus(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/session/origin", OriginRequest{X: 5, Y: 5, Floor: "science-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[nav.Status](t, resp)
	assert.True(t, st.Tracking)
	assert.Equal(t, model.FloorID("science-1"), st.Floor)

	resp = env.post(t, "/api/session/origin", OriginRequest{X: 5, Y: 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestStepFlow(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/api/session/origin", OriginRequest{X: 5, Y: 5, Floor: "science-1"}).Body.Close()

	resp := env.post(t, "/api/session/step", StepRequest{IntervalMs: 500, Heading: 0})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		resp, err := http.Get(env.ts.URL + "/api/session/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var st nav.Status
		if json.NewDecoder(resp.Body).Decode(&st) != nil {
			return false
		}
		return st.StepCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRouteToRoomEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/api/session/origin", OriginRequest{X: 2, Y: 2, Floor: "science-1"}).Body.Close()

	resp := env.post(t, "/api/route", RouteRequest{Building: "science", Room: "101"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[RouteResponse](t, resp)
	require.Len(t, body.Route, 1)
	wps := body.Route[0].Waypoints
	assert.Equal(t, orb.Point{18, 18}, wps[len(wps)-1])
}

func TestRouteErrors(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/api/session/origin", OriginRequest{X: 2, Y: 2, Floor: "science-1"}).Body.Close()

	resp := env.post(t, "/api/route", RouteRequest{Building: "science", Room: "999"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.post(t, "/api/route", RouteRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGridEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/route/grid?floor=science-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[router.GridInfo](t, resp)
	assert.Equal(t, model.FloorID("science-1"), info.Floor)
	assert.Len(t, info.Blocked, info.Width*info.Height)

	resp = env.get(t, "/api/route/grid?floor=nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.get(t, "/api/route/grid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestConfigRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/config")
	cfg := decode[ConfigResponse](t, resp)
	assert.InDelta(t, 175, cfg.HeightCm, 1e-9)

	height := 182.0
	resp = env.post(t, "/api/config", ConfigUpdate{HeightCm: &height})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg = decode[ConfigResponse](t, resp)
	assert.InDelta(t, 182, cfg.HeightCm, 1e-9)

	bad := -10.0
	resp = env.post(t, "/api/config", ConfigUpdate{HeightCm: &bad})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLastOriginEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/session/last-origin")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	env.post(t, "/api/session/origin", OriginRequest{X: 7, Y: 9, Floor: "science-1"}).Body.Close()

	resp = env.get(t, "/api/session/last-origin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	origin := decode[OriginRequest](t, resp)
	assert.Equal(t, 7.0, origin.X)
	assert.Equal(t, model.FloorID("science-1"), origin.Floor)
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/api/session/origin", OriginRequest{X: 5, Y: 5, Floor: "science-1"}).Body.Close()

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler a moment to register its subscription.
	time.Sleep(50 * time.Millisecond)

	env.post(t, "/api/session/step", StepRequest{IntervalMs: 500, Heading: 0}).Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev nav.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, nav.EventStep, ev.Kind)
	require.NotNil(t, ev.Step)
}

func TestShutdownEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/shutdown", struct{}{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	select {
	case <-env.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown callback never invoked")
	}
}
