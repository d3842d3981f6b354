package telemetry

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sailsim/internal/control"
	"github.com/san-kum/sailsim/internal/sailing"
)

func startServer(t *testing.T) (*Hub, *control.Manual, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	manual := control.NewManual()
	ts := httptest.NewServer(NewServer(hub, manual, nil).Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return hub, manual, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, _, ts := startServer(t)
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	w := sailing.NewWorld(sailing.Wind{Speed: 10}, sailing.NewDinghy(), sailing.DefaultParams())
	snap := w.Tick(1.0/30, sailing.Input{})
	require.NoError(t, hub.Broadcast(snap))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got sailing.Snapshot
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 1, got.Step)
	assert.InDelta(t, snap.Time, got.Time, 1e-12)
	assert.Equal(t, snap.Wind, got.Wind)
	require.Len(t, got.Sails, 1)
	assert.InDelta(t, snap.Sail().SheetLength, got.Sail().SheetLength, 1e-12)
}

func TestControlMessagesReachManual(t *testing.T) {
	_, manual, ts := startServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"sheet": NaN}`)))
	require.NoError(t, conn.WriteJSON(Control{Sheet: -2, Rudder: 0.1}))
	require.NoError(t, conn.WriteJSON(Control{Rudder: 0.1}))

	var total sailing.Input
	require.Eventually(t, func() bool {
		in := manual.Compute(sailing.Snapshot{}, 0)
		total.SheetDelta += in.SheetDelta
		total.RudderDelta += in.RudderDelta
		return total.SheetDelta == -2 && total.RudderDelta > 0.19
	}, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 0.2, total.RudderDelta, 1e-12)
}

func TestHubObservesSteps(t *testing.T) {
	hub, _, ts := startServer(t)
	hub.Every(2)
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	for step := 1; step <= 4; step++ {
		hub.OnStep(sailing.Snapshot{Step: step}, sailing.Input{}, 0)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var steps []int
	for range 2 {
		var got sailing.Snapshot
		require.NoError(t, conn.ReadJSON(&got))
		steps = append(steps, got.Step)
	}
	assert.Equal(t, []int{2, 4}, steps)
}

func TestSlowClientDropsFrames(t *testing.T) {
	hub := NewHub(nil)
	c := &client{send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = hub.Broadcast(sailing.Snapshot{Step: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
	assert.Len(t, c.send, 1)
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub, _, ts := startServer(t)
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHealthz(t *testing.T) {
	_, _, ts := startServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body["clients"])
}

func TestListenAndServeStops(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := NewServer(NewHub(nil), control.NewManual(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
