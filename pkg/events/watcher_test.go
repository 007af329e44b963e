package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/events"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

// logsNode accepts logsSubscribe and drops every connection after lifetime.
func logsNode(t *testing.T, lifetime time.Duration, connections *atomic.Int32) *httptest.Server {
	t.Helper()
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		connections.Add(1)

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Method != "logsSubscribe" {
			t.Errorf("unexpected method %q", req.Method)
		}
		if err := conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "result": 1, "id": req.ID}); err != nil {
			return
		}

		drop := time.AfterFunc(lifetime, func() { conn.Close() })
		defer drop.Stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWatcherReconnectsAfterHealthyPeriod(t *testing.T) {
	var connections atomic.Int32
	srv := logsNode(t, 600*time.Millisecond, &connections)
	url := "ws://" + strings.TrimPrefix(srv.URL, "http://")

	// The connection outlives the reconnect budget before dropping.
	w := events.NewWatcher(url, pump.ProgramKey, events.WithMaxReconnectTime(300*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context, events.Event) error { return nil })
	}()

	require.Eventually(t, func() bool { return connections.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("watcher stopped early: %v", err)
	default:
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcherGivesUpWhenNodeIsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws://" + strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	w := events.NewWatcher(url, pump.ProgramKey, events.WithMaxReconnectTime(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := w.Run(ctx, func(context.Context, events.Event) error { return nil })
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
