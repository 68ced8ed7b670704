package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cgtminer/internal/engine"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration races the broadcast; retry until the frame lands.
	snap := engine.Snapshot{CGT: 42, Timestamp: time.Now()}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	go func() {
		for i := 0; i < 50; i++ {
			hub.BroadcastSnapshot(snap)
			time.Sleep(20 * time.Millisecond)
		}
	}()

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string          `json:"type"`
		Payload engine.Snapshot `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "snapshot", msg.Type)
	assert.Equal(t, float64(42), msg.Payload.CGT)
}
