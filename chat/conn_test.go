package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestWSConnWriteFailsOnNonDrainingPeer(t *testing.T) {
	old := writeWait
	writeWait = 50 * time.Millisecond
	defer func() { writeWait = old }()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- ws
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	conn := NewWSConn(<-serverSide)
	defer conn.Close()

	// the client never reads, so once the transport buffers fill the
	// deadline has to surface as a write error instead of a hang
	payload := strings.Repeat("x", 64*1024)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
	t.Fatal("writes to a non-draining peer never failed")
}
