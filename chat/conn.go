package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may block on a peer that
// has stopped draining; past it the write fails and the registry's normal
// delivery-failure handling takes over
var writeWait = 10 * time.Second

// Conn is the write side of one live client connection, as the registry
// sees it. The registry never owns the connection lifecycle; the session
// that registered it does.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// FrameSource is the read side of a connection, satisfied by
// *websocket.Conn
type FrameSource interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// WSConn wraps a gorilla websocket connection. Broadcasts are written from
// other sessions' goroutines and gorilla permits only one concurrent
// writer, so every write goes through the mutex.
type WSConn struct {
	id string
	mu sync.Mutex
	ws *websocket.Conn
}

// NewWSConn wraps an upgraded websocket connection and assigns it a
// connection id for logging
func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{id: uuid.New().String(), ws: ws}
}

// ID returns the connection id
func (c *WSConn) ID() string { return c.id }

// WriteJSON writes v as a single JSON text frame. The write carries a
// deadline so a non-draining peer cannot hold the room up forever.
func (c *WSConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

// ReadMessage blocks until the next inbound frame or a disconnect
func (c *WSConn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

// Close releases the underlying transport
func (c *WSConn) Close() error {
	return c.ws.Close()
}
