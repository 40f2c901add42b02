package chat

import (
	"context"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/citypulse/event-chat-api/api"
	"github.com/citypulse/event-chat-api/models"
)

// Session is the per-connection control loop. The caller has already
// authenticated the user, checked room access and registered conn; Run
// processes inbound frames one at a time and guarantees deregistration on
// every exit path.
type Session struct {
	registry *Registry
	store    MessageStore
	conn     Conn
	src      FrameSource
	chatID   int
	userID   int
	username string
}

// NewSession builds a session for a registered connection. conn and src are
// usually the same *WSConn.
func NewSession(registry *Registry, store MessageStore, conn Conn, src FrameSource, chatID, userID int, username string) *Session {
	return &Session{
		registry: registry,
		store:    store,
		conn:     conn,
		src:      src,
		chatID:   chatID,
		userID:   userID,
		username: username,
	}
}

// Run blocks reading frames until the transport disconnects. Frames are
// processed strictly in order; the next read does not start until the
// previous frame has been persisted and routed.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		s.registry.Deregister(s.conn, s.chatID)
		s.conn.Close()
	}()

	for {
		msgType, data, err := s.src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.S().Debugw("chat connection closed unexpectedly",
					"chatID", s.chatID,
					"userID", s.userID,
					"error", err,
				)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.receive(ctx, string(data))
	}
}

// receive persists one frame and fans it out: the record is written first,
// then the author's self-echo, then the broadcast to the rest of the room.
// A persistence failure drops the frame entirely - nothing may be delivered
// that is not durably recorded - and the session keeps running.
func (s *Session) receive(ctx context.Context, text string) {
	ctx, cancel := api.WithQueryTimeout(ctx)
	defer cancel()
	if _, err := s.store.Append(ctx, s.chatID, s.userID, s.username, text); err != nil {
		zap.S().Errorw("failed to persist chat message, dropping frame",
			"chatID", s.chatID,
			"userID", s.userID,
			"error", err,
		)
		return
	}

	envelope := models.MessageEnvelope{
		Message:      text,
		UserID:       s.userID,
		Username:     s.username,
		IsOwnMessage: true,
		Action:       models.ActionMessageChat,
	}
	s.registry.SendTo(s.conn, envelope)

	envelope.IsOwnMessage = false
	s.registry.Broadcast(envelope, s.chatID, s.conn)
}
