package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/citypulse/event-chat-api/api"
	"github.com/citypulse/event-chat-api/chat"
	"github.com/citypulse/event-chat-api/config"
	"github.com/citypulse/event-chat-api/databases"
	"github.com/citypulse/event-chat-api/models"
)

// historyLimit caps how many records the history endpoint returns per room
const historyLimit = 20

var errAccessDenied = errors.New("access denied")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Chat exported for testing purposes
type Chat struct {
	Registry *chat.Registry
	Store    chat.MessageStore
	UDB      databases.UserDatabase
	Resolver *api.IdentityResolver
}

// ServeChatWS joins a client to an event room. Identity and access are
// checked before the upgrade, so a rejected client gets a plain HTTP error
// and no socket ever exists. After the upgrade the session loop owns the
// connection until the client disconnects.
func (c Chat) ServeChatWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	chatID, err := strconv.Atoi(vars["chat_id"])
	if err != nil {
		config.ErrorStatus("failed to parse chat id", http.StatusBadRequest, w, err)
		return
	}

	userID, err := c.Resolver.Resolve(vars["token"])
	if err != nil {
		config.ErrorStatus("failed to resolve client token", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	user, err := c.UDB.FindOne(ctx, bson.M{"userID": userID})
	cancel()
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusUnauthorized, w, err)
		return
	}

	if !c.Registry.AccessCheck(chatID, user.ID) {
		config.ErrorStatus("user may not join this chat", http.StatusForbidden, w, errAccessDenied)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade chat connection",
			"chatID", chatID,
			"error", err,
		)
		return
	}

	conn := chat.NewWSConn(ws)
	c.Registry.Register(conn, chatID)
	zap.S().Infow("chat connected",
		"connID", conn.ID(),
		"chatID", chatID,
		"userID", user.ID,
	)

	session := chat.NewSession(c.Registry, c.Store, conn, conn, chatID, user.ID, user.Username)
	session.Run(r.Context())

	zap.S().Infow("chat disconnected",
		"connID", conn.ID(),
		"chatID", chatID,
		"userID", user.ID,
	)
}

// ChatHistoryHandler returns the 20 most recent messages for a room, newest
// first
func (c Chat) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.Atoi(mux.Vars(r)["chat_id"])
	if err != nil {
		config.ErrorStatus("failed to parse chat id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := c.Store.Recent(ctx, chatID, historyLimit)
	if err != nil {
		config.ErrorStatus("failed to get chat messages", http.StatusInternalServerError, w, err)
		return
	}
	// the frontend expects a list even when the room has no history yet
	if len(messages) == 0 {
		messages = []models.ChatMessage{}
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
