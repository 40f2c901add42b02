package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ActionMessageChat identifies a chat message envelope on the live channel,
// distinguishing it from any future event type sharing the same socket
const ActionMessageChat = "messageChat"

// ChatMessage holds the structure for the chatMessages collection in mongo.
// One document is written per inbound frame; documents are never updated
// or deleted.
type ChatMessage struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	ChatID    int                `json:"-" bson:"chatID"` // event id the room belongs to
	UserID    int                `json:"user_id" bson:"userID"`
	Username  string             `json:"username" bson:"username"`
	Message   string             `json:"message" bson:"message"`
	CreatedAt primitive.DateTime `json:"-" bson:"createdAt"`
}

// MessageEnvelope is the payload delivered over a live connection. It is
// never persisted; IsOwnMessage marks the copy echoed back to the author.
type MessageEnvelope struct {
	Message      string `json:"message"`
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	IsOwnMessage bool   `json:"is_own_message"`
	Action       string `json:"action"`
}
