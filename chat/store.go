package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citypulse/event-chat-api/databases"
	"github.com/citypulse/event-chat-api/models"
)

// MessageStore is the append-only persisted log of chat messages per room
type MessageStore interface {
	// Append writes one message record and returns its id. Records are
	// immutable once written.
	Append(ctx context.Context, chatID, userID int, username, text string) (string, error)
	// Recent returns up to limit records for the room, newest first
	Recent(ctx context.Context, chatID, limit int) ([]models.ChatMessage, error)
}

// MongoMessageStore persists chat messages to the chatMessages collection
type MongoMessageStore struct {
	db databases.ChatMessageDatabase
}

// NewMessageStore creates a message store over the given chat message
// database
func NewMessageStore(db databases.ChatMessageDatabase) *MongoMessageStore {
	return &MongoMessageStore{db: db}
}

// Append inserts one message document. The object id is generated up front
// so the record id can be returned without decoding the insert result.
func (s *MongoMessageStore) Append(ctx context.Context, chatID, userID int, username, text string) (string, error) {
	msg := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		ChatID:    chatID,
		UserID:    userID,
		Username:  username,
		Message:   text,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.db.InsertOne(ctx, msg); err != nil {
		return "", err
	}
	return msg.ID.Hex(), nil
}

// Recent queries the room's messages sorted by _id descending. Object ids
// are monotonic within a room, so this is creation order, newest first.
func (s *MongoMessageStore) Recent(ctx context.Context, chatID, limit int) ([]models.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.db.Find(ctx, bson.M{"chatID": chatID}, opts)
}
