package databases

// go generate: mockery --name ChatMessageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citypulse/event-chat-api/models"
)

const chatMessageName = "chatMessages"

// ChatMessageDatabase contains the methods to use with the chat message
// collection
type ChatMessageDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type chatMessageDatabase struct {
	db DatabaseHelper
}

// NewChatMessageDatabase initializes a new instance of the chat message
// database with the provided db connection
func NewChatMessageDatabase(db DatabaseHelper) ChatMessageDatabase {
	return &chatMessageDatabase{
		db: db,
	}
}

func (c *chatMessageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	curr, err := c.db.Collection(chatMessageName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *chatMessageDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(chatMessageName).InsertOne(ctx, document, opts...)
}

func (c *chatMessageDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(chatMessageName).CountDocuments(ctx, filter, opts...)
}
