package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citypulse/event-chat-api/chat"
	"github.com/citypulse/event-chat-api/databases"
	"github.com/citypulse/event-chat-api/models"
)

// fakeChatMessageDB captures the queries the store issues
type fakeChatMessageDB struct {
	insertedDoc interface{}
	insertErr   error
	findFilter  interface{}
	findOpts    []*options.FindOptions
	findResult  []models.ChatMessage
}

func (f *fakeChatMessageDB) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	f.findFilter = filter
	f.findOpts = opts
	return f.findResult, nil
}

func (f *fakeChatMessageDB) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	f.insertedDoc = document
	return nil, f.insertErr
}

func (f *fakeChatMessageDB) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return int64(len(f.findResult)), nil
}

func TestMessageStore_AppendWritesRecord(t *testing.T) {
	db := &fakeChatMessageDB{}
	store := chat.NewMessageStore(db)

	id, err := store.Append(context.Background(), 42, 1, "alice", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msg, ok := db.insertedDoc.(models.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, 42, msg.ChatID)
	assert.Equal(t, 1, msg.UserID)
	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, "hi", msg.Message)
	assert.False(t, msg.ID.IsZero())
	assert.Equal(t, msg.ID.Hex(), id)
	assert.NotZero(t, msg.CreatedAt)
}

func TestMessageStore_AppendSurfacesStorageFailure(t *testing.T) {
	db := &fakeChatMessageDB{insertErr: errors.New("storage unavailable")}
	store := chat.NewMessageStore(db)

	id, err := store.Append(context.Background(), 42, 1, "alice", "hi")
	assert.Error(t, err)
	assert.Empty(t, id)
}

func TestMessageStore_RecentQueriesNewestFirst(t *testing.T) {
	db := &fakeChatMessageDB{
		findResult: []models.ChatMessage{
			{ID: primitive.NewObjectID(), Message: "newer"},
			{ID: primitive.NewObjectID(), Message: "older"},
		},
	}
	store := chat.NewMessageStore(db)

	messages, err := store.Recent(context.Background(), 42, 20)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	assert.Equal(t, bson.M{"chatID": 42}, db.findFilter)
	require.Len(t, db.findOpts, 1)
	opts := db.findOpts[0]
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "_id", Value: -1}}, opts.Sort)
}
