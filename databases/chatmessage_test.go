package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/citypulse/event-chat-api/databases"
	"github.com/citypulse/event-chat-api/databases/mocks"
	"github.com/citypulse/event-chat-api/models"
)

func TestChatMessageDatabase_Find(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.ChatMessage)
		*arg = []models.ChatMessage{
			{ID: primitive.NewObjectID(), ChatID: 42, UserID: 1, Username: "alice", Message: "hi"},
		}
	})
	cursorHelper.(*mocks.CursorHelper).
		On("Close", mock.Anything).
		Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"chatID": 42}).
		Return(cursorHelper, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "chatMessages").Return(collectionHelper)

	messageDba := databases.NewChatMessageDatabase(dbHelper)

	messages, err := messageDba.Find(context.Background(), bson.M{"error": true})

	assert.Nil(t, messages)
	assert.EqualError(t, err, "mocked-error")

	messages, err = messageDba.Find(context.Background(), bson.M{"chatID": 42})

	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Message)
	assert.Equal(t, 42, messages[0].ChatID)
}

func TestChatMessageDatabase_InsertOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var iorHelper databases.InsertOneResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	iorHelper = &mocks.InsertOneResultHelper{}

	doc := models.ChatMessage{ID: primitive.NewObjectID(), ChatID: 42, UserID: 1, Username: "alice", Message: "hi"}

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), doc).
		Return(iorHelper, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "chatMessages").Return(collectionHelper)

	messageDba := databases.NewChatMessageDatabase(dbHelper)

	res, err := messageDba.InsertOne(context.Background(), doc)

	assert.NoError(t, err)
	assert.Equal(t, iorHelper, res)

	res, err = messageDba.InsertOne(context.Background(), bson.M{"error": true})

	assert.Nil(t, res)
	assert.EqualError(t, err, "mocked-error")
}

func TestChatMessageDatabase_CountDocuments(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{}).
		Return(int64(25), nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "chatMessages").Return(collectionHelper)

	messageDba := databases.NewChatMessageDatabase(dbHelper)

	count, err := messageDba.CountDocuments(context.Background(), bson.M{})

	assert.NoError(t, err)
	assert.Equal(t, int64(25), count)
}
