package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/citypulse/event-chat-api/api"
	"github.com/citypulse/event-chat-api/api/scheduler"
	"github.com/citypulse/event-chat-api/chat"
	"github.com/citypulse/event-chat-api/config"
	"github.com/citypulse/event-chat-api/databases"
	"github.com/citypulse/event-chat-api/models"
)

// App stores the router, db connection and chat registry, so it can be
// reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Registry  *chat.Registry
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	resolver := api.NewIdentityResolver(a.Config.JWTSecret)
	auth := api.Auth{Resolver: resolver}

	messageDB := databases.NewChatMessageDatabase(a.dbHelper)
	store := chat.NewMessageStore(messageDB)

	c := Chat{
		Registry: a.Registry,
		Store:    store,
		UDB:      databases.NewUserDatabase(a.dbHelper),
		Resolver: resolver,
	}

	a.Scheduler = scheduler.New(a.Registry, messageDB)

	r := mux.NewRouter()

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// real-time chat: room id and bearer token ride in the path, matching
	// the platform's websocket clients
	r.HandleFunc("/chat/ws/{chat_id}/{token}", c.ServeChatWS).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Handle("/chat/{chat_id}", auth.Middleware(http.HandlerFunc(c.ChatHistoryHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a
// router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)

	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()
	if err = client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("event-chat-api has connected to the database")

	a.Registry = chat.NewRegistry(chat.AllowAll{})

	// initialize api router
	a.initializeRoutes()

	a.Scheduler.Start()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
