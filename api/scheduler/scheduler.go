package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/citypulse/event-chat-api/api"
	"github.com/citypulse/event-chat-api/chat"
	"github.com/citypulse/event-chat-api/databases"
)

// Scheduler runs the chat service's periodic background jobs
type Scheduler struct {
	cron     *cron.Cron
	Registry *chat.Registry
	MDB      databases.ChatMessageDatabase
}

// New creates a scheduler reporting on the given registry and message
// collection
func New(registry *chat.Registry, mdb databases.ChatMessageDatabase) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		Registry: registry,
		MDB:      mdb,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("@hourly", s.reportOccupancy)
	if err != nil {
		zap.S().Errorw("failed to register occupancy job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("chat occupancy reporter started")
}

// Stop gracefully stops the scheduler, waiting for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("chat occupancy reporter stopped")
}

// reportOccupancy logs how busy the chat layer is: active rooms, live
// connections and the total number of stored messages
func (s *Scheduler) reportOccupancy() {
	rooms, conns := s.Registry.Stats()

	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	stored, err := s.MDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to count stored chat messages", "error", err)
		stored = -1
	}

	zap.S().Infow("chat occupancy",
		"rooms", rooms,
		"connections", conns,
		"messagesStored", stored,
	)
}
