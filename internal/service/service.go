// Package service implements the dialogue orchestrator: it classifies each
// turn, dispatches to a capability and returns the next conversation state.
package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phuy1125/vin2/internal/adapter/llm"
	"github.com/phuy1125/vin2/internal/domain"
	"github.com/phuy1125/vin2/internal/history"
	store "github.com/phuy1125/vin2/internal/repository"
	"github.com/phuy1125/vin2/internal/tools"
)

// Options tunes the orchestrator.
type Options struct {
	// HistoryTurns is how many user/assistant messages go into a prompt.
	HistoryTurns int
	// MaxMessages caps the stored history of a session. Zero keeps everything.
	MaxMessages int

	ClassifyTimeout time.Duration
	GenerateTimeout time.Duration
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		HistoryTurns:    history.DefaultTurns,
		MaxMessages:     100,
		ClassifyTimeout: 20 * time.Second,
		GenerateTimeout: 60 * time.Second,
	}
}

type handlerFunc func(s *Service, t *turn) string

type Service struct {
	itineraries store.ItineraryStore
	sessions    store.SessionStore
	llm         llm.Generator
	tools       *tools.Toolbox
	logger      *slog.Logger
	opts        Options
	locks       *keyedMutex
	routes      map[domain.Intent]handlerFunc
	now         func() time.Time
	newID       func() string
}

func New(itineraries store.ItineraryStore, sessions store.SessionStore, generator llm.Generator, toolbox *tools.Toolbox, logger *slog.Logger, opts Options) *Service {
	def := DefaultOptions()
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = def.HistoryTurns
	}
	if opts.ClassifyTimeout <= 0 {
		opts.ClassifyTimeout = def.ClassifyTimeout
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = def.GenerateTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		itineraries: itineraries,
		sessions:    sessions,
		llm:         generator,
		tools:       toolbox,
		logger:      logger,
		opts:        opts,
		locks:       newKeyedMutex(),
		routes:      defaultRoutes(),
		now:         time.Now,
		newID:       func() string { return "msg_" + uuid.New().String()[:8] },
	}
}

// defaultRoutes maps every intent to its handler.
func defaultRoutes() map[domain.Intent]handlerFunc {
	return map[domain.Intent]handlerFunc{
		domain.IntentGeneral:           (*Service).handleAnswer,
		domain.IntentGreeting:          (*Service).handleAnswer,
		domain.IntentSearch:            (*Service).handleSearch,
		domain.IntentAccommodation:     (*Service).handleSearch,
		domain.IntentDestination:       (*Service).handleSearch,
		domain.IntentTransportation:    (*Service).handleSearch,
		domain.IntentActivities:        (*Service).handleSearch,
		domain.IntentWeather:           (*Service).handleSearch,
		domain.IntentCreateItinerary:   (*Service).handleCreate,
		domain.IntentGenerateItinerary: (*Service).handleCreate,
		domain.IntentFindItinerary:     (*Service).handleFind,
		domain.IntentUpdateItinerary:   (*Service).handleUpdate,
	}
}
