// Package store defines the persistence interfaces and their implementations.
package store

import (
	"context"
	"time"

	"github.com/phuy1125/vin2/internal/domain"
)

// ItineraryStore persists itineraries. Implementations must make Replace a
// single atomic write: a reader sees either the old or the new document.
type ItineraryStore interface {
	Create(ctx context.Context, it *domain.Itinerary) error
	// Get returns an error wrapping domain.ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (*domain.Itinerary, error)
	// ListByOwner returns the owner's itineraries oldest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Itinerary, error)
	// Replace writes it only while the stored UpdatedAt still equals
	// expected. A newer stored version yields domain.ErrConflict.
	Replace(ctx context.Context, it *domain.Itinerary, expected time.Time) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// SessionStore persists conversation state between turns.
type SessionStore interface {
	// Get returns nil, nil when the session does not exist.
	Get(ctx context.Context, sessionID string) (*domain.ConversationState, error)
	Save(ctx context.Context, state domain.ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}
