package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/phuy1125/vin2/internal/domain"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewMongoStore(ctx, uri, "vin2_test")
	if err != nil {
		t.Fatalf("NewMongoStore failed: %v", err)
	}
	defer store.Close()

	owner := "u-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	first := testItinerary(uuid.NewString(), owner, now)
	second := testItinerary(uuid.NewString(), owner, now.Add(time.Second))
	for _, it := range []*domain.Itinerary{first, second} {
		if err := store.Create(ctx, it); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID {
		t.Fatalf("unexpected listing: %+v", list)
	}

	updated := first.Clone()
	updated.Duration = "5 ngày"
	updated.UpdatedAt = now.Add(time.Minute)
	if err := store.Replace(ctx, updated, first.UpdatedAt); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	stale := first.Clone()
	stale.Duration = "9 ngày"
	if err := store.Replace(ctx, stale, first.UpdatedAt); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := store.Get(ctx, first.ID)
	if err != nil || got.Duration != "5 ngày" {
		t.Fatalf("unexpected itinerary after replace: %+v %v", got, err)
	}

	for _, it := range list {
		if err := store.Delete(ctx, it.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
	if _, err := store.Get(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
