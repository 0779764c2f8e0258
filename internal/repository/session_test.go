package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phuy1125/vin2/internal/domain"
)

func exerciseSessionStore(t *testing.T, sessions SessionStore) {
	t.Helper()
	ctx := context.Background()

	got, err := sessions.Get(ctx, "s-test")
	if err != nil || got != nil {
		t.Fatalf("expected missing session, got %+v %v", got, err)
	}

	state := domain.NewConversationState("s-test", "u1")
	state.Messages = []domain.Message{{Role: domain.RoleUser, Content: "a"}}
	if err := sessions.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err = sessions.Get(ctx, "s-test")
	if err != nil || got == nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "u1" || len(got.Messages) != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}

	if err := sessions.Delete(ctx, "s-test"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := sessions.Get(ctx, "s-test"); got != nil {
		t.Fatalf("expected session to be deleted")
	}
}

func TestMemorySessionStore(t *testing.T) {
	exerciseSessionStore(t, NewMemorySessionStore())
}

func TestMemorySessionStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	state := domain.NewConversationState("s1", "u1")
	state.Messages = []domain.Message{{Role: domain.RoleUser, Content: "a"}}
	_ = store.Save(ctx, state)

	state.Messages[0].Content = "changed"
	got, _ := store.Get(ctx, "s1")
	if got.Messages[0].Content != "a" {
		t.Fatalf("stored state aliases caller slice")
	}
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	exerciseSessionStore(t, NewRedisSessionStore(client, time.Minute))
}
