package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStore_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := store.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	store.removeExpired()
	store.mu.RLock()
	left := len(store.items)
	store.mu.RUnlock()
	if left != 0 {
		t.Fatalf("expected cleanup to drop expired entries, %d left", left)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	store.Set(ctx, "k", "v", time.Hour)
	store.Delete(ctx, "k")
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close must be safe: %v", err)
	}
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := NewRedisStore(client, "transcription:")
	t.Cleanup(func() { store.Close() })
	return store, mini
}

func TestRedisStore_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	store, mini := newTestRedisStore(t)

	if err := store.Set(ctx, "upload:u1:abc", `{"success":true}`, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mini.Exists("transcription:upload:u1:abc") {
		t.Fatalf("expected prefixed key in redis")
	}

	v, ok, err := store.Get(ctx, "upload:u1:abc")
	if err != nil || !ok || v != `{"success":true}` {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}

	mini.FastForward(2 * time.Minute)
	if _, ok, err := store.Get(ctx, "upload:u1:abc"); ok || err != nil {
		t.Fatalf("expected expired miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisStore_MissAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	if _, ok, err := store.Get(ctx, "absent"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	store.Set(ctx, "k", "v", 0)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}
