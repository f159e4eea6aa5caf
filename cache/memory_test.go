package cache

import (
	"context"
	"testing"
	"time"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/id"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	actorID := id.NewUserID()
	snap := verdict.NewSnapshot(actorID, []string{"editor"}, []string{"info.view"})

	// Miss
	_, ok := c.Get(ctx, actorID)
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, actorID, snap)
	got, ok := c.Get(ctx, actorID)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.HasRole("editor") {
		t.Fatal("expected cached snapshot to carry editor role")
	}
	if !got.HasPermission("info.view") {
		t.Fatal("expected cached snapshot to carry info.view")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	actorID := id.NewUserID()
	c.Set(ctx, actorID, verdict.NewSnapshot(actorID, nil, nil))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, actorID)
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateActor(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	a1 := id.NewUserID()
	a2 := id.NewUserID()

	c.Set(ctx, a1, verdict.NewSnapshot(a1, []string{"viewer"}, nil))
	c.Set(ctx, a2, verdict.NewSnapshot(a2, []string{"viewer"}, nil))

	c.InvalidateActor(ctx, a1)

	if _, ok := c.Get(ctx, a1); ok {
		t.Fatal("a1 should be invalidated")
	}
	if _, ok := c.Get(ctx, a2); !ok {
		t.Fatal("a2 should still be cached")
	}
}

func TestMemoryCacheInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	a1 := id.NewUserID()
	a2 := id.NewUserID()

	c.Set(ctx, a1, verdict.NewSnapshot(a1, nil, nil))
	c.Set(ctx, a2, verdict.NewSnapshot(a2, nil, nil))

	c.InvalidateAll(ctx)

	if _, ok := c.Get(ctx, a1); ok {
		t.Fatal("a1 should be invalidated")
	}
	if _, ok := c.Get(ctx, a2); ok {
		t.Fatal("a2 should be invalidated")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		actorID := id.NewUserID()
		c.Set(ctx, actorID, verdict.NewSnapshot(actorID, nil, nil))
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
