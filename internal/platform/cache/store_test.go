package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTLAndReloads(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Date(2026, 9, 6, 17, 0, 0, 0, time.UTC))
	store := NewStoreWithOptions(Options{TTL: 600 * time.Second, Clock: clk})

	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		return calls.Add(1), nil
	}

	first, _ := store.GetOrLoad(context.Background(), "standings:nfl:12345", loader)
	clk.Add(599 * time.Second)
	second, _ := store.GetOrLoad(context.Background(), "standings:nfl:12345", loader)
	if first != second {
		t.Fatalf("expected identical value inside ttl, got %v and %v", first, second)
	}

	clk.Add(time.Second)
	if _, ok := store.Get(context.Background(), "standings:nfl:12345"); ok {
		t.Fatalf("entry should be absent once ttl elapsed")
	}
	third, _ := store.GetOrLoad(context.Background(), "standings:nfl:12345", loader)
	if third.(int32) != 2 {
		t.Fatalf("expected reload after expiry, got %v", third)
	}
	if store.Len() != 1 {
		t.Fatalf("expired entry should be overwritten in place, len=%d", store.Len())
	}
}

func TestStore_SetEvictsExpiredThenOldestAtCapacity(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	clk.Set(time.Date(2026, 9, 6, 17, 0, 0, 0, time.UTC))
	store := NewStoreWithOptions(Options{TTL: time.Minute, Clock: clk, MaxEntries: 3})
	ctx := context.Background()

	store.Set(ctx, "player:a", 1)
	clk.Add(30 * time.Second)
	store.Set(ctx, "player:b", 2)
	clk.Add(5 * time.Second)
	store.Set(ctx, "player:c", 3)

	clk.Add(40 * time.Second)
	store.Set(ctx, "player:d", 4)
	if store.Len() != 3 {
		t.Fatalf("expected expired entry to make room, len=%d", store.Len())
	}

	store.Set(ctx, "player:e", 5)
	if store.Len() != 3 {
		t.Fatalf("store grew past its cap, len=%d", store.Len())
	}
	if _, ok := store.Get(ctx, "player:b"); ok {
		t.Fatalf("entry closest to expiry should have been evicted")
	}
	for _, key := range []string{"player:d", "player:e"} {
		if _, ok := store.Get(ctx, key); !ok {
			t.Fatalf("expected %s to survive eviction", key)
		}
	}

	store.Set(ctx, "player:e", 6)
	if store.Len() != 3 {
		t.Fatalf("overwriting a key must not evict, len=%d", store.Len())
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("yahoo unavailable")
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "roster:1", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	value, err := store.GetOrLoad(context.Background(), "roster:1", loader)
	if err != nil || value != "ok" {
		t.Fatalf("expected retry to succeed, value=%v err=%v", value, err)
	}
}

func TestDefaultKey_NormalizesArguments(t *testing.T) {
	t.Parallel()

	a := DefaultKey("player_details", "nfl", "12345", "Josh Allen ")
	b := DefaultKey("player_details", "NFL", 12345, "josh allen")
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if DefaultKey("roster", "nfl", "1", "2") == DefaultKey("roster", "nfl", "1", "3") {
		t.Fatalf("different arguments must not collide")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
