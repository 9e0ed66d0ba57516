package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// DefaultMaxEntries caps a Store when Options.MaxEntries is not set.
const DefaultMaxEntries = 1024

// Options tune a Store. The zero value means no expiry, real clock, no
// single-flight around loads and DefaultMaxEntries slots.
type Options struct {
	TTL          time.Duration
	Clock        clock.Clock
	SingleFlight bool
	MaxEntries   int
}

// Store is a process-wide memo of loader results. Expiry is checked lazily on
// read. A Set that would exceed the size cap first drops expired entries, then
// the entry closest to expiry.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	clock      clock.Clock
	dedupe     bool
	maxEntries int
	flight     resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return NewStoreWithOptions(Options{TTL: ttl, SingleFlight: true})
}

func NewStoreWithOptions(opts Options) *Store {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]entry),
		ttl:        opts.TTL,
		clock:      clk,
		dedupe:     opts.SingleFlight,
		maxEntries: maxEntries,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(s.clock.Now()) {
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	now := s.clock.Now()
	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = entry{
		value:     value,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

func (s *Store) evictLocked(now time.Time) {
	if s.ttl > 0 {
		for key, e := range s.entries {
			if !e.expiresAt.After(now) {
				delete(s.entries, key)
			}
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}

	var (
		victim string
		oldest time.Time
		found  bool
	)
	for key, e := range s.entries {
		if !found || e.expiresAt.Before(oldest) {
			victim, oldest, found = key, e.expiresAt, true
		}
	}
	delete(s.entries, victim)
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// Len counts slots, including expired ones not yet evicted.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the live value for key or runs loader and stores its
// result. Loader errors are returned and never cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	load := func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	}

	if !s.dedupe {
		return load()
	}

	value, err, _ := s.flight.Do(key, load)
	if err != nil {
		return nil, err
	}

	return value, nil
}
