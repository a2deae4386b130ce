// Package cache is a bounded TTL cache with an explicit janitor lifecycle.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Service is safe for concurrent use. Entries past their TTL are never
// returned; the janitor only reclaims their slots.
type Service struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, entry]
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New builds a stopped Service. Call Start to launch the janitor.
func New(cfg common.CacheConfig, logger *slog.Logger) (*Service, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", cfg.Size)
	}
	l, err := lru.New[string, entry](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Service{
		lru:      l,
		ttl:      cfg.TTL,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the janitor. It runs until Stop is called or ctx ends.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.janitor(ctx)
	})
}

// Stop halts the janitor and waits for it to exit. Safe to call more than once
// and before Start.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	started := true
	s.startOnce.Do(func() { started = false })
	if started {
		<-s.done
	}
}

func (s *Service) janitor(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				s.logger.Debug("cache cleanup", "evicted", n, "remaining", s.Len())
			}
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Get returns the live value stored at key.
func (s *Service) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		s.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value with the default TTL. A zero TTL never expires.
func (s *Service) Set(key string, value any) {
	s.SetWithTTL(key, value, s.ttl)
}

func (s *Service) SetWithTTL(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Add(key, s.newEntry(value, ttl))
}

func (s *Service) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(key)
}

// Window is a fixed-window counter.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Increment bumps the counter at key, opening a new window of length window
// when none is live.
func (s *Service) Increment(key string, window time.Duration) Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lru.Get(key); ok && !s.expired(e) {
		if w, ok := e.value.(Window); ok {
			w.Count++
			s.lru.Add(key, entry{value: w, expiresAt: e.expiresAt})
			return w
		}
	}
	e := s.newEntry(Window{Count: 1}, window)
	w := e.value.(Window)
	w.ResetAt = e.expiresAt
	e.value = w
	s.lru.Add(key, e)
	return w
}

// Cleanup drops expired entries and reports how many were removed.
func (s *Service) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, k := range s.lru.Keys() {
		if e, ok := s.lru.Peek(k); ok && s.expired(e) {
			s.lru.Remove(k)
			removed++
		}
	}
	return removed
}

func (s *Service) Len() int {
	return s.lru.Len()
}

func (s *Service) newEntry(value any, ttl time.Duration) entry {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	return e
}

func (s *Service) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
