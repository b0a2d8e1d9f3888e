package catalogclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"booking-wizard/internal/common/logger"
	"booking-wizard/internal/domain/catalog"
)

const fetchTimeout = 10 * time.Second

// FetchError reports a failed catalog fetch. Recoverable: the store installs
// the bundled fallback so the wizard stays usable.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog fetch from %s failed: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// envelope is the catalog endpoint's wire format. Any other shape is a
// decode failure.
type envelope struct {
	Status string           `json:"status"`
	Data   *catalog.Catalog `json:"data"`
}

// Store fetches and holds the product catalog. Lookups are safe before the
// first load completes; a fetch failure degrades to the bundled fallback.
type Store struct {
	client *http.Client
	logger logger.Logger

	mu         sync.RWMutex
	endpoint   string
	cat        *catalog.Catalog
	resolved   bool
	fallback   bool
	generation uint64
	onLoad     func()
}

func NewStore(endpoint string, l logger.Logger) *Store {
	return &Store{
		client:   &http.Client{Timeout: fetchTimeout},
		logger:   l,
		endpoint: endpoint,
	}
}

// SetOnLoad registers a hook invoked after every load that resolves, the
// fallback path included. Used to reprice live sessions against the new
// catalog.
func (s *Store) SetOnLoad(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoad = fn
}

// Catalog returns the current catalog, or nil before the first load resolves.
// Catalog lookups are nil-safe, so callers need no guard.
func (s *Store) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Resolved reports whether a load has completed (live or fallback).
func (s *Store) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// UsingFallback reports whether the bundled fallback is serving.
func (s *Store) UsingFallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// Load fetches the catalog from the configured endpoint. On any failure the
// bundled fallback is installed and the fetch error returned for logging;
// the store is always usable afterwards. A load superseded by a newer one
// discards its response instead of overwriting newer state.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	endpoint := s.endpoint
	s.mu.Unlock()

	fetched, err := s.fetch(ctx, endpoint)

	s.mu.Lock()

	if gen != s.generation {
		// A newer load started while this one was in flight
		s.mu.Unlock()
		return nil
	}

	var loadErr error
	if err != nil {
		s.cat = catalog.Fallback()
		s.fallback = true
		s.logger.Warn("catalog fetch failed, serving bundled fallback",
			logger.Field{Key: "endpoint", Value: endpoint},
			logger.Field{Key: "error", Value: err})
		loadErr = &FetchError{Endpoint: endpoint, Err: err}
	} else {
		s.cat = fetched
		s.fallback = false
		s.logger.Info("catalog loaded",
			logger.Field{Key: "endpoint", Value: endpoint},
			logger.Field{Key: "models", Value: len(fetched.Models)})
	}
	s.resolved = true
	hook := s.onLoad
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return loadErr
}

// Reload points the store at a new endpoint and fetches from it. An empty
// endpoint keeps the current one.
func (s *Store) Reload(ctx context.Context, endpoint string) error {
	if endpoint != "" {
		s.mu.Lock()
		s.endpoint = endpoint
		s.mu.Unlock()
	}
	return s.Load(ctx)
}

func (s *Store) fetch(ctx context.Context, endpoint string) (*catalog.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	if env.Status != "success" || env.Data == nil {
		return nil, fmt.Errorf("malformed envelope: status %q", env.Status)
	}

	return env.Data, nil
}
