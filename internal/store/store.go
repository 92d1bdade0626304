// Package store implements typed, whole-collection record persistence on top
// of a ports.RecordBackend.
package store

import (
	"fmt"
	"sync"

	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// Collection names, one per entity kind.
const (
	CollectionApplications    = "applications"
	CollectionWarnings        = "warnings"
	CollectionRatings         = "ratings"
	CollectionSuggestions     = "suggestions"
	CollectionReactionLogs    = "reaction_logs"
	CollectionJobApplications = "job_applications"
)

// CorruptPolicy decides what happens when a stored collection does not parse
type CorruptPolicy string

const (
	// CorruptAbort surfaces a StoreCorrupt error to the caller
	CorruptAbort CorruptPolicy = "abort"
	// CorruptReset treats the collection as empty; the next save overwrites it
	CorruptReset CorruptPolicy = "reset"
)

// ParseCorruptPolicy validates a configured policy name
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch CorruptPolicy(s) {
	case CorruptAbort, CorruptReset:
		return CorruptPolicy(s), nil
	case "":
		return CorruptAbort, nil
	default:
		return "", fmt.Errorf("unknown corrupt policy %q", s)
	}
}

// Store hands out collections sharing one backend. It owns one lock per
// collection name so every mutation of a collection is serialized.
type Store struct {
	backend ports.RecordBackend
	policy  CorruptPolicy
	log     logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithCorruptPolicy sets how corrupt collections are handled
func WithCorruptPolicy(policy CorruptPolicy) Option {
	return func(s *Store) { s.policy = policy }
}

// WithLogger sets the logger used for corruption warnings
func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a store over backend
func New(backend ports.RecordBackend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		policy:  CorruptAbort,
		log:     logger.NewNop(),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// lock returns the critical section for a collection name
func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// Open returns the typed collection called name. Collections opened twice
// with the same name share their critical section.
func Open[T any](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

var _ ports.Collection[struct{}] = (*Collection[struct{}])(nil)
