// Package querycache keeps the last fetched page of every list the console has
// asked for, keyed by resource and normalized filters.
//
// A Store is created once at start-up and handed to every Query. Entries are
// created on the first read of a key, replaced wholesale when a fetch for that
// key completes, and marked stale (never deleted) when a write on the resource
// succeeds. Only the latest fetch issued for a key may write its entry.
package querycache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is a copy of one cached list. Data keeps the last successful page while
// a refetch is loading or after it failed.
type Entry struct {
	Key       Key
	Status    Status
	Data      any
	HasData   bool
	Err       error
	FetchedAt time.Time
	Stale     bool

	gen uint64
	// last generation issued when the resource was invalidated
	invalidatedGen uint64
}

// Fresh reports whether the entry can be served without a refetch.
func (e Entry) Fresh() bool {
	return e.Status == StatusSuccess && !e.Stale
}

// EventKind tells subscribers what happened to an entry.
type EventKind string

const (
	EventLoading     EventKind = "loading"
	EventUpdated     EventKind = "updated"
	EventFailed      EventKind = "failed"
	EventCancelled   EventKind = "cancelled"
	EventInvalidated EventKind = "invalidated"
)

// Event is sent to subscribers on every entry change.
type Event struct {
	Kind EventKind
	Key  Key
}

// PanicHook is called when a background fetch panics. The panic is also turned
// into an error on the entry.
type PanicHook func(context string, recovered any, stack []byte)

// GoFunc starts fn in a new goroutine. context names the work for logs.
type GoFunc func(context string, fn func())

// Store is the process-wide keyed cache. All methods are safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	entries     map[Key]*Entry
	subscribers map[string]chan Event
	nextGen     uint64
	logger      *slog.Logger
	panicHook   PanicHook
	goFunc      GoFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPanicHook installs a hook for panics inside fetch functions.
func WithPanicHook(h PanicHook) Option {
	return func(s *Store) {
		s.panicHook = h
	}
}

// WithGo replaces the plain go statement used to start background fetches.
func WithGo(g GoFunc) Option {
	return func(s *Store) {
		if g != nil {
			s.goFunc = g
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:     make(map[Key]*Entry),
		subscribers: make(map[string]chan Event),
		logger:      slog.Default(),
		goFunc:      func(_ string, fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the entry for key.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{Key: key, Status: StatusIdle}, false
	}
	return *e, true
}

// Keys lists every cached key of resource.
func (s *Store) Keys(resource string) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []Key
	for k := range s.entries {
		if k.Resource == resource {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Begin moves key to loading and returns the generation the caller must hand
// back to Complete. Any fetch started earlier for the same key loses.
func (s *Store) Begin(key Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(key)
	s.nextGen++
	e.gen = s.nextGen
	e.Status = StatusLoading
	e.Err = nil
	s.publishLocked(Event{Kind: EventLoading, Key: key})
	return e.gen
}

// Complete stores the outcome of the fetch with generation gen. It returns false,
// and changes nothing, when a newer fetch for the key has been issued since.
// A result of a fetch begun before the last Invalidate is stored but stays stale.
func (s *Store) Complete(key Key, gen uint64, data any, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.gen != gen {
		s.logger.Debug("discarding superseded response", "key", key.String(), "key_id", key.ID())
		return false
	}

	if err != nil {
		e.Status = StatusError
		e.Err = err
		s.publishLocked(Event{Kind: EventFailed, Key: key})
		return true
	}

	e.Status = StatusSuccess
	e.Data = data
	e.HasData = true
	e.Err = nil
	// a fetch issued before the last invalidation may carry pre-write data
	e.Stale = gen <= e.invalidatedGen
	e.FetchedAt = time.Now()
	s.publishLocked(Event{Kind: EventUpdated, Key: key})
	return true
}

// Abandon is used when the fetch with generation gen was cancelled. The entry
// goes back to its previous data (or idle) and is marked stale so the next read
// refetches. It is a no-op when a newer fetch already owns the key.
func (s *Store) Abandon(key Key, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.gen != gen || e.Status != StatusLoading {
		return false
	}

	// bump the generation so a late response of the cancelled fetch is dropped
	s.nextGen++
	e.gen = s.nextGen
	if e.HasData {
		e.Status = StatusSuccess
	} else {
		e.Status = StatusIdle
	}
	e.Stale = true
	s.publishLocked(Event{Kind: EventCancelled, Key: key})
	return true
}

// Invalidate marks every entry of resource stale and returns how many were
// touched. Data, status and error are left as they are. Fetches still in flight
// may complete, but their result stays stale.
func (s *Store) Invalidate(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if k.Resource != resource {
			continue
		}
		e.Stale = true
		e.invalidatedGen = s.nextGen
		n++
		s.publishLocked(Event{Kind: EventInvalidated, Key: k})
	}
	s.logger.Debug("cache invalidated", "resource", resource, "entries", n)
	return n
}

// Subscribe registers for entry change events. Slow subscribers miss events
// instead of blocking the store. Call the returned function to unsubscribe.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, 64)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			close(sub)
			delete(s.subscribers, id)
		}
	}
}

func (s *Store) entryLocked(key Key) *Entry {
	e, ok := s.entries[key]
	if !ok {
		e = &Entry{Key: key, Status: StatusIdle}
		s.entries[key] = e
	}
	return e
}

func (s *Store) publishLocked(ev Event) {
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Store) reportPanic(context string, recovered any, stack []byte) {
	s.logger.Error("fetch panicked", "context", context, "error", recovered)
	if s.panicHook != nil {
		s.panicHook(context, recovered, stack)
	}
}
