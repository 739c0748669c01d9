package querycache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"
	"sync"
	"time"
)

// FetchFunc loads one page of a resource for the given normalized parameters.
type FetchFunc[T any] func(ctx context.Context, params url.Values) (T, error)

// Snapshot is what a reader sees: the state of the entry for the current key.
type Snapshot[T any] struct {
	Key       Key
	Status    Status
	Data      T
	HasData   bool
	Err       error
	Stale     bool
	FetchedAt time.Time
}

// Loading reports whether a fetch for the key is in flight.
func (s Snapshot[T]) Loading() bool {
	return s.Status == StatusLoading
}

// Query is the read side of one resource. It remembers the key it was last used
// with; switching to another key cancels the fetch still running for the old one.
type Query[T any] struct {
	store    *Store
	resource string
	fetch    FetchFunc[T]

	mu         sync.Mutex
	current    Key
	hasCurrent bool
	inflight   *flight
}

type flight struct {
	key    Key
	gen    uint64
	cancel context.CancelFunc
}

// New creates a Query for resource backed by store.
func New[T any](store *Store, resource string, fetch FetchFunc[T]) *Query[T] {
	return &Query[T]{
		store:    store,
		resource: resource,
		fetch:    fetch,
	}
}

// Resource returns the resource tag entries of this query are filed under.
func (q *Query[T]) Resource() string {
	return q.resource
}

// Store returns the backing store.
func (q *Query[T]) Store() *Store {
	return q.store
}

// Use is the non-blocking read. It returns the current state for filters and,
// if the entry is missing, stale, or idle (or in error right after a key
// change), starts a background fetch. The fetch runs under ctx, so cancelling
// ctx abandons it. Use never blocks on the network and never panics.
func (q *Query[T]) Use(ctx context.Context, filters Filters) Snapshot[T] {
	key := KeyFor(q.resource, filters)

	q.mu.Lock()
	keyChanged := !q.hasCurrent || q.current != key
	if keyChanged {
		q.cancelInflightLocked()
		q.current = key
		q.hasCurrent = true
	}

	entry, exists := q.store.Get(key)
	if needsFetch(entry, exists, keyChanged) {
		q.startLocked(ctx, key)
	}
	q.mu.Unlock()

	return q.Peek(key)
}

// Peek returns the cached state for key without side effects.
func (q *Query[T]) Peek(key Key) Snapshot[T] {
	entry, _ := q.store.Get(key)
	return toSnapshot[T](entry)
}

// Current returns the key of the last Use call.
func (q *Query[T]) Current() (Key, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current, q.hasCurrent
}

// Fetch is the blocking read used by one-shot callers. A fresh entry is served
// from the cache; anything else is loaded before returning.
func (q *Query[T]) Fetch(ctx context.Context, filters Filters) Snapshot[T] {
	key := KeyFor(q.resource, filters)
	if entry, ok := q.store.Get(key); ok && entry.Fresh() {
		return toSnapshot[T](entry)
	}
	return q.load(ctx, key)
}

// Refetch loads filters from the API even when the cached entry is fresh.
func (q *Query[T]) Refetch(ctx context.Context, filters Filters) Snapshot[T] {
	return q.load(ctx, KeyFor(q.resource, filters))
}

func (q *Query[T]) load(ctx context.Context, key Key) Snapshot[T] {
	gen := q.store.Begin(key)
	data, err := q.call(ctx, key)

	if ctx.Err() != nil {
		q.store.Abandon(key, gen)
		snap := q.Peek(key)
		snap.Err = ctx.Err()
		return snap
	}
	q.store.Complete(key, gen, data, err)
	return q.Peek(key)
}

func needsFetch(e Entry, exists, keyChanged bool) bool {
	if !exists {
		return true
	}
	switch e.Status {
	case StatusLoading:
		return false
	case StatusIdle:
		return true
	case StatusError:
		return keyChanged || e.Stale
	default:
		return e.Stale
	}
}

func (q *Query[T]) startLocked(ctx context.Context, key Key) {
	gen := q.store.Begin(key)
	fctx, cancel := context.WithCancel(ctx)
	q.inflight = &flight{key: key, gen: gen, cancel: cancel}
	q.store.goFunc("fetch "+key.String(), func() { q.run(fctx, cancel, key, gen) })
}

func (q *Query[T]) cancelInflightLocked() {
	if q.inflight == nil {
		return
	}
	q.inflight.cancel()
	q.store.Abandon(q.inflight.key, q.inflight.gen)
	q.inflight = nil
}

func (q *Query[T]) run(ctx context.Context, cancel context.CancelFunc, key Key, gen uint64) {
	defer cancel()

	data, err := q.call(ctx, key)
	if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		q.store.Abandon(key, gen)
	} else {
		q.store.Complete(key, gen, data, err)
	}

	q.mu.Lock()
	if q.inflight != nil && q.inflight.gen == gen {
		q.inflight = nil
	}
	q.mu.Unlock()
}

// call runs the fetch function, turning a panic into an error on the entry.
func (q *Query[T]) call(ctx context.Context, key Key) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			q.store.reportPanic("fetch "+key.String(), r, debug.Stack())
			err = fmt.Errorf("fetch %s panicked: %v", key.String(), r)
		}
	}()
	return q.fetch(ctx, key.Values())
}

func toSnapshot[T any](e Entry) Snapshot[T] {
	snap := Snapshot[T]{
		Key:       e.Key,
		Status:    e.Status,
		HasData:   e.HasData,
		Err:       e.Err,
		Stale:     e.Stale,
		FetchedAt: e.FetchedAt,
	}
	if data, ok := e.Data.(T); ok {
		snap.Data = data
	}
	return snap
}
