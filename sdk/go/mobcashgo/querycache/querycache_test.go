package querycache

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFilters struct {
	page   int
	search string
}

func (f testFilters) Values() url.Values {
	v := url.Values{}
	if f.page > 0 {
		v.Set("page", "1")
	}
	v.Set("search", f.search)
	return v
}

func TestKey_Normalization(t *testing.T) {
	withEmpty := url.Values{"page": {"1"}, "search": {""}}
	without := url.Values{"page": {"1"}}

	assert.Equal(t, NewKey("recharges", without), NewKey("recharges", withEmpty))
	assert.Equal(t, NewKey("recharges", without).ID(), NewKey("recharges", withEmpty).ID())
	assert.Equal(t, "recharges?page=1", NewKey("recharges", withEmpty).String())

	ordered := NewKey("users", url.Values{"search": {"x"}, "page": {"2"}})
	assert.Equal(t, "page=2&search=x", ordered.Params)
	assert.Equal(t, "2", ordered.Values().Get("page"))

	assert.NotEqual(t, NewKey("users", without), NewKey("recharges", without))
	assert.Equal(t, "platforms", KeyFor("platforms", nil).String())
	assert.Len(t, NewKey("users", nil).ID(), 16)
}

func TestStore_LatestGenerationWins(t *testing.T) {
	s := NewStore()
	key := NewKey("recharges", nil)

	first := s.Begin(key)
	second := s.Begin(key)

	assert.True(t, s.Complete(key, second, "new", nil))
	assert.False(t, s.Complete(key, first, "old", nil))

	e, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, e.Status)
	assert.Equal(t, "new", e.Data)
}

func TestStore_InvalidateOnlyFlipsStale(t *testing.T) {
	s := NewStore()
	a := NewKey("platforms", url.Values{"page": {"1"}})
	b := NewKey("platforms", url.Values{"page": {"2"}})
	other := NewKey("users", nil)

	for _, k := range []Key{a, b, other} {
		s.Complete(k, s.Begin(k), k.String(), nil)
	}

	assert.Equal(t, 2, s.Invalidate("platforms"))

	for _, k := range []Key{a, b} {
		e, _ := s.Get(k)
		assert.True(t, e.Stale)
		assert.Equal(t, StatusSuccess, e.Status)
		assert.Equal(t, k.String(), e.Data)
	}
	e, _ := s.Get(other)
	assert.False(t, e.Stale)
	assert.Len(t, s.Keys("platforms"), 2)
}

func TestStore_InvalidateDuringFetchKeepsResultStale(t *testing.T) {
	s := NewStore()
	key := NewKey("recharges", nil)

	gen := s.Begin(key)
	s.Invalidate("recharges")
	require.True(t, s.Complete(key, gen, "pre-write", nil))

	e, _ := s.Get(key)
	assert.Equal(t, StatusSuccess, e.Status)
	assert.Equal(t, "pre-write", e.Data)
	assert.True(t, e.Stale)
	assert.False(t, e.Fresh())

	s.Complete(key, s.Begin(key), "post-write", nil)
	e, _ = s.Get(key)
	assert.False(t, e.Stale)
	assert.Equal(t, "post-write", e.Data)
}

func TestStore_AbandonKeepsDataAndMarksStale(t *testing.T) {
	s := NewStore()
	key := NewKey("users", nil)
	s.Complete(key, s.Begin(key), "page", nil)

	gen := s.Begin(key)
	assert.True(t, s.Abandon(key, gen))

	e, _ := s.Get(key)
	assert.Equal(t, StatusSuccess, e.Status)
	assert.True(t, e.Stale)
	assert.Nil(t, e.Err)
	assert.False(t, s.Complete(key, gen, "late", nil), "a cancelled fetch must not write")

	fresh := NewKey("users", url.Values{"page": {"9"}})
	g := s.Begin(fresh)
	s.Abandon(fresh, g)
	e, _ = s.Get(fresh)
	assert.Equal(t, StatusIdle, e.Status)
	assert.True(t, e.Stale)
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	events, unsubscribe := s.Subscribe()

	key := NewKey("users", nil)
	s.Complete(key, s.Begin(key), 1, nil)
	s.Invalidate("users")

	assert.Equal(t, EventLoading, (<-events).Kind)
	assert.Equal(t, EventUpdated, (<-events).Kind)
	assert.Equal(t, EventInvalidated, (<-events).Kind)

	unsubscribe()
	_, open := <-events
	assert.False(t, open)
}

func TestQuery_FetchUsesCacheUntilInvalidated(t *testing.T) {
	s := NewStore()
	var calls atomic.Int32
	q := New(s, "recharges", func(ctx context.Context, params url.Values) (string, error) {
		calls.Add(1)
		return "page-" + params.Get("search"), nil
	})

	snap := q.Fetch(context.Background(), testFilters{search: "tx"})
	require.NoError(t, snap.Err)
	assert.Equal(t, "page-tx", snap.Data)
	assert.Equal(t, StatusSuccess, snap.Status)

	q.Fetch(context.Background(), testFilters{search: "tx"})
	assert.Equal(t, int32(1), calls.Load())

	s.Invalidate("recharges")
	snap = q.Fetch(context.Background(), testFilters{search: "tx"})
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, snap.Stale)

	q.Refetch(context.Background(), testFilters{search: "tx"})
	assert.Equal(t, int32(3), calls.Load())
}

func TestQuery_FetchError(t *testing.T) {
	boom := errors.New("boom")
	q := New(NewStore(), "users", func(ctx context.Context, params url.Values) (int, error) {
		return 0, boom
	})

	snap := q.Fetch(context.Background(), nil)
	assert.Equal(t, StatusError, snap.Status)
	assert.ErrorIs(t, snap.Err, boom)
	assert.False(t, snap.HasData)
}

func TestQuery_UseLastKeyWins(t *testing.T) {
	s := NewStore()
	release := map[string]chan struct{}{
		"a": make(chan struct{}),
		"b": make(chan struct{}),
	}
	var returned sync.WaitGroup
	returned.Add(2)

	// the fetcher ignores cancellation to simulate a response arriving late
	q := New(s, "recharges", func(ctx context.Context, params url.Values) (string, error) {
		defer returned.Done()
		term := params.Get("search")
		<-release[term]
		return "data-" + term, nil
	})

	ctx := context.Background()
	snapA := q.Use(ctx, testFilters{search: "a"})
	assert.Equal(t, StatusLoading, snapA.Status)

	snapB := q.Use(ctx, testFilters{search: "b"})
	assert.Equal(t, StatusLoading, snapB.Status)

	close(release["b"])
	require.Eventually(t, func() bool {
		return q.Peek(snapB.Key).Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)

	close(release["a"])
	returned.Wait()
	time.Sleep(20 * time.Millisecond)

	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, snapB.Key, current)
	assert.Equal(t, "data-b", q.Peek(current).Data)

	a := q.Peek(snapA.Key)
	assert.False(t, a.HasData, "the abandoned request must not fill its entry")
	assert.True(t, a.Stale)
	assert.Equal(t, StatusIdle, a.Status)
}

func TestQuery_UseRefetchesAfterInvalidate(t *testing.T) {
	s := NewStore()
	var calls atomic.Int32
	q := New(s, "platforms", func(ctx context.Context, params url.Values) (int32, error) {
		return calls.Add(1), nil
	})

	ctx := context.Background()
	f := testFilters{page: 1}
	q.Use(ctx, f)
	require.Eventually(t, func() bool { return q.Use(ctx, f).Status == StatusSuccess }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), q.Use(ctx, f).Data)
	assert.Equal(t, int32(1), calls.Load())

	s.Invalidate("platforms")
	snap := q.Use(ctx, f)
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Equal(t, int32(1), snap.Data, "previous data stays visible while refetching")

	require.Eventually(t, func() bool { return q.Use(ctx, f).Data == int32(2) }, time.Second, 5*time.Millisecond)
	assert.False(t, q.Use(ctx, f).Stale)
}

func TestQuery_WriteDuringFetchForcesRefetch(t *testing.T) {
	s := NewStore()
	release := make(chan struct{})
	var calls atomic.Int32
	q := New(s, "recharges", func(ctx context.Context, params url.Values) (string, error) {
		if calls.Add(1) == 1 {
			<-release
			return "pre-write", nil
		}
		return "post-write", nil
	})

	ctx := context.Background()
	f := testFilters{page: 1}
	assert.Equal(t, StatusLoading, q.Use(ctx, f).Status)

	s.Invalidate("recharges")
	close(release)
	require.Eventually(t, func() bool {
		return q.Peek(KeyFor("recharges", f)).Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.True(t, q.Peek(KeyFor("recharges", f)).Stale)

	require.Eventually(t, func() bool {
		snap := q.Use(ctx, f)
		return snap.Data == "post-write" && !snap.Stale
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStore_WithGoStartsFetches(t *testing.T) {
	var (
		mu    sync.Mutex
		names []string
	)
	s := NewStore(WithGo(func(name string, fn func()) {
		mu.Lock()
		names = append(names, name)
		mu.Unlock()
		go fn()
	}))
	q := New(s, "users", func(ctx context.Context, params url.Values) (string, error) {
		return "ok", nil
	})

	snap := q.Use(context.Background(), testFilters{search: "bob"})
	require.Eventually(t, func() bool { return q.Peek(snap.Key).Status == StatusSuccess }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"fetch " + snap.Key.String()}, names)
}

func TestQuery_CancelledContextLeavesEntryStale(t *testing.T) {
	s := NewStore()
	started := make(chan struct{})
	q := New(s, "users", func(ctx context.Context, params url.Values) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	snap := q.Use(ctx, nil)
	<-started
	cancel()

	require.Eventually(t, func() bool {
		e := q.Peek(snap.Key)
		return e.Status == StatusIdle && e.Stale
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, q.Peek(snap.Key).Err)
}

func TestQuery_PanicBecomesError(t *testing.T) {
	var hooked atomic.Bool
	s := NewStore(WithPanicHook(func(context string, recovered any, stack []byte) {
		hooked.Store(true)
	}))
	q := New(s, "users", func(ctx context.Context, params url.Values) (string, error) {
		panic("nil map")
	})

	snap := q.Fetch(context.Background(), nil)
	assert.Equal(t, StatusError, snap.Status)
	assert.ErrorContains(t, snap.Err, "panicked")
	assert.True(t, hooked.Load())
}
