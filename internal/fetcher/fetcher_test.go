package fetcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/leaddesk/internal/cache"
)

type leadQuery struct {
	Page    int               `json:"page"`
	Filters map[string]string `json:"filters,omitempty"`
}

type spy struct {
	calls atomic.Int32
	gate  chan struct{}
	fn    func(q leadQuery) ([]string, error)
}

func (s *spy) fetch(ctx context.Context, q leadQuery) ([]string, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.fn != nil {
		return s.fn(q)
	}
	return []string{"lead-page", string(rune('0' + q.Page))}, nil
}

func TestFetch_ConcurrentIdenticalParamsIssueOneCall(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := &spy{gate: make(chan struct{})}
		f := New(s.fetch)
		q := leadQuery{Page: 1}

		var wg sync.WaitGroup
		results := make([][]string, 2)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got, err := f.Fetch(context.Background(), q)
				assert.NoError(t, err)
				results[i] = got
			}(i)
		}

		synctest.Wait()
		assert.Equal(t, int32(1), s.calls.Load())
		assert.True(t, f.Snapshot().IsLoading)

		close(s.gate)
		wg.Wait()

		assert.Equal(t, int32(1), s.calls.Load())
		assert.Equal(t, results[0], results[1])
		assert.False(t, f.Snapshot().IsLoading)
	})
}

func TestFetch_DifferentParamsRunConcurrently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := &spy{gate: make(chan struct{})}
		f := New(s.fetch)

		var wg sync.WaitGroup
		for page := 1; page <= 2; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				_, err := f.Fetch(context.Background(), leadQuery{Page: page})
				assert.NoError(t, err)
			}(page)
		}

		synctest.Wait()
		assert.Equal(t, int32(2), s.calls.Load())
		close(s.gate)
		wg.Wait()
	})
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := &spy{}
	f := New(s.fetch, WithCache(cache.New[[]string](cache.WithTTL(2*time.Minute), cache.WithClock(clock))))

	q := leadQuery{Page: 1, Filters: map[string]string{"stage": "Init - General Enquiry"}}
	first, err := f.Fetch(context.Background(), q)
	require.NoError(t, err)

	now = now.Add(10 * time.Second)
	second, err := f.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), s.calls.Load(), "second call within TTL should be served from cache")

	_, err = f.Fetch(context.Background(), q, ForceRefresh())
	require.NoError(t, err)
	assert.Equal(t, int32(2), s.calls.Load(), "forced refresh must reach the fetch function")
}

func TestFetch_ExpiredCacheRefetches(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s := &spy{}
	f := New(s.fetch, WithCache(cache.New[[]string](cache.WithTTL(time.Minute), cache.WithClock(func() time.Time { return now }))))

	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	now = now.Add(2 * time.Minute)
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	assert.Equal(t, int32(2), s.calls.Load())
}

func TestFetch_ErrorIsReturnedAndRecorded(t *testing.T) {
	boom := errors.New("boom")
	s := &spy{fn: func(leadQuery) ([]string, error) { return nil, boom }}
	f := New(s.fetch)

	_, err := f.Fetch(context.Background(), leadQuery{Page: 1})
	require.ErrorIs(t, err, boom)

	snap := f.Snapshot()
	assert.ErrorIs(t, snap.Err, boom)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, 0, f.Cache().Len(), "failures are not cached")

	// No automatic retry: the next call is a fresh attempt.
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	assert.Equal(t, int32(2), s.calls.Load())
}

func TestFetch_ErrorKeepsPreviousData(t *testing.T) {
	fail := false
	s := &spy{fn: func(leadQuery) ([]string, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return []string{"a"}, nil
	}}
	f := New(s.fetch)

	_, err := f.Fetch(context.Background(), leadQuery{Page: 1})
	require.NoError(t, err)
	fail = true
	_, err = f.Fetch(context.Background(), leadQuery{Page: 1}, ForceRefresh())
	require.Error(t, err)

	snap := f.Snapshot()
	assert.Equal(t, []string{"a"}, snap.Data)
	assert.Error(t, snap.Err)
}

func TestFetch_EqualDataSkipsStateUpdate(t *testing.T) {
	s := &spy{fn: func(leadQuery) ([]string, error) { return []string{"same"}, nil }}
	var changes atomic.Int32
	f := New(s.fetch, WithOnChange(func(st State[[]string]) {
		if !st.IsLoading && !st.IsBackgroundLoading {
			changes.Add(1)
		}
	}))

	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	firstSeq := f.Snapshot().Seq

	_, _ = f.Fetch(context.Background(), leadQuery{Page: 2})
	snap := f.Snapshot()
	assert.Equal(t, firstSeq, snap.Seq, "equal data should not replace held state")
	_, cached := f.Cache().Peek(leadQuery{Page: 2})
	assert.False(t, cached, "equal data is not written through")
}

func TestFetch_ForceRefreshAlwaysReplacesState(t *testing.T) {
	s := &spy{fn: func(leadQuery) ([]string, error) { return []string{"same"}, nil }}
	f := New(s.fetch)

	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	first := f.Snapshot().Seq
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1}, ForceRefresh())
	assert.Greater(t, f.Snapshot().Seq, first)
}

func TestFetch_CompareWithOverridesDefault(t *testing.T) {
	s := &spy{fn: func(leadQuery) ([]string, error) { return []string{"same"}, nil }}
	f := New(s.fetch)

	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	first := f.Snapshot().Seq
	never := func(a, b any) bool { return false }
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 2}, CompareWith(never))
	assert.Greater(t, f.Snapshot().Seq, first)
}

func TestFetch_BackgroundUsesSecondaryFlag(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := &spy{gate: make(chan struct{})}
		f := New(s.fetch)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = f.Fetch(context.Background(), leadQuery{Page: 1}, Background())
		}()

		synctest.Wait()
		snap := f.Snapshot()
		assert.True(t, snap.IsBackgroundLoading)
		assert.False(t, snap.IsLoading)

		close(s.gate)
		<-done
		assert.False(t, f.Snapshot().IsBackgroundLoading)
	})
}

func TestFetch_SupersededResultDoesNotOverwriteState(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		slow := make(chan struct{})
		f := New(func(ctx context.Context, q leadQuery) ([]string, error) {
			if q.Page == 1 {
				<-slow
				return []string{"page-1"}, nil
			}
			return []string{"page-2"}, nil
		})

		var page1 []string
		done := make(chan struct{})
		go func() {
			defer close(done)
			page1, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
		}()
		synctest.Wait()

		_, err := f.Fetch(context.Background(), leadQuery{Page: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"page-2"}, f.Snapshot().Data)

		close(slow)
		<-done
		assert.Equal(t, []string{"page-1"}, page1, "caller still receives its own result")
		assert.Equal(t, []string{"page-2"}, f.Snapshot().Data, "older request must not win")

		// The stale result is still cached under its own params.
		_, ok := f.Cache().Peek(leadQuery{Page: 1})
		assert.True(t, ok)
	})
}

func TestFetch_CallerCancellationDoesNotCancelSharedCall(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := &spy{gate: make(chan struct{})}
		f := New(s.fetch)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := f.Fetch(ctx, leadQuery{Page: 1})
			errCh <- err
		}()
		synctest.Wait()

		cancel()
		assert.ErrorIs(t, <-errCh, context.Canceled)

		close(s.gate)
		synctest.Wait()
		_, ok := f.Cache().Peek(leadQuery{Page: 1})
		assert.True(t, ok, "the detached call completes and caches")
	})
}

func TestClearCache_ForcesNextFetch(t *testing.T) {
	s := &spy{}
	f := New(s.fetch)
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	f.ClearCache()
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	assert.Equal(t, int32(2), s.calls.Load())
	assert.True(t, f.Snapshot().HasData, "clearing the cache keeps held data")
}

func TestFetch_MetricsCountRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := &spy{}
	f := New(s.fetch, WithMetrics[[]string](reg, "leads"))
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
	_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})

	families, err := reg.Gather()
	require.NoError(t, err)
	var requests float64
	for _, mf := range families {
		if mf.GetName() == "leaddesk_fetcher_requests_total" {
			requests = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, requests)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]int{1, 2}, []int{1, 2}))
	assert.False(t, Equal([]int{1, 2}, []int{2, 1}))
	assert.True(t, Equal(map[string]int{"a": 1, "b": 2}, map[string]int{"b": 2, "a": 1}))
	ch := make(chan int)
	assert.True(t, Equal(ch, ch), "falls back to DeepEqual for unmarshalable values")
}

func TestInvalidate_SupersedesInFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := &spy{gate: make(chan struct{})}
		f := New(s.fetch)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = f.Fetch(context.Background(), leadQuery{Page: 1})
		}()
		synctest.Wait()

		f.Invalidate()
		close(s.gate)
		<-done

		assert.False(t, f.Snapshot().HasData)
	})
}
