package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

type stubRepo struct {
	statsCalls  atomic.Int32
	countsCalls atomic.Int32
	total       atomic.Int64
	statsErr    error
	countsErr   error
	release     chan struct{}
}

func (s *stubRepo) Statistics(ctx context.Context, db backend.Database) (Statistics, error) {
	s.statsCalls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return Statistics{}, ctx.Err()
		}
	}
	if s.statsErr != nil {
		return Statistics{}, s.statsErr
	}
	return Statistics{TotalCustomers: s.total.Load(), TotalBranches: 3}, nil
}

func (s *stubRepo) AccountStatusCounts(ctx context.Context, db backend.Database) (StatusCounts, error) {
	s.countsCalls.Add(1)
	if s.countsErr != nil {
		return nil, s.countsErr
	}
	return StatusCounts{"Active": 7, "Closed": 2}, nil
}

type recordingObserver struct {
	mu   sync.Mutex
	hits map[bool]int
}

func (o *recordingObserver) DashboardCacheLookup(_ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hits == nil {
		o.hits = map[bool]int{}
	}
	o.hits[hit]++
}

func newTestService(t *testing.T, repo *stubRepo, observer Observer) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute), nil, observer), mr
}

func TestOverviewIsCachedPerDatabase(t *testing.T) {
	repo := &stubRepo{}
	repo.total.Store(10)
	obs := &recordingObserver{}
	svc, mr := newTestService(t, repo, obs)
	ctx := context.Background()

	ov, err := svc.Overview(ctx, backend.DatabaseSeed)
	require.NoError(t, err)
	assert.Equal(t, int64(10), ov.Statistics.TotalCustomers)
	assert.Equal(t, int64(7), ov.Counts["Active"])

	_, err = svc.Overview(ctx, backend.DatabaseSeed)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.statsCalls.Load())
	assert.Equal(t, int32(1), repo.countsCalls.Load())
	assert.True(t, mr.Exists("dashboard:statistics:SEED:1"))
	assert.True(t, mr.Exists("dashboard:status:SEED:1"))
	assert.Equal(t, 2, obs.hits[false])
	assert.Equal(t, 2, obs.hits[true])

	_, err = svc.Overview(ctx, backend.DatabaseProd)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.statsCalls.Load())
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &stubRepo{}
	repo.total.Store(1)
	svc, mr := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.Overview(ctx, backend.DatabaseTesting)
	require.NoError(t, err)

	repo.total.Store(2)
	require.NoError(t, svc.Invalidate(ctx))
	ov, err := svc.Overview(ctx, backend.DatabaseTesting)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ov.Statistics.TotalCustomers)
	assert.True(t, mr.Exists("dashboard:statistics:TESTING:2"))
}

func TestOverviewFailures(t *testing.T) {
	repo := &stubRepo{countsErr: errors.New("boom")}
	svc, _ := newTestService(t, repo, nil)

	ov, err := svc.Overview(context.Background(), backend.DatabaseSeed)
	require.NoError(t, err, "status counts are optional")
	assert.Error(t, ov.CountsErr)
	assert.Equal(t, int64(3), ov.Statistics.TotalBranches)

	repo = &stubRepo{statsErr: &backend.APIError{Operation: "load statistics", StatusCode: 500}}
	svc, mr := newTestService(t, repo, nil)
	_, err = svc.Overview(context.Background(), backend.DatabaseSeed)
	require.Error(t, err)
	var apiErr *backend.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.False(t, mr.Exists("dashboard:statistics:SEED:1"), "failures are not cached")
}

func TestConcurrentLoadsShareOneCall(t *testing.T) {
	repo := &stubRepo{release: make(chan struct{})}
	svc, _ := newTestService(t, repo, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Overview(context.Background(), backend.DatabaseSeed)
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return repo.statsCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	assert.Equal(t, int32(1), repo.statsCalls.Load())
}

func TestCancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	repo := &stubRepo{release: make(chan struct{})}
	repo.total.Store(8)
	svc, _ := newTestService(t, repo, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Overview(ctxA, backend.DatabaseSeed)
		errA <- err
	}()
	require.Eventually(t, func() bool { return repo.statsCalls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		ov  Overview
		err error
	}
	resB := make(chan result, 1)
	go func() {
		ov, err := svc.Overview(context.Background(), backend.DatabaseSeed)
		resB <- result{ov, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(repo.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, int64(8), b.ov.Statistics.TotalCustomers)
	assert.Equal(t, int32(1), repo.statsCalls.Load())
}

func TestFetchJSONSurvivesRedisErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	mr.SetError("LOADING redis is loading the dataset")

	loads := 0
	var out Statistics
	err := cache.FetchJSON(context.Background(), "dashboard:statistics:SEED:1", &out, func(context.Context) (any, error) {
		loads++
		return Statistics{TotalCustomers: 4}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, int64(4), out.TotalCustomers)

	mr.SetError("")
	assert.False(t, mr.Exists("dashboard:statistics:SEED:1"))
}

func TestWarmOverwritesCache(t *testing.T) {
	repo := &stubRepo{}
	repo.total.Store(5)
	svc, _ := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.Overview(ctx, backend.DatabaseSeed)
	require.NoError(t, err)
	repo.total.Store(6)
	require.NoError(t, svc.Warm(ctx, backend.DatabaseSeed))

	ov, err := svc.Overview(ctx, backend.DatabaseSeed)
	require.NoError(t, err)
	assert.Equal(t, int64(6), ov.Statistics.TotalCustomers)
	assert.Equal(t, int32(2), repo.statsCalls.Load())
}

func TestNilCacheClientLoadsDirectly(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, NewCache(nil, 0), nil, nil)

	_, err := svc.Overview(context.Background(), backend.DatabaseSeed)
	require.NoError(t, err)
	_, err = svc.Overview(context.Background(), backend.DatabaseSeed)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.statsCalls.Load())
	require.NoError(t, svc.Invalidate(context.Background()))
}
