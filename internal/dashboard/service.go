package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

const (
	kindStatistics = "statistics"
	kindStatus     = "status"
)

// Observer records cache effectiveness.
type Observer interface {
	DashboardCacheLookup(kind string, hit bool)
}

// Service loads dashboard data through the cache. Concurrent loads of the
// same key share one backend call.
type Service struct {
	repo     Repository
	cache    *Cache
	logger   *slog.Logger
	observer Observer
	group    singleflight.Group
}

// NewService wires a Repository with a Cache. Either observer or logger may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger, observer Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cache != nil && cache.logger == nil {
		cache.logger = logger
	}
	return &Service{repo: repo, cache: cache, logger: logger, observer: observer}
}

// Overview loads the totals and the status counts concurrently. Only a
// statistics failure is returned; a status count failure is reported in
// Overview.CountsErr.
func (s *Service) Overview(ctx context.Context, db backend.Database) (Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := load(s, gctx, kindStatistics, db, s.repo.Statistics)
		if err != nil {
			return err
		}
		ov.Statistics = stats
		return nil
	})
	g.Go(func() error {
		counts, err := load(s, gctx, kindStatus, db, s.repo.AccountStatusCounts)
		if err != nil {
			ov.CountsErr = err
			return nil
		}
		ov.Counts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, fmt.Errorf("dashboard overview %s: %w", db, err)
	}
	return ov, nil
}

// Warm reloads both payloads for db from the API and overwrites the cache.
func (s *Service) Warm(ctx context.Context, db backend.Database) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return warm(s, gctx, kindStatistics, db, s.repo.Statistics)
	})
	g.Go(func() error {
		return warm(s, gctx, kindStatus, db, s.repo.AccountStatusCounts)
	})
	return g.Wait()
}

// Invalidate drops every cached payload for every database.
func (s *Service) Invalidate(ctx context.Context) error {
	ver, err := s.cache.Bump(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: bump cache version: %w", err)
	}
	s.logger.Debug("dashboard cache invalidated", slog.Int64("version", ver))
	return nil
}

func load[T any](s *Service, ctx context.Context, kind string, db backend.Database, fetch func(context.Context, backend.Database) (T, error)) (T, error) {
	var zero T
	key, err := s.cache.BuildKey(ctx, kind, db.String())
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.String("kind", kind), slog.Any("error", err))
		return fetch(ctx, db)
	}
	// The shared call outlives any single caller; each waiter honours its own ctx below.
	loadCtx := context.WithoutCancel(ctx)
	res := s.group.DoChan(key, func() (any, error) {
		miss := false
		var out T
		err := s.cache.FetchJSON(loadCtx, key, &out, func(ctx context.Context) (any, error) {
			miss = true
			return fetch(ctx, db)
		})
		s.observe(kind, !miss)
		return out, err
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-res:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(T), nil
	}
}

func warm[T any](s *Service, ctx context.Context, kind string, db backend.Database, fetch func(context.Context, backend.Database) (T, error)) error {
	value, err := fetch(ctx, db)
	if err != nil {
		return fmt.Errorf("warm %s %s: %w", kind, db, err)
	}
	key, err := s.cache.BuildKey(ctx, kind, db.String())
	if err != nil {
		return fmt.Errorf("warm %s %s: %w", kind, db, err)
	}
	return s.cache.Store(ctx, key, value, nil)
}

func (s *Service) observe(kind string, hit bool) {
	if s.observer != nil {
		s.observer.DashboardCacheLookup(kind, hit)
	}
}
