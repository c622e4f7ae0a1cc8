package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/backend"
	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer reloads the dashboard statistics of one database into the cache.
type Warmer interface {
	Warm(ctx context.Context, db backend.Database) error
}

// DashboardWarmupJob keeps the dashboard cache hot for every database.
type DashboardWarmupJob struct {
	Dashboard Warmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	// Timeout bounds the refresh of a single database.
	Timeout time.Duration
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: dashboard,
		Logger:    logger,
		Metrics:   metrics,
		Timeout:   20 * time.Second,
	}
}

// Handle processes dashboard warmup tasks. Every database is attempted; the
// first failure is returned so Asynq retries the task.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup: %v: %w", err, asynq.SkipRetry)
		}
	}
	targets, err := payload.targets()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	logger := j.logger()
	start := time.Now()

	var firstErr error
	warmed := 0
	for _, db := range targets {
		if err := j.warm(ctx, db); err != nil {
			logger.Error("warm database", slog.String("database", db.String()), slog.Any("error", err))
			if firstErr == nil {
				firstErr = fmt.Errorf("dashboard warmup %s: %w", db, err)
			}
			continue
		}
		j.metrics().AddWarmed(db.String())
		warmed++
	}

	logger.Info("completed dashboard warmup", slog.Int("databases", warmed), slog.Duration("duration", time.Since(start)))
	return tracker.End(firstErr)
}

func (j *DashboardWarmupJob) warm(ctx context.Context, db backend.Database) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	dbCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return j.Dashboard.Warm(dbCtx, db)
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
