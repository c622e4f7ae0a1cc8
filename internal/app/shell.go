package app

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// Invalidator drops cached dashboard data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// WarmupEnqueuer schedules an immediate dashboard warmup on the worker.
type WarmupEnqueuer interface {
	EnqueueDashboardWarmup(ctx context.Context, databases ...backend.Database) (*asynq.TaskInfo, error)
}

// shell serves the header controls shared by every page.
type shell struct {
	logger    *slog.Logger
	pages     *view.Responder
	refresh   *listview.RefreshSignal
	dashboard Invalidator
	warmups   WarmupEnqueuer
}

// selectDatabase stores the operator's dataset choice in the session.
func (s *shell) selectDatabase(w http.ResponseWriter, r *http.Request) {
	next := localPath(r.PostFormValue("next"))
	db, err := backend.ParseDatabase(r.PostFormValue("database"))
	if err != nil {
		s.pages.RedirectWithFlash(w, r, next, "error", "Unknown database")
		return
	}
	shared.SelectDatabase(shared.SessionFromContext(r.Context()), db)
	s.pages.RedirectWithFlash(w, r, next, "success", "Showing "+db.Label()+" data")
}

// refreshAll makes every open table re-fetch and drops the dashboard cache.
func (s *shell) refreshAll(w http.ResponseWriter, r *http.Request) {
	ver := s.refresh.Bump()
	if s.dashboard != nil {
		if err := s.dashboard.Invalidate(r.Context()); err != nil {
			s.logger.Warn("invalidate dashboard", slog.Any("error", err))
		}
	}
	if s.warmups != nil {
		if _, err := s.warmups.EnqueueDashboardWarmup(r.Context(), s.pages.Database(r)); err != nil {
			s.logger.Warn("enqueue dashboard warmup", slog.Any("error", err))
		}
	}
	s.logger.Info("refresh requested", slog.Uint64("version", ver))
	s.pages.RedirectWithFlash(w, r, localPath(r.PostFormValue("next")), "success", "Data refreshed")
}

// localPath keeps redirects on this site.
func localPath(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
