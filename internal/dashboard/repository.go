package dashboard

import (
	"context"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// Repository reads the aggregate endpoints of the bank API.
type Repository interface {
	Statistics(ctx context.Context, db backend.Database) (Statistics, error)
	AccountStatusCounts(ctx context.Context, db backend.Database) (StatusCounts, error)
}

type repository struct {
	client *backend.Client
}

// NewRepository returns the REST backed Repository.
func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) Statistics(ctx context.Context, db backend.Database) (Statistics, error) {
	var stats Statistics
	err := r.client.Get(ctx, "load statistics", "/api/statistics", backend.Query(db), &stats)
	return stats, err
}

func (r *repository) AccountStatusCounts(ctx context.Context, db backend.Database) (StatusCounts, error) {
	counts := StatusCounts{}
	err := r.client.Get(ctx, "load account status counts", "/api/statistics/account-status-counts", backend.Query(db), &counts)
	return counts, err
}
