package branches

import (
	"context"
	"net/http"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// Repository reads and writes branches through the bank API. The API has
// no paging for branches; List returns every row.
type Repository interface {
	List(ctx context.Context, db backend.Database) ([]Branch, error)
	Create(ctx context.Context, db backend.Database, req CreateBranchRequest) error
	UpdateManager(ctx context.Context, db backend.Database, id int64, managerName string) (Branch, error)
	Delete(ctx context.Context, db backend.Database, id int64) error
}

type repository struct {
	client *backend.Client
}

// NewRepository returns the REST backed Repository.
func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, db backend.Database) ([]Branch, error) {
	var rows []wireBranch
	if err := r.client.Get(ctx, "list branches", "/api/branches", backend.Query(db), &rows); err != nil {
		return nil, err
	}
	out := make([]Branch, len(rows))
	for i, row := range rows {
		out[i] = row.branch()
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, db backend.Database, req CreateBranchRequest) error {
	return r.client.Send(ctx, "create branch", http.MethodPost, "/api/branches", backend.Query(db), req, nil)
}

// UpdateManager sends the new name as a query parameter, not a body.
func (r *repository) UpdateManager(ctx context.Context, db backend.Database, id int64, managerName string) (Branch, error) {
	query := backend.Query(db)
	query.Set("managerName", managerName)
	var updated wireBranch
	err := r.client.Send(ctx, "update branch manager", http.MethodPut, "/api/branches/"+strconv.FormatInt(id, 10)+"/manager", query, nil, &updated)
	return updated.branch(), err
}

func (r *repository) Delete(ctx context.Context, db backend.Database, id int64) error {
	return r.client.Delete(ctx, "delete branch", "/api/branches/"+strconv.FormatInt(id, 10), backend.Query(db))
}
