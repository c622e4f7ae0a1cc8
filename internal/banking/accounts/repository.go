package accounts

import (
	"context"
	"net/http"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// Repository reads and writes accounts through the bank API.
type Repository interface {
	List(ctx context.Context, db backend.Database, q ListQuery) ([]Account, int, error)
	Create(ctx context.Context, db backend.Database, req CreateAccountRequest) (Account, error)
	UpdateStatus(ctx context.Context, db backend.Database, id int64, req UpdateStatusRequest) (Account, error)
	Delete(ctx context.Context, db backend.Database, id int64) error
}

type repository struct {
	client *backend.Client
}

// NewRepository returns the REST backed Repository.
func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func accountPath(id int64) string {
	return "/api/accounts/" + strconv.FormatInt(id, 10)
}

func (r *repository) List(ctx context.Context, db backend.Database, q ListQuery) ([]Account, int, error) {
	var resp listResponse
	if err := r.client.Get(ctx, "list accounts", "/api/accounts", q.values(db), &resp); err != nil {
		return nil, 0, err
	}
	return resp.Accounts, resp.TotalCount, nil
}

func (r *repository) Create(ctx context.Context, db backend.Database, req CreateAccountRequest) (Account, error) {
	var created Account
	err := r.client.Send(ctx, "create account", http.MethodPost, "/api/accounts", backend.Query(db), req, &created)
	return created, err
}

func (r *repository) UpdateStatus(ctx context.Context, db backend.Database, id int64, req UpdateStatusRequest) (Account, error) {
	var updated Account
	err := r.client.Send(ctx, "update account", http.MethodPatch, accountPath(id), backend.Query(db), req, &updated)
	return updated, err
}

func (r *repository) Delete(ctx context.Context, db backend.Database, id int64) error {
	return r.client.Delete(ctx, "delete account", accountPath(id), backend.Query(db))
}
