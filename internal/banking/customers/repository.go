package customers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// Repository reads and writes customers through the bank API.
type Repository interface {
	List(ctx context.Context, db backend.Database, q ListQuery) ([]Customer, int, error)
	Get(ctx context.Context, db backend.Database, id int64) (Customer, error)
	Create(ctx context.Context, db backend.Database, req CreateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, db backend.Database, id int64) error
}

type repository struct {
	client *backend.Client
}

// NewRepository returns the REST backed Repository.
func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, db backend.Database, q ListQuery) ([]Customer, int, error) {
	var resp listResponse
	if err := r.client.Get(ctx, "list customers", "/api/customers", q.values(db), &resp); err != nil {
		return nil, 0, err
	}
	return resp.Customers, resp.TotalCount, nil
}

func (r *repository) Get(ctx context.Context, db backend.Database, id int64) (Customer, error) {
	var c Customer
	err := r.client.Get(ctx, "get customer", "/api/customers/"+strconv.FormatInt(id, 10), backend.Query(db), &c)
	return c, err
}

func (r *repository) Create(ctx context.Context, db backend.Database, req CreateCustomerRequest) (Customer, error) {
	var created Customer
	err := r.client.Send(ctx, "create customer", http.MethodPost, "/api/customers", backend.Query(db), req, &created)
	return created, err
}

func (r *repository) Delete(ctx context.Context, db backend.Database, id int64) error {
	return r.client.Delete(ctx, "delete customer", "/api/customers/"+strconv.FormatInt(id, 10), backend.Query(db))
}
