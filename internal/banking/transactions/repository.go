package transactions

import (
	"context"
	"net/http"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// Repository reads and writes transactions through the bank API.
type Repository interface {
	List(ctx context.Context, db backend.Database, q ListQuery) ([]Transaction, int, error)
	Create(ctx context.Context, db backend.Database, req CreateTransactionRequest) (Transaction, error)
	Delete(ctx context.Context, db backend.Database, id int64) error
}

type repository struct {
	client *backend.Client
}

// NewRepository returns the REST backed Repository.
func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) List(ctx context.Context, db backend.Database, q ListQuery) ([]Transaction, int, error) {
	var resp listResponse
	if err := r.client.Get(ctx, "list transactions", "/api/transactions", q.values(db), &resp); err != nil {
		return nil, 0, err
	}
	return resp.Transactions, resp.TotalCount, nil
}

func (r *repository) Create(ctx context.Context, db backend.Database, req CreateTransactionRequest) (Transaction, error) {
	var created Transaction
	err := r.client.Send(ctx, "create transaction", http.MethodPost, "/api/transactions", backend.Query(db), req, &created)
	return created, err
}

func (r *repository) Delete(ctx context.Context, db backend.Database, id int64) error {
	return r.client.Delete(ctx, "delete transaction", "/api/transactions/"+strconv.FormatInt(id, 10), backend.Query(db))
}
