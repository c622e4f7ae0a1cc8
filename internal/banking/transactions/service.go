package transactions

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service composes queries and guards writes for the transaction screens.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

// BuildQuery maps table state onto API parameters. An explicit entity id
// narrows to that account; otherwise a numeric search does, and free text
// goes to searchQuery.
func BuildQuery(q listview.QueryState) ListQuery {
	id, text := listview.RouteSearch(q.Search)
	if q.EntityID != "" {
		id, text = q.EntityID, ""
	}
	return ListQuery{
		Page:            q.Page,
		Size:            q.PageSize,
		SortBy:          q.SortField,
		SortOrder:       string(q.SortDirection),
		TransactionType: q.Filter(FilterType),
		Status:          q.Filter(FilterStatus),
		AccountIDs:      listview.JoinIDs(q.Filter(FilterAccountIDs)),
		AccountID:       id,
		SearchQuery:     text,
	}
}

// List fetches one page.
func (s *Service) List(ctx context.Context, db backend.Database, q listview.QueryState) (listview.Page[Transaction], error) {
	rows, total, err := s.repo.List(ctx, db, BuildQuery(q))
	if err != nil {
		return listview.Page[Transaction]{}, err
	}
	return listview.Page[Transaction]{Rows: rows, Total: total}, nil
}

// Create validates the form locally and posts the transaction.
func (s *Service) Create(ctx context.Context, db backend.Database, form TransactionForm) (Transaction, error) {
	req, err := s.parseCreate(form)
	if err != nil {
		return Transaction{}, err
	}
	created, err := s.repo.Create(ctx, db, req)
	if err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

// Delete removes a transaction by id.
func (s *Service) Delete(ctx context.Context, db backend.Database, id string) error {
	txID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, txID); err != nil {
		return fmt.Errorf("delete transaction %d: %w", txID, err)
	}
	return nil
}
