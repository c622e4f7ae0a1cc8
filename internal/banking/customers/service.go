package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service composes queries and guards writes for the customer screens.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

// BuildQuery maps table state onto API parameters. The customer id box and
// the name/email search box are separate inputs.
func BuildQuery(q listview.QueryState) ListQuery {
	return ListQuery{
		Page:         q.Page,
		Size:         q.PageSize,
		SortBy:       q.SortField,
		SortOrder:    string(q.SortDirection),
		CustomerType: q.Filter(FilterType),
		SearchQuery:  strings.TrimSpace(q.Search),
		CustomerID:   q.EntityID,
	}
}

// List fetches one page.
func (s *Service) List(ctx context.Context, db backend.Database, q listview.QueryState) (listview.Page[Customer], error) {
	rows, total, err := s.repo.List(ctx, db, BuildQuery(q))
	if err != nil {
		return listview.Page[Customer]{}, err
	}
	return listview.Page[Customer]{Rows: rows, Total: total}, nil
}

// Get loads one customer.
func (s *Service) Get(ctx context.Context, db backend.Database, id string) (Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return Customer{}, err
	}
	return s.repo.Get(ctx, db, customerID)
}

// Create validates req locally and posts it.
func (s *Service) Create(ctx context.Context, db backend.Database, req CreateCustomerRequest) (Customer, error) {
	req = normalise(req)
	if err := s.validateCreate(req); err != nil {
		return Customer{}, err
	}
	created, err := s.repo.Create(ctx, db, req)
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// Delete removes a customer by id.
func (s *Service) Delete(ctx context.Context, db backend.Database, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, customerID); err != nil {
		return fmt.Errorf("delete customer %d: %w", customerID, err)
	}
	return nil
}
