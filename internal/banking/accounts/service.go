package accounts

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service composes queries and guards writes for the account screens.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

// BuildQuery maps table state onto API parameters. An explicit entity id
// wins; otherwise a numeric search is an exact account id and anything else
// is free text.
func BuildQuery(q listview.QueryState) ListQuery {
	id, text := listview.RouteSearch(q.Search)
	if q.EntityID != "" {
		id, text = q.EntityID, ""
	}
	return ListQuery{
		Page:        q.Page,
		Size:        q.PageSize,
		SortBy:      q.SortField,
		SortOrder:   string(q.SortDirection),
		AccountType: q.Filter(FilterType),
		Status:      q.Filter(FilterStatus),
		AccountID:   id,
		SearchQuery: text,
	}
}

// List fetches one page.
func (s *Service) List(ctx context.Context, db backend.Database, q listview.QueryState) (listview.Page[Account], error) {
	rows, total, err := s.repo.List(ctx, db, BuildQuery(q))
	if err != nil {
		return listview.Page[Account]{}, err
	}
	return listview.Page[Account]{Rows: rows, Total: total}, nil
}

// Create validates the form locally and opens the account.
func (s *Service) Create(ctx context.Context, db backend.Database, form AccountForm) (Account, error) {
	req, err := s.parseCreate(form)
	if err != nil {
		return Account{}, err
	}
	created, err := s.repo.Create(ctx, db, req)
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

// UpdateStatus changes the status of one account.
func (s *Service) UpdateStatus(ctx context.Context, db backend.Database, id string, req UpdateStatusRequest) (Account, error) {
	accountID, err := parseID(id)
	if err != nil {
		return Account{}, err
	}
	if err := s.validate.Struct(req); err != nil {
		return Account{}, shared.FromValidator(err, map[string]string{"status": "must be a known account status"})
	}
	updated, err := s.repo.UpdateStatus(ctx, db, accountID, req)
	if err != nil {
		return Account{}, fmt.Errorf("update account %d: %w", accountID, err)
	}
	return updated, nil
}

// Delete removes an account by id.
func (s *Service) Delete(ctx context.Context, db backend.Database, id string) error {
	accountID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, accountID); err != nil {
		return fmt.Errorf("delete account %d: %w", accountID, err)
	}
	return nil
}
