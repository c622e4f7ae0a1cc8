package branches

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service guards writes and pages the branch list locally.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

// List fetches every branch and returns the page q describes.
func (s *Service) List(ctx context.Context, db backend.Database, q listview.QueryState) (listview.Page[Branch], error) {
	all, err := s.repo.List(ctx, db)
	if err != nil {
		return listview.Page[Branch]{}, err
	}
	return applyState(all, q), nil
}

// Create validates and adds a branch.
func (s *Service) Create(ctx context.Context, db backend.Database, req CreateBranchRequest) (CreateBranchRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Region = strings.TrimSpace(req.Region)
	req.ManagerName = strings.TrimSpace(req.ManagerName)
	if err := s.validate.Struct(req); err != nil {
		return req, shared.FromValidator(err, map[string]string{"region": "must be a known region"})
	}
	if err := s.repo.Create(ctx, db, req); err != nil {
		return req, fmt.Errorf("create branch: %w", err)
	}
	return req, nil
}

// UpdateManager replaces the manager of one branch.
func (s *Service) UpdateManager(ctx context.Context, db backend.Database, id string, req UpdateManagerRequest) (Branch, error) {
	branchID, err := parseID(id)
	if err != nil {
		return Branch{}, err
	}
	req.ManagerName = strings.TrimSpace(req.ManagerName)
	if err := s.validate.Struct(req); err != nil {
		return Branch{}, shared.FromValidator(err, nil)
	}
	updated, err := s.repo.UpdateManager(ctx, db, branchID, req.ManagerName)
	if err != nil {
		return Branch{}, fmt.Errorf("update branch %d: %w", branchID, err)
	}
	return updated, nil
}

// Delete removes a branch by id.
func (s *Service) Delete(ctx context.Context, db backend.Database, id string) error {
	branchID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, branchID); err != nil {
		return fmt.Errorf("delete branch %d: %w", branchID, err)
	}
	return nil
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, shared.NewValidationError(map[string]string{"branchId": "must be a positive number"})
	}
	return v, nil
}
