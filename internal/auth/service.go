package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	enabled bool
}

// NewService constructs a Service. With enabled false every request is
// treated as signed in and the login page only explains why.
func NewService(repo Repository, enabled bool) *Service {
	return &Service{repo: repo, enabled: enabled}
}

// Enabled reports whether operators must sign in.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Operator, error) {
	op, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return op, nil
}
