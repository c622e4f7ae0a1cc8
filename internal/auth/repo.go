package auth

import (
	"context"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Repository looks up operators by e-mail.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Operator, error)
}

// StaticRepository serves the operators listed in configuration.
type StaticRepository struct {
	operators map[string]Operator
}

// NewStaticRepository indexes operators by lower-cased e-mail. Entries
// without an e-mail or a hash are skipped.
func NewStaticRepository(operators ...Operator) *StaticRepository {
	repo := &StaticRepository{operators: make(map[string]Operator, len(operators))}
	for _, op := range operators {
		email := strings.ToLower(strings.TrimSpace(op.Email))
		if email == "" || op.PasswordHash == "" {
			continue
		}
		op.Email = email
		repo.operators[email] = op
	}
	return repo
}

// FindByEmail returns the operator or shared.ErrInvalidCredentials.
func (r *StaticRepository) FindByEmail(_ context.Context, email string) (*Operator, error) {
	op, ok := r.operators[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, shared.ErrInvalidCredentials
	}
	return &op, nil
}

// Len reports how many operators can sign in.
func (r *StaticRepository) Len() int {
	return len(r.operators)
}

var _ Repository = (*StaticRepository)(nil)
