package accounts

import (
	"net/url"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// CreateAccountRequest is the body of POST /api/accounts.
type CreateAccountRequest struct {
	CustomerID  int64   `json:"customerId" validate:"required,gt=0"`
	AccountType string  `json:"accountType" validate:"required,oneof=Checking Savings Credit Loan Investment"`
	Status      string  `json:"status" validate:"required,oneof=Active Closed Frozen Dormant Overdrawn"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency" validate:"required,oneof=USD EUR GBP"`
}

// AccountForm is the raw create form; numbers arrive as text.
type AccountForm struct {
	CustomerID  string `json:"customerId"`
	AccountType string `json:"accountType"`
	Status      string `json:"status"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
}

// UpdateStatusRequest is the body of PATCH /api/accounts/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Closed Frozen Dormant Overdrawn"`
}

// ListQuery is the parameter set of GET /api/accounts.
type ListQuery struct {
	Page        int
	Size        int
	SortBy      string
	SortOrder   string
	AccountType string
	Status      string
	AccountID   string
	SearchQuery string
}

func (q ListQuery) values(db backend.Database) url.Values {
	values := backend.Query(db)
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("size", strconv.Itoa(q.Size))
	values.Set("sortBy", q.SortBy)
	values.Set("sortOrder", q.SortOrder)
	if q.AccountType != "" {
		values.Set("accountType", q.AccountType)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.AccountID != "" {
		values.Set("accountId", q.AccountID)
	}
	if q.SearchQuery != "" {
		values.Set("searchQuery", q.SearchQuery)
	}
	return values
}

type listResponse struct {
	Accounts   []Account `json:"accounts"`
	TotalCount int       `json:"totalCount"`
}
