package customers

import (
	"net/url"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// CreateCustomerRequest is the body of POST /api/customers.
type CreateCustomerRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=200"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=50"`
	CustomerType string `json:"customerType" validate:"required,oneof=Individual Business VIP Government Nonprofit"`
}

// ListQuery is the parameter set of GET /api/customers.
type ListQuery struct {
	Page         int
	Size         int
	SortBy       string
	SortOrder    string
	CustomerType string
	SearchQuery  string
	CustomerID   string
}

func (q ListQuery) values(db backend.Database) url.Values {
	values := backend.Query(db)
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("size", strconv.Itoa(q.Size))
	values.Set("sortBy", q.SortBy)
	values.Set("sortOrder", q.SortOrder)
	if q.CustomerType != "" {
		values.Set("customerType", q.CustomerType)
	}
	if q.SearchQuery != "" {
		values.Set("searchQuery", q.SearchQuery)
	}
	if q.CustomerID != "" {
		values.Set("customerId", q.CustomerID)
	}
	return values
}

type listResponse struct {
	Customers  []Customer `json:"customers"`
	TotalCount int        `json:"totalCount"`
}
