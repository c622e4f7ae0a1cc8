package transactions

import (
	"net/url"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

// CreateTransactionRequest is the body of POST /api/transactions.
type CreateTransactionRequest struct {
	AccountID       int64   `json:"accountId" validate:"required,gt=0"`
	TransactionType string  `json:"transactionType" validate:"required,oneof=Deposit Withdrawal Transfer Payment Fee"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	TransactionDate string  `json:"transactionDate,omitempty"`
	Currency        string  `json:"currency" validate:"required,oneof=USD EUR GBP"`
	Channel         string  `json:"channel,omitempty" validate:"omitempty,oneof=ATM Online Mobile Branch"`
	AuthMethod      string  `json:"authMethod,omitempty" validate:"omitempty,oneof=PIN Password Biometric Card Token None"`
	Location        string  `json:"location,omitempty" validate:"max=200"`
	Description     string  `json:"description,omitempty" validate:"max=500"`
}

// TransactionForm is the raw create form; numbers and the date arrive as text.
type TransactionForm struct {
	AccountID       string `json:"accountId"`
	TransactionType string `json:"transactionType"`
	Amount          string `json:"amount"`
	TransactionDate string `json:"transactionDate"`
	Currency        string `json:"currency"`
	Channel         string `json:"channel"`
	AuthMethod      string `json:"authMethod"`
	Location        string `json:"location"`
	Description     string `json:"description"`
}

// ListQuery is the parameter set of GET /api/transactions.
type ListQuery struct {
	Page            int
	Size            int
	SortBy          string
	SortOrder       string
	TransactionType string
	Status          string
	AccountIDs      string
	AccountID       string
	SearchQuery     string
}

func (q ListQuery) values(db backend.Database) url.Values {
	values := backend.Query(db)
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("size", strconv.Itoa(q.Size))
	values.Set("sortBy", q.SortBy)
	values.Set("sortOrder", q.SortOrder)
	for key, v := range map[string]string{
		"transactionType": q.TransactionType,
		"status":          q.Status,
		"accountIds":      q.AccountIDs,
		"accountId":       q.AccountID,
		"searchQuery":     q.SearchQuery,
	} {
		if v != "" {
			values.Set(key, v)
		}
	}
	return values
}

type listResponse struct {
	Transactions []Transaction `json:"transactions"`
	TotalCount   int           `json:"totalCount"`
}
