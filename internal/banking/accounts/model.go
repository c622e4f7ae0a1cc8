package accounts

import (
	"github.com/odyssey-erp/backoffice/internal/listview"
)

// Account types accepted by the bank API.
const (
	TypeChecking   = "Checking"
	TypeSavings    = "Savings"
	TypeCredit     = "Credit"
	TypeLoan       = "Loan"
	TypeInvestment = "Investment"
)

// Account statuses.
const (
	StatusActive    = "Active"
	StatusClosed    = "Closed"
	StatusFrozen    = "Frozen"
	StatusDormant   = "Dormant"
	StatusOverdrawn = "Overdrawn"
)

var (
	// Types lists account types in display order.
	Types = []string{TypeChecking, TypeSavings, TypeCredit, TypeLoan, TypeInvestment}
	// Statuses lists account statuses in display order.
	Statuses = []string{StatusActive, StatusClosed, StatusFrozen, StatusDormant, StatusOverdrawn}
	// Currencies offered when opening an account.
	Currencies = []string{"USD", "EUR", "GBP"}
)

// Table filters.
const (
	FilterType   = "accountType"
	FilterStatus = "status"
)

// Account is one bank account.
type Account struct {
	AccountID   int64   `json:"accountId"`
	CustomerID  int64   `json:"customerId"`
	AccountType string  `json:"accountType"`
	Status      string  `json:"status"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency"`
}

// CurrencyCode defaults to USD for rows stored before currencies existed.
func (a Account) CurrencyCode() string {
	if a.Currency == "" {
		return "USD"
	}
	return a.Currency
}

// ListOptions describes the sortable columns and filters of the table.
func ListOptions() listview.Options {
	return listview.Options{
		PageSizes:        listview.DefaultPageSizes,
		DefaultPageSize:  10,
		SortFields:       []string{"account_id", "customer_id", "account_type", "status", "balance"},
		DefaultSort:      "account_id",
		DefaultDirection: listview.Ascending,
		Filters:          []string{FilterType, FilterStatus},
	}
}

// IntentKeys: links from customers (?accountId=, ?customerId=) and from a
// transaction row (?searchQuery=) all seed the search box, which then routes
// numeric values to the account id.
var IntentKeys = listview.IntentKeys{Search: []string{"accountId", "customerId", "searchQuery"}}
