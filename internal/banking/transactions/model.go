package transactions

import (
	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
)

// Transaction types.
const (
	TypeDeposit    = "Deposit"
	TypeWithdrawal = "Withdrawal"
	TypeTransfer   = "Transfer"
	TypePayment    = "Payment"
	TypeFee        = "Fee"
)

var (
	// Types lists transaction types in display order.
	Types = []string{TypeDeposit, TypeWithdrawal, TypeTransfer, TypePayment, TypeFee}
	// Statuses lists transaction statuses.
	Statuses = []string{"Pending", "Completed", "Failed", "Reversed"}
	// Channels a transaction can arrive through.
	Channels = []string{"ATM", "Online", "Mobile", "Branch"}
	// AuthMethods used to authorise a transaction.
	AuthMethods = []string{"PIN", "Password", "Biometric", "Card", "Token", "None"}
	// Currencies offered on the create form.
	Currencies = []string{"USD", "EUR", "GBP"}
)

// Table filters.
const (
	FilterType       = "transactionType"
	FilterStatus     = "status"
	FilterAccountIDs = "accountIds"
)

// Transaction is one posted movement on an account.
type Transaction struct {
	TransactionID   int64             `json:"transactionId"`
	AccountID       int64             `json:"accountId"`
	TransactionType string            `json:"transactionType"`
	TransactionDate backend.LocalTime `json:"transactionDate"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	Channel         string            `json:"channel"`
	AuthMethod      string            `json:"authMethod"`
	Location        string            `json:"location"`
	Status          string            `json:"status"`
	Description     string            `json:"description"`
}

// CurrencyCode defaults to USD when the row carries none.
func (t Transaction) CurrencyCode() string {
	if t.Currency == "" {
		return "USD"
	}
	return t.Currency
}

// ListOptions describes the sortable columns and filters of the table.
// Newest transactions come first.
func ListOptions() listview.Options {
	return listview.Options{
		PageSizes:        listview.DefaultPageSizes,
		DefaultPageSize:  10,
		SortFields:       []string{"transaction_id", "account_id", "transaction_type", "transaction_date", "amount", "channel", "currency"},
		DefaultSort:      "transaction_date",
		DefaultDirection: listview.Descending,
		Filters:          []string{FilterType, FilterStatus, FilterAccountIDs},
	}
}

// IntentKeys: ?accountId= from an account row seeds both the search box and
// the account filter; ?accountIds= from a customer seeds the filter only.
var IntentKeys = listview.IntentKeys{
	Filters:       map[string]string{"accountIds": FilterAccountIDs},
	SearchFilters: map[string]string{"accountId": FilterAccountIDs},
}
