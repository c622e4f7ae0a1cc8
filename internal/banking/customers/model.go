package customers

import (
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
)

// Customer types accepted by the bank API.
const (
	TypeIndividual = "Individual"
	TypeBusiness   = "Business"
	TypeVIP        = "VIP"
	TypeGovernment = "Government"
	TypeNonprofit  = "Nonprofit"
)

// Types lists customer types in display order.
var Types = []string{TypeIndividual, TypeBusiness, TypeVIP, TypeGovernment, TypeNonprofit}

// FilterType narrows the table to one customer type.
const FilterType = "customerType"

// Customer is a bank customer with the ids of the accounts they hold.
type Customer struct {
	CustomerID   int64             `json:"customerId"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	CustomerType string            `json:"customerType"`
	CreatedAt    backend.LocalTime `json:"createdAt"`
	AccountIDs   []int64           `json:"accountIds"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// AccountIDList renders the account ids as "1,2,3" for the transactions link.
func (c Customer) AccountIDList() string {
	parts := make([]string, len(c.AccountIDs))
	for i, id := range c.AccountIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ListOptions describes the sortable columns and filters of the table.
func ListOptions() listview.Options {
	return listview.Options{
		PageSizes:        listview.DefaultPageSizes,
		DefaultPageSize:  10,
		SortFields:       []string{"customer_id", "first_name", "last_name", "email", "phone", "customer_type", "created_at"},
		DefaultSort:      "customer_id",
		DefaultDirection: listview.Ascending,
		Filters:          []string{FilterType},
	}
}

// IntentKeys: /customers?customerId=7 opens the table on that customer.
var IntentKeys = listview.IntentKeys{EntityID: "customerId"}
