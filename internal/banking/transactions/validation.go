package transactions

import (
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// formDateLayout is what a datetime-local input submits.
const formDateLayout = "2006-01-02T15:04"

var createMessages = map[string]string{
	"transactionType": "must be a known transaction type",
	"currency":        "must be USD, EUR or GBP",
	"channel":         "must be a known channel",
	"authMethod":      "must be a known authentication method",
}

// parseCreate turns the text form into a request. The bank API expects the
// date with seconds, so a minute precision value gets ":00" appended.
func (s *Service) parseCreate(form TransactionForm) (CreateTransactionRequest, error) {
	fields := map[string]string{}
	req := CreateTransactionRequest{
		TransactionType: strings.TrimSpace(form.TransactionType),
		Currency:        strings.TrimSpace(form.Currency),
		Channel:         strings.TrimSpace(form.Channel),
		AuthMethod:      strings.TrimSpace(form.AuthMethod),
		Location:        strings.TrimSpace(form.Location),
		Description:     strings.TrimSpace(form.Description),
	}
	if req.TransactionType == "" {
		req.TransactionType = TypeDeposit
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(form.AccountID), 10, 64); err != nil || id <= 0 {
		fields["accountId"] = "must be an account number"
	} else {
		req.AccountID = id
	}
	if amount, err := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64); err != nil {
		fields["amount"] = "must be a number"
	} else if amount <= 0 {
		fields["amount"] = "must be greater than zero"
	} else {
		req.Amount = amount
	}
	if date, ok := wireDate(form.TransactionDate); ok {
		req.TransactionDate = date
	} else {
		fields["transactionDate"] = "must be a date and time"
	}
	if err := s.validate.Struct(req); err != nil {
		for field, msg := range shared.FieldErrors(shared.FromValidator(err, createMessages)) {
			if _, seen := fields[field]; !seen {
				fields[field] = msg
			}
		}
	}
	if len(fields) > 0 {
		return CreateTransactionRequest{}, shared.NewValidationError(fields)
	}
	return req, nil
}

// wireDate accepts minute or second precision and returns the API layout.
func wireDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(formDateLayout, value); err == nil {
		return t.Format(formDateLayout) + ":00", true
	}
	if t, err := time.Parse(backend.LocalTimeLayout, value); err == nil {
		return t.Format(backend.LocalTimeLayout), true
	}
	return "", false
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, shared.NewValidationError(map[string]string{"transactionId": "must be a positive number"})
	}
	return v, nil
}
