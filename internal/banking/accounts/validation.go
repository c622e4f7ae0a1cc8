package accounts

import (
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// parseCreate turns the text form into a request. Missing or non-numeric
// customer id and balance fail here, before the bank API is called.
func (s *Service) parseCreate(form AccountForm) (CreateAccountRequest, error) {
	fields := map[string]string{}
	req := CreateAccountRequest{
		AccountType: strings.TrimSpace(form.AccountType),
		Status:      strings.TrimSpace(form.Status),
		Currency:    strings.TrimSpace(form.Currency),
	}
	if req.Status == "" {
		req.Status = StatusActive
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(form.CustomerID), 10, 64); err != nil || id <= 0 {
		fields["customerId"] = "must be a customer number"
	} else {
		req.CustomerID = id
	}
	if balance, err := strconv.ParseFloat(strings.TrimSpace(form.Balance), 64); err != nil {
		fields["balance"] = "must be a number"
	} else {
		req.Balance = balance
	}
	if err := s.validate.Struct(req); err != nil {
		for field, msg := range shared.FieldErrors(shared.FromValidator(err, nil)) {
			if _, seen := fields[field]; !seen {
				fields[field] = msg
			}
		}
	}
	if len(fields) > 0 {
		return CreateAccountRequest{}, shared.NewValidationError(fields)
	}
	return req, nil
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, shared.NewValidationError(map[string]string{"accountId": "must be a positive number"})
	}
	return v, nil
}
