package customers

import (
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

func normalise(req CreateCustomerRequest) CreateCustomerRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CustomerType = strings.TrimSpace(req.CustomerType)
	if req.CustomerType == "" {
		req.CustomerType = TypeIndividual
	}
	return req
}

func (s *Service) validateCreate(req CreateCustomerRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return shared.FromValidator(err, nil)
	}
	return nil
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, shared.NewValidationError(map[string]string{"customerId": "must be a positive number"})
	}
	return v, nil
}
