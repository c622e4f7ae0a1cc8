package customers

import "github.com/odyssey-erp/backoffice/internal/live"

// Screen binds the customer table to the live protocol.
func Screen(svc *Service) live.Screen[Customer] {
	return live.Screen[Customer]{
		Name:    "customers",
		Noun:    "customer",
		Options: ListOptions(),
		Keys:    IntentKeys,
		Fetch:   live.SourceFetch(svc.List),
		Delete:  live.SourceDelete(svc.Delete),
		Create:  live.DecodeCreate(svc.Create),
	}
}
