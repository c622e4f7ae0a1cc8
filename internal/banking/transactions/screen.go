package transactions

import "github.com/odyssey-erp/backoffice/internal/live"

// Screen binds the transaction table to the live protocol.
func Screen(svc *Service) live.Screen[Transaction] {
	return live.Screen[Transaction]{
		Name:    "transactions",
		Noun:    "transaction",
		Options: ListOptions(),
		Keys:    IntentKeys,
		Fetch:   live.SourceFetch(svc.List),
		Delete:  live.SourceDelete(svc.Delete),
		Create:  live.DecodeCreate(svc.Create),
	}
}
