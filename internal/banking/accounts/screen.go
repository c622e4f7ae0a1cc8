package accounts

import (
	"context"
	"encoding/json"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/live"
)

// Screen binds the account table to the live protocol. Updates carry
// {"status": ...}.
func Screen(svc *Service) live.Screen[Account] {
	return live.Screen[Account]{
		Name:    "accounts",
		Noun:    "account",
		Options: ListOptions(),
		Keys:    IntentKeys,
		Fetch:   live.SourceFetch(svc.List),
		Delete:  live.SourceDelete(svc.Delete),
		Create:  live.DecodeCreate(svc.Create),
		Update: func(ctx context.Context, source, id string, payload json.RawMessage) error {
			db, err := backend.ParseDatabase(source)
			if err != nil {
				return err
			}
			var req UpdateStatusRequest
			if err := json.Unmarshal(payload, &req); err != nil {
				return err
			}
			_, err = svc.UpdateStatus(ctx, db, id, req)
			return err
		},
	}
}
