package branches

import (
	"context"
	"encoding/json"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/live"
)

// Screen binds the branch table to the live protocol. Updates carry
// {"managerName": ...}.
func Screen(svc *Service) live.Screen[Branch] {
	return live.Screen[Branch]{
		Name:    "branches",
		Noun:    "branch",
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
			var req UpdateManagerRequest
			if err := json.Unmarshal(payload, &req); err != nil {
				return err
			}
			_, err = svc.UpdateManager(ctx, db, id, req)
			return err
		},
	}
}
