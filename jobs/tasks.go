package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup refreshes the cached dashboard statistics.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload lists the backend databases to refresh. Empty means all of them.
type DashboardWarmupPayload struct {
	Databases []string `json:"databases,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task for the given databases.
func NewDashboardWarmupTask(databases ...backend.Database) (*asynq.Task, error) {
	payload := DashboardWarmupPayload{}
	for _, db := range databases {
		payload.Databases = append(payload.Databases, db.String())
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// targets resolves the payload into backend databases.
func (p DashboardWarmupPayload) targets() ([]backend.Database, error) {
	if len(p.Databases) == 0 {
		return backend.Databases(), nil
	}
	out := make([]backend.Database, 0, len(p.Databases))
	for _, name := range p.Databases {
		db, err := backend.ParseDatabase(name)
		if err != nil {
			return nil, fmt.Errorf("dashboard warmup: %w", err)
		}
		out = append(out, db)
	}
	return out, nil
}
