package skimmer

import (
	"context"
	"time"
)

// Run represents one completed batch extraction, persisted for later
// inspection and export.
type Run struct {
	ID        string    `json:"id"`
	Schema    Schema    `json:"schema"`
	CreatedAt time.Time `json:"createdAt"`

	// Summary counts, denormalized for cheap listing.
	URLCount  int `json:"urlCount"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// Outcomes is index-aligned with the run's input URL list.
	Outcomes []Outcome `json:"outcomes"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if err := r.Schema.Validate(); err != nil {
		return err
	}
	if len(r.Outcomes) == 0 {
		return Errorf(EINVALID, "run must contain at least one outcome")
	}
	return nil
}

// RunService represents a service for managing persisted runs.
type RunService interface {
	// CreateRun persists a new run and its outcomes. Assigns the run ID
	// and creation time.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run with its outcomes.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves run summaries matching the filter, newest first.
	// Outcomes are not populated.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// DeleteRun permanently removes a run and its outcomes.
	// Returns ENOTFOUND if the run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	ID *string `json:"id"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
