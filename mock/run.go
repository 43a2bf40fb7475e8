package mock

import (
	"context"

	"github.com/pjanik/skimmer"
)

var _ skimmer.RunService = (*RunService)(nil)

// RunService is a mock implementation of skimmer.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *skimmer.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*skimmer.Run, error)
	FindRunsFn    func(ctx context.Context, filter skimmer.RunFilter) ([]*skimmer.Run, error)
	DeleteRunFn   func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *skimmer.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*skimmer.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter skimmer.RunFilter) ([]*skimmer.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	return s.DeleteRunFn(ctx, id)
}
