package main

import (
	"fmt"

	"github.com/pjanik/skimmer"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, skimmer.RunFilter{
		Limit:  c.Limit,
		Offset: c.Offset,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", skimmer.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'skimmer extract' to create one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d urls (%d ok, %d failed)\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.URLCount, r.Succeeded, r.Failed)
	}

	return nil
}
