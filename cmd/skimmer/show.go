package main

import (
	"fmt"

	"github.com/pjanik/skimmer"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", skimmer.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s (%s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(deps.Stdout, "Schema fields: %v\n", run.Schema.Fields())
	fmt.Fprintf(deps.Stdout, "%d urls: %d succeeded, %d failed\n\n", run.URLCount, run.Succeeded, run.Failed)

	for i := range run.Outcomes {
		o := &run.Outcomes[i]
		if c.Failed && !o.Failed() {
			continue
		}
		fmt.Fprint(deps.Stdout, skimmer.FormatOutcome(o))
		fmt.Fprintln(deps.Stdout)
	}

	return nil
}
