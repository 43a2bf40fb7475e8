package main

import (
	"fmt"

	"github.com/pjanik/skimmer"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Runs.DeleteRun(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", skimmer.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted run %s\n", c.ID)
	return nil
}
