package mock

import "github.com/pjanik/skimmer"

var _ skimmer.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of skimmer.Cleaner.
type Cleaner struct {
	CleanFn func(html string) (*skimmer.CleanResult, error)
}

func (c *Cleaner) Clean(html string) (*skimmer.CleanResult, error) {
	return c.CleanFn(html)
}
