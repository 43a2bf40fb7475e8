package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pjanik/skimmer"
	"github.com/pjanik/skimmer/batch"
	"github.com/pjanik/skimmer/export"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", skimmer.ErrorMessage(err))
		return err
	}

	urls, err := c.collectURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", skimmer.ErrorMessage(err))
		return err
	}

	progress := func(event batch.ProgressEvent) {
		switch event.Type {
		case batch.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Extracting from %d URLs\n", event.Total)
		case batch.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, batch.TruncateURL(event.URL, 60))
		case batch.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] fail %s: %v\n", event.Completed, event.Total, batch.TruncateURL(event.URL, 60), event.Error)
		case batch.ProgressFinished:
			// Summary printed after the run completes
		}
	}

	outcomes, err := deps.Pipeline.Run(deps.Ctx, urls, schema, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", skimmer.ErrorMessage(err))
		return err
	}

	succeeded, failed := skimmer.CountOutcomes(outcomes)
	var tokens int
	for i := range outcomes {
		tokens += outcomes[i].Tokens
	}
	fmt.Fprintf(deps.Stdout, "Done: %d succeeded, %d failed (%s)\n",
		succeeded, failed, batch.FormatTokens(tokens))

	if !c.NoSave {
		run := &skimmer.Run{
			Schema:   schema,
			Outcomes: outcomes,
		}
		if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "error saving run: %s\n", skimmer.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Saved run %s\n", run.ID)
	}

	if c.Output != "" {
		if err := export.Export(c.Output, outcomes); err != nil {
			fmt.Fprintf(deps.Stderr, "error exporting: %s\n", skimmer.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote %s\n", c.Output)
	}

	// Preview the first successful outcome so the schema fit is visible
	// without opening the export file.
	for i := range outcomes {
		if !outcomes[i].Failed() {
			fmt.Fprintln(deps.Stdout)
			fmt.Fprint(deps.Stdout, skimmer.FormatOutcome(&outcomes[i]))
			break
		}
	}

	return nil
}

// collectURLs assembles the input URL list from positional arguments, a URL
// file, and sitemap discovery, in that order.
func (c *ExtractCmd) collectURLs(deps *Dependencies) ([]string, error) {
	urls := append([]string(nil), c.URLs...)

	if c.URLFile != "" {
		fromFile, err := readURLFile(c.URLFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	if c.Sitemap != "" {
		filter, err := compileFilter(c.Filter)
		if err != nil {
			return nil, err
		}
		discovered, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return nil, err
		}
		urls = append(urls, discovered...)
	}

	if len(urls) == 0 {
		return nil, skimmer.Errorf(skimmer.EINVALID, "no URLs given (pass URLs, --urls, or --sitemap)")
	}
	return urls, nil
}

// loadSchema reads and parses a schema file.
func loadSchema(path string) (skimmer.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EINVALID, "cannot read schema file: %v", err)
	}
	return skimmer.ParseSchema(data)
}

// readURLFile reads URLs from a file, one per line. Blank lines and lines
// starting with # are skipped.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EINVALID, "cannot read URL file: %v", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, skimmer.Errorf(skimmer.EINVALID, "cannot read URL file: %v", err)
	}
	return urls, nil
}

// compileFilter compiles include patterns into a URLFilter. Patterns are
// validated before any network activity.
func compileFilter(patterns []string) (*skimmer.URLFilter, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	filter := &skimmer.URLFilter{}
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, skimmer.Errorf(skimmer.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	return filter, nil
}
