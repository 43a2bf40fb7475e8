package main

import (
	"context"
	"io"
	"time"

	"github.com/pjanik/skimmer"
	"github.com/pjanik/skimmer/batch"
	"github.com/pjanik/skimmer/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	DB       *sqlite.DB
	Runs     skimmer.RunService
	Sitemaps skimmer.SitemapService
	Pipeline *batch.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract structured data from web pages"`
	List    ListCmd    `cmd:"" help:"List saved extraction runs"`
	Show    ShowCmd    `cmd:"" help:"Show a saved run and its outcomes"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a saved run"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URLs        []string      `arg:"" optional:"" help:"URLs to extract from"`
	Schema      string        `short:"s" required:"" help:"Path to JSON schema file ({\"field\": \"type\", ...})"`
	URLFile     string        `short:"u" name:"urls" help:"Read URLs from file, one per line"`
	Sitemap     string        `help:"Discover URLs from this site's sitemap"`
	Filter      []string      `short:"F" help:"Filter sitemap URLs by regex (repeatable)"`
	Output      string        `short:"o" help:"Export results to file (.json or .csv)"`
	Browser     bool          `short:"b" help:"Render pages in headless Chrome instead of plain HTTP"`
	Cleaner     string        `default:"trafilatura" enum:"trafilatura,goquery" help:"Boilerplate removal strategy (trafilatura or goquery)"`
	Concurrency int           `short:"c" help:"Concurrent URL limit (default 5, max 10)"`
	Timeout     time.Duration `short:"t" help:"Per-URL fetch and extract timeout (default 30s)"`
	MaxBytes    int           `help:"Content size ceiling before truncation (default 50000)"`
	NoSave      bool          `help:"Do not persist the run"`
	Verbose     bool          `short:"v" help:"Log fetch and extract operations"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Limit  int `default:"20" help:"Maximum runs to list"`
	Offset int `help:"Runs to skip"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID     string `arg:"" help:"Run ID"`
	Failed bool   `help:"Show only failed outcomes"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID string `arg:"" help:"Run ID"`
}
