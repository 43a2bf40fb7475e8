package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/pjanik/skimmer"
	"github.com/pjanik/skimmer/batch"
	skimgenai "github.com/pjanik/skimmer/genai"
	"github.com/pjanik/skimmer/goquery"
	"github.com/pjanik/skimmer/htmltomarkdown"
	skimhttp "github.com/pjanik/skimmer/http"
	"github.com/pjanik/skimmer/rod"
	skimslog "github.com/pjanik/skimmer/slog"
	"github.com/pjanik/skimmer/sqlite"
	"github.com/pjanik/skimmer/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// RunService for end-to-end testing.
	RunService skimmer.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("skimmer"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'skimmer --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SKIMMER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.RunService = sqlite.NewRunService(m.DB)
	deps.DB = m.DB
	deps.Runs = m.RunService
	deps.Sitemaps = skimhttp.NewSitemapService(nil)

	if cmd == "extract" {
		pipeline, cleanup, err := m.buildPipeline(ctx, &cli.Extract, stderr)
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Pipeline = pipeline

		if cli.Extract.Verbose {
			logger := slog.New(slog.NewTextHandler(stderr, nil))
			deps.Pipeline.Fetcher = skimslog.NewLoggingFetcher(deps.Pipeline.Fetcher, logger)
			deps.Pipeline.Extractor = skimslog.NewLoggingExtractor(deps.Pipeline.Extractor, logger)
			deps.Sitemaps = skimslog.NewLoggingSitemapService(deps.Sitemaps, logger)
		}
	}

	return kongCtx.Run(deps)
}

// buildPipeline wires the fetch, normalize, and extract capabilities for the
// extract command. The returned cleanup closes the fetcher.
func (m *Main) buildPipeline(ctx context.Context, cmd *ExtractCmd, stderr io.Writer) (*batch.Pipeline, func(), error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	var fetcher skimmer.Fetcher
	cleanup := func() {}
	if cmd.Browser {
		rodFetcher, err := rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = rodFetcher
		cleanup = func() { _ = rodFetcher.Close() }
	} else {
		fetcher = skimhttp.NewFetcher()
	}

	tokenCounter, err := skimgenai.NewTokenCounter(skimgenai.Model)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create token counter: %w", err)
	}

	return &batch.Pipeline{
		Fetcher:         fetcher,
		Cleaner:         NewCleaner(cmd.Cleaner),
		Converter:       htmltomarkdown.NewConverter(),
		Extractor:       skimgenai.NewExtractor(client),
		TokenCounter:    tokenCounter,
		Concurrency:     cmd.Concurrency,
		Timeout:         cmd.Timeout,
		MaxContentBytes: cmd.MaxBytes,
	}, cleanup, nil
}

// NewCleaner selects the boilerplate removal strategy by name. Trafilatura
// is the default; goquery is the lightweight selector-based alternative.
func NewCleaner(name string) skimmer.Cleaner {
	if name == "goquery" {
		return goquery.NewCleaner()
	}
	return trafilatura.NewCleaner()
}

func defaultDBPath() string {
	if path := os.Getenv("SKIMMER_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "skimmer.db"
	}
	dir := filepath.Join(home, ".skimmer")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "skimmer.db")
}
