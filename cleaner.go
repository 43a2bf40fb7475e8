package skimmer

// CleanResult holds the main content of an HTML page after boilerplate
// removal.
type CleanResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Cleaner strips boilerplate from HTML pages, keeping the semantic content
// and structure markers (headings, lists, tables) the extraction step needs.
type Cleaner interface {
	// Clean processes raw HTML and returns the main content.
	Clean(html string) (*CleanResult, error)
}
