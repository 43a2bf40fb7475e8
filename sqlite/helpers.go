package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// parseRFC3339 converts a stored timestamp column back to time.Time.
// Timestamps are persisted as RFC3339 text, so a parse failure means the
// column was written outside this package.
func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s column: %w", column, err)
	}
	return t, nil
}

// appendPagination appends LIMIT/OFFSET clauses for positive values. SQLite
// accepts OFFSET only after a LIMIT clause, so an offset without an explicit
// limit gets LIMIT -1 (unbounded).
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit <= 0 && offset <= 0 {
		return
	}
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
