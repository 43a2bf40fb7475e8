// Package export writes batch outcomes to JSON or CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pjanik/skimmer"
)

// Export writes outcomes to the given path. The format is chosen by file
// extension: .json or .csv.
func Export(path string, outcomes []skimmer.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return WriteJSON(f, outcomes)
	case ".csv":
		return WriteCSV(f, outcomes)
	default:
		return skimmer.Errorf(skimmer.EINVALID, "unsupported output format %q (use .json or .csv)", filepath.Ext(path))
	}
}

// WriteJSON writes outcomes as an indented JSON array. Each element carries
// the URL, the extracted fields on success, and the error code/message on
// failure.
func WriteJSON(w io.Writer, outcomes []skimmer.Outcome) error {
	records := make([]map[string]any, 0, len(outcomes))
	for i := range outcomes {
		records = append(records, record(&outcomes[i]))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes outcomes as CSV. Columns are the sorted union of field
// names across all outcomes, plus url and error columns. Array and object
// values are flattened to JSON strings.
func WriteCSV(w io.Writer, outcomes []skimmer.Outcome) error {
	records := make([]map[string]any, 0, len(outcomes))
	keys := make(map[string]bool)
	for i := range outcomes {
		rec := record(&outcomes[i])
		records = append(records, rec)
		for key := range rec {
			keys[key] = true
		}
	}

	header := make([]string, 0, len(keys))
	for key := range keys {
		header = append(header, key)
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = cellValue(rec[key])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// record flattens one outcome into an export row.
func record(o *skimmer.Outcome) map[string]any {
	rec := make(map[string]any, len(o.Fields)+3)
	for key, value := range o.Fields {
		rec[key] = value
	}
	rec["url"] = o.URL
	if o.Failed() {
		rec["error"] = skimmer.ErrorMessage(o.Err)
		rec["error_code"] = skimmer.ErrorCode(o.Err)
	}
	if o.Truncated {
		rec["truncated"] = true
	}
	return rec
}

// cellValue renders a value for one CSV cell.
func cellValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		// Render integral numbers without a decimal point.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
