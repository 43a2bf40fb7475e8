package skimmer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormatOutcome formats one outcome for display. Successful outcomes list
// extracted fields in sorted order with complex values rendered as JSON;
// failed outcomes show the error code and message.
func FormatOutcome(o *Outcome) string {
	var b strings.Builder

	header := o.Title
	if header == "" {
		header = o.URL
	}
	fmt.Fprintf(&b, "## %s\n", header)

	if o.Failed() {
		fmt.Fprintf(&b, "error (%s): %s\n", ErrorCode(o.Err), ErrorMessage(o.Err))
		return b.String()
	}

	keys := make([]string, 0, len(o.Fields))
	for key := range o.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, formatValue(o.Fields[key]))
	}
	if o.Truncated {
		b.WriteString("(content was truncated before extraction)\n")
	}
	return b.String()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool, float64:
		return fmt.Sprintf("%v", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
