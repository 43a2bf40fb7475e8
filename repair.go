package skimmer

import (
	"encoding/json"
	"strings"
)

// RepairJSON applies a bounded set of textual fixups to near-valid JSON
// produced by a language model: markdown code fences are stripped, prose
// before the first brace and after the last brace is dropped, unescaped
// quotes inside string values are escaped, and trailing commas before
// closing braces/brackets are removed. It is deliberately not a
// general-purpose parser; input it cannot fix is returned as-is and will
// fail the subsequent parse.
func RepairJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripCodeFence(s)
	s = sliceToBraces(s)
	s = escapeInteriorQuotes(s)
	s = stripTrailingCommas(s)
	return s
}

// ParseFields parses the extraction capability's raw response into a field
// mapping, tolerating near-valid JSON via RepairJSON. Keys not declared in
// the schema are dropped, enforcing the schema as a strict output contract.
//
// If both the direct parse and the repaired parse fail, ParseFields returns
// an EPARSE error carrying the raw response text in its detail.
func ParseFields(raw string, schema Schema) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		repaired := RepairJSON(raw)
		if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
			return nil, &Error{
				Code:    EPARSE,
				Message: "could not parse extraction response as JSON",
				Detail:  raw,
			}
		}
	}

	for key := range fields {
		if !schema.Contains(key) {
			delete(fields, key)
		}
	}
	return fields, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := strings.TrimPrefix(s, "```")
	// Drop the language tag line ("json", "JSON", ...) if present.
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}[]") {
			body = body[idx+1:]
		}
	}

	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// sliceToBraces cuts leading and trailing prose around the outermost JSON
// object.
func sliceToBraces(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// escapeInteriorQuotes escapes unescaped double quotes inside string values.
// A quote closes a string only when the next non-space byte is a structural
// delimiter (colon, comma, closing brace/bracket) or the end of input; any
// other unescaped quote is treated as literal content. Valid JSON passes
// through unchanged because every valid string ends at a delimiter.
func escapeInteriorQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case escaped:
			escaped = false
			b.WriteByte(c)
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			if stringEndsAt(s, i+1) {
				inString = false
				b.WriteByte(c)
			} else {
				b.WriteString(`\"`)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// stringEndsAt reports whether the bytes from i look like what follows a
// closing quote: only whitespace up to a structural delimiter or the end of
// input.
func stringEndsAt(s string, i int) bool {
	for ; i < len(s); i++ {
		if isJSONSpace(s[i]) {
			continue
		}
		switch s[i] {
		case ':', ',', '}', ']':
			return true
		}
		return false
	}
	return true
}

// stripTrailingCommas removes commas that directly precede a closing brace
// or bracket, outside of string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			b.WriteByte(c)
		case ',':
			j := i + 1
			for j < len(s) && isJSONSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the trailing comma
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
