package skimmer

// Outcome is the result recorded for one URL in a batch. Exactly one of
// Fields or Err is populated: a success carries the extracted payload, a
// failure carries a code-tagged error (see ErrorCode for the taxonomy).
type Outcome struct {
	// URL is the input URL this outcome corresponds to.
	URL string `json:"url"`

	// Position is the URL's index in the input list. A batch result is
	// always index-aligned with its input, regardless of completion order.
	Position int `json:"position"`

	// Title is the page title, when the cleaner could determine one.
	Title string `json:"title,omitempty"`

	// Fields is the extracted payload on success. Keys are always a subset
	// of the schema's declared fields; values may be null for fields the
	// extraction capability could not identify.
	Fields map[string]any `json:"fields,omitempty"`

	// Truncated records that the normalized document exceeded the size
	// ceiling and was cut before extraction.
	Truncated bool `json:"truncated,omitempty"`

	// ContentHash is the hash of the normalized document, for diagnosis
	// and change detection across runs.
	ContentHash string `json:"contentHash,omitempty"`

	// Tokens is the approximate token count of the normalized document,
	// when a token counter is configured.
	Tokens int `json:"tokens,omitempty"`

	// Err is the failure that stopped this URL's processing, if any.
	Err error `json:"-"`
}

// Failed reports whether the outcome is a failure.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// CountOutcomes returns the number of successful and failed outcomes.
func CountOutcomes(outcomes []Outcome) (succeeded, failed int) {
	for i := range outcomes {
		if outcomes[i].Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}
