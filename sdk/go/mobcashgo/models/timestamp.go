package models

import (
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are tried in order when decoding a Timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// Timestamp is a server date. Values in a layout it does not know are kept
// verbatim in Raw so one odd row does not fail the whole page.
type Timestamp struct {
	time.Time
	Raw string
}

// UnmarshalJSON accepts null, the layouts above, and anything else as Raw.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = Timestamp{}
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Raw = string(b)
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Raw = s
	return nil
}

// MarshalJSON writes RFC 3339, the raw text, or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case !t.Time.IsZero():
		return json.Marshal(t.Time.Format(time.RFC3339Nano))
	case t.Raw != "":
		return json.Marshal(t.Raw)
	default:
		return []byte("null"), nil
	}
}

// Display formats the date in local time with layout, falls back to the raw
// text, and returns "-" when there is no date at all.
func (t Timestamp) Display(layout string) string {
	switch {
	case !t.Time.IsZero():
		return t.Time.Local().Format(layout)
	case t.Raw != "":
		return t.Raw
	default:
		return "-"
	}
}
