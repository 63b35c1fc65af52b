package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// accepted layouts, most specific first
var flexTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FlexTime is a time that can be unmarshaled from RFC3339, a date-time without zone or a plain date.
// Empty strings and null decode to the zero value.
type FlexTime struct {
	time.Time
}

// ParseFlexTime parses s with the FlexTime layouts. Dates without a zone are read as UTC.
func ParseFlexTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range flexTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		f.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexTime: expected a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		f.Time = time.Time{}
		return nil
	}

	t, err := ParseFlexTime(s)
	if err != nil {
		return fmt.Errorf("FlexTime: %w", err)
	}
	f.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.Format(time.RFC3339))
}

// Ptr returns nil for the zero time, otherwise a pointer to the time
func (f FlexTime) Ptr() *time.Time {
	if f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}
