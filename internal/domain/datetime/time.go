// internal/domain/datetime/time.go
package datetime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the wire format of backend LocalDateTime values.
const Layout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	Layout,
	"2006-01-02T15:04",
	"2006-01-02",
}

var ErrUnparseable = fmt.Errorf("unrecognised timestamp")

// Time is a timestamp exchanged with the backend. Zone-less values are read in local time.
type Time struct {
	time.Time
}

func New(t time.Time) Time {
	return Time{Time: t}
}

// Parse accepts every layout the backend is known to emit.
func Parse(value string) (Time, error) {
	for _, layout := range parseLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("%w: %q", ErrUnparseable, value)
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(Layout))
}

// Ptr returns nil for the zero value, for optional fields.
func (t Time) Ptr() *Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
