package protocol

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is the wire format for timestamps, millisecond precision
// with a comma separator and an explicit UTC suffix.
const timeLayout = "2006-01-02T15:04:05,000"

// Timestamp is a time.Time that marshals to the wire timestamp format.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to millisecond precision in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Millisecond)}
}

// MarshalJSON renders the timestamp as "YYYY-MM-DDTHH:mm:ss,SSSZ".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(timeLayout) + `Z"`), nil
}

// UnmarshalJSON parses the wire timestamp format.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	s = strings.TrimSuffix(s, "Z")
	parsed, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
