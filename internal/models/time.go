package models

import (
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the wire format for all timestamps: UTC ISO-8601 with
// microsecond precision and a Z suffix.
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// SupportedTimestampFormats lists formats accepted on input
var SupportedTimestampFormats = []string{
	TimeFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Time wraps time.Time to serialize in the Alertmanager wire format.
// The zero value marshals as the zero instant, not null.
type Time struct {
	time.Time
}

// NewTime converts a time.Time to a wire Time, normalized to UTC.
func NewTime(t time.Time) Time {
	return Time{t.UTC()}
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.UTC().Format(TimeFormat))), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return ErrInvalidTimestamp
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp attempts to parse a timestamp string into a UTC time.Time
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)

	for _, format := range SupportedTimestampFormats {
		if t, err := time.Parse(format, ts); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidTimestamp
}
