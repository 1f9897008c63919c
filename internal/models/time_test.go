package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTimeMarshalFormat(t *testing.T) {
	ts := NewTime(time.Date(2024, 6, 1, 12, 30, 45, 123456789, time.UTC))

	b, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// microsecond precision, Z suffix, nanoseconds truncated
	want := `"2024-06-01T12:30:45.123456Z"`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestTimeMarshalNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := Time{time.Date(2024, 6, 1, 17, 0, 0, 0, loc)}

	b, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `"2024-06-01T12:00:00.000000Z"`; string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestTimeUnmarshalRoundTrip(t *testing.T) {
	var ts Time
	if err := json.Unmarshal([]byte(`"2024-06-01T12:30:45.123456Z"`), &ts); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := time.Date(2024, 6, 1, 12, 30, 45, 123456000, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts.Time, want)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{
			name: "wire format",
			in:   "2024-06-01T12:30:45.123456Z",
			want: time.Date(2024, 6, 1, 12, 30, 45, 123456000, time.UTC),
		},
		{
			name: "rfc3339 with offset",
			in:   "2024-06-01T17:30:45+05:00",
			want: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name: "seconds only",
			in:   "2024-06-01T12:30:45Z",
			want: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name: "no zone marker",
			in:   "2024-06-01T12:30:45",
			want: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name: "space separator",
			in:   "2024-06-01 12:30:45",
			want: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			in:   "  2024-06-01T12:30:45Z  ",
			want: time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{name: "garbage", in: "not-a-timestamp", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "date only", in: "2024-06-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimestamp) {
					t.Errorf("expected ErrInvalidTimestamp, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeUnmarshalRejectsNonString(t *testing.T) {
	var ts Time
	if err := json.Unmarshal([]byte(`1717244445`), &ts); err == nil {
		t.Error("expected error for numeric timestamp")
	}
}
