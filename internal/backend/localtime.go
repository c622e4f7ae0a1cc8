package backend

import (
	"bytes"
	"fmt"
	"time"
)

// LocalTimeLayout is the zone-less timestamp format used by the bank API.
const LocalTimeLayout = "2006-01-02T15:04:05"

var localTimeLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LocalTime is a wall clock timestamp without a zone.
type LocalTime struct {
	time.Time
}

// ParseLocalTime parses any of the timestamp shapes the API emits.
func ParseLocalTime(value string) (LocalTime, error) {
	for _, layout := range localTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("backend: invalid timestamp %q", value)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(LocalTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) || len(data) < 2 {
		*t = LocalTime{}
		return nil
	}
	raw := string(bytes.Trim(data, `"`))
	if raw == "" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := ParseLocalTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
