package scores

import (
	"strings"
	"time"
)

// espnLayouts covers full RFC3339 and the seconds-less "YYYY-MM-DDThh:mmZ"
// form some ESPN scoreboards return.
var espnLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// ESPNTime is a time.Time that tolerates both ESPN timestamp layouts. A value
// in neither layout decodes as the zero time instead of failing the payload;
// the start time is informational.
type ESPNTime struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *ESPNTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	for _, layout := range espnLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}
