package analytics

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/nodalcv/server/pkg/nlp"
)

type EventType string

const (
	EventView     EventType = "view"
	EventKeywords EventType = "keywords"
)

// Event is one visit or keyword hit on a public profile.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Keyword   string    `json:"keyword,omitempty"`
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// NormalizeEvents reads the event list out of a collaborator payload: a bare
// array, or an array under "data", "events" or "items". Entries with an
// unknown type or no usable timestamp are dropped.
func NormalizeEvents(raw any) []Event {
	if b, ok := raw.([]byte); ok {
		var v any
		if json.Unmarshal(b, &v) != nil {
			return []Event{}
		}
		raw = v
	}
	list, _ := raw.([]any)
	if m, ok := raw.(map[string]any); ok {
		for _, k := range []string{"data", "events", "items"} {
			if arr, ok := m[k].([]any); ok {
				list = arr
				break
			}
		}
	}
	out := make([]Event, 0, len(list))
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		ev := Event{Type: EventType(strings.ToLower(strings.TrimSpace(text(m["type"]))))}
		if ev.Type != EventView && ev.Type != EventKeywords {
			continue
		}
		ts, ok := parseTime(m["timestamp"])
		if !ok {
			continue
		}
		ev.Timestamp = ts
		if ev.Type == EventKeywords {
			ev.Keyword = strings.TrimSpace(text(m["keyword"]))
			if ev.Keyword == "" {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// parseTime accepts the layouts above and unix timestamps in seconds or
// milliseconds.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromUnix(n)
		}
	case float64:
		return fromUnix(t)
	}
	return time.Time{}, false
}

func fromUnix(n float64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Unix(int64(n), 0).UTC(), true
}

// keywordKey groups spellings of the same keyword.
func keywordKey(k string) string { return nlp.NormalizeText(k) }
