package analytics

import (
	"cmp"
	"slices"
	"time"
)

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type Summary struct {
	Views        int            `json:"views"`
	KeywordHits  int            `json:"keywordHits"`
	ViewsByDay   []DayCount     `json:"viewsByDay"`
	TopKeywords  []KeywordCount `json:"topKeywords"`
	LastViewedAt *time.Time     `json:"lastViewedAt,omitempty"`
}

// Summarize counts views per UTC day, oldest first, and the topN most
// frequent keywords. Keywords are grouped after normalization and shown with
// their first spelling; ties are broken alphabetically.
func Summarize(events []Event, topN int) Summary {
	s := Summary{ViewsByDay: []DayCount{}, TopKeywords: []KeywordCount{}}
	days := map[string]int{}
	kwCount := map[string]int{}
	kwLabel := map[string]string{}

	for _, ev := range events {
		switch ev.Type {
		case EventView:
			s.Views++
			days[ev.Timestamp.UTC().Format(time.DateOnly)]++
			if s.LastViewedAt == nil || ev.Timestamp.After(*s.LastViewedAt) {
				t := ev.Timestamp
				s.LastViewedAt = &t
			}
		case EventKeywords:
			key := keywordKey(ev.Keyword)
			if key == "" {
				continue
			}
			s.KeywordHits++
			kwCount[key]++
			if _, ok := kwLabel[key]; !ok {
				kwLabel[key] = ev.Keyword
			}
		}
	}

	for d, n := range days {
		s.ViewsByDay = append(s.ViewsByDay, DayCount{Day: d, Count: n})
	}
	slices.SortFunc(s.ViewsByDay, func(a, b DayCount) int { return cmp.Compare(a.Day, b.Day) })

	for k, n := range kwCount {
		s.TopKeywords = append(s.TopKeywords, KeywordCount{Keyword: kwLabel[k], Count: n})
	}
	slices.SortFunc(s.TopKeywords, func(a, b KeywordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Keyword, b.Keyword)
	})
	if topN > 0 && len(s.TopKeywords) > topN {
		s.TopKeywords = s.TopKeywords[:topN]
	}
	return s
}
