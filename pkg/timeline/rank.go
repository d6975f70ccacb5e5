package timeline

import "slices"

// Entry is anything carrying a free-text start and end period.
type Entry interface {
	Period() (start, end string)
}

// Rank returns entries most recent first: by end date, then by start date,
// both descending. Ties keep their input order. The input is not modified.
func Rank[E Entry](entries []E) []E {
	type keyed struct {
		entry      E
		start, end DateToken
	}
	ks := make([]keyed, len(entries))
	for i, e := range entries {
		start, end := e.Period()
		ks[i] = keyed{entry: e, start: Parse(start), end: Parse(end)}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		if c := b.end.Compare(a.end); c != 0 {
			return c
		}
		return b.start.Compare(a.start)
	})
	out := make([]E, len(ks))
	for i, k := range ks {
		out[i] = k.entry
	}
	return out
}
