package optimize

import (
	"strings"

	"github.com/nodalcv/server/pkg/nlp"
	"github.com/nodalcv/server/pkg/profile"
)

// Match compares the skills of a record with a job offer.
type Match struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Score   float64  `json:"score"`
}

// MatchOffer lists the record's hard skills that the offer mentions, and the
// known skills the offer asks for that the record does not list.
func MatchOffer(rec profile.Record, offer string) Match {
	text := nlp.NormalizeText(offer)
	m := Match{Matched: []string{}, Missing: []string{}}
	if text == "" {
		return m
	}

	have := map[string]struct{}{}
	for _, s := range rec.Skills.Hard {
		if strings.TrimSpace(s) == "" {
			continue
		}
		c := nlp.Canonical(s)
		if _, dup := have[c]; dup {
			continue
		}
		have[c] = struct{}{}
		if nlp.Mentions(text, s) {
			m.Matched = append(m.Matched, s)
		}
	}
	for _, s := range nlp.KnownSkills {
		if _, ok := have[nlp.Canonical(s)]; ok {
			continue
		}
		if nlp.Mentions(text, s) {
			m.Missing = append(m.Missing, s)
		}
	}
	if total := len(m.Matched) + len(m.Missing); total > 0 {
		m.Score = float64(len(m.Matched)) / float64(total)
	}
	return m
}
