package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id         string
	start, end string
}

func (i item) Period() (string, string) { return i.start, i.end }

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func TestRankOrdersByEndThenStart(t *testing.T) {
	in := []item{
		{id: "old", start: "01/2010", end: "12/2012"},
		{id: "current-2019", start: "01/2019", end: "Présent"},
		{id: "undated", start: "", end: ""},
		{id: "current-2020", start: "01/2020", end: "présent"},
		{id: "mid", start: "mars 2013", end: "2016"},
	}
	got := Rank(in)
	assert.Equal(t, []string{"current-2020", "current-2019", "mid", "old", "undated"}, ids(got))
}

func TestRankIsStableForTies(t *testing.T) {
	in := []item{
		{id: "a", start: "2018", end: "2020"},
		{id: "b", start: "janv 2018", end: "01/2020"},
		{id: "c", start: "", end: "2020"},
		{id: "d", start: "01/2018", end: "2020"},
	}
	got := Rank(in)
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids(got))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []item{
		{id: "old", start: "2001", end: "2002"},
		{id: "new", start: "2020", end: "now"},
	}
	_ = Rank(in)
	assert.Equal(t, []string{"old", "new"}, ids(in))
}

func TestRankIsIdempotent(t *testing.T) {
	in := []item{
		{id: "1", start: "2015", end: "2017"},
		{id: "2", start: "06/2017", end: "current"},
		{id: "3", start: "", end: "n/a"},
		{id: "4", start: "2012", end: "2017"},
	}
	once := Rank(in)
	twice := Rank(once)
	require.Len(t, twice, len(in))
	assert.Equal(t, ids(once), ids(twice))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank([]item{}))
	assert.Empty(t, Rank[item](nil))
}
