package timeline

import (
	"regexp"
	"strconv"
	"strings"
)

// DateToken is a sortable reading of a loosely formatted period string.
type DateToken struct {
	Year    int
	Month   int // 0-11
	Ongoing bool
}

// ongoingValue sorts after any 4-digit year.
const ongoingValue = 10000 * 12

var (
	// Min is returned for empty or unparsable input.
	Min = DateToken{}
	// Ongoing marks a period that is still running.
	Ongoing = DateToken{Ongoing: true}
)

var ongoingKeywords = []string{
	"présent",
	"present",
	"aujourd'hui",
	"aujourd’hui",
	"now",
	"current",
	"en poste",
	"actuel",
	"maintenant",
}

// monthNames is in calendar order; the first month with a matching variant wins.
var monthNames = [12][]string{
	{"janv", "jan"},
	{"févr", "fevr", "fév", "fev", "feb"},
	{"mars", "mar"},
	{"avr", "apr"},
	{"mai", "may"},
	{"juin", "jun"},
	{"juil", "jul"},
	{"août", "aout", "aug"},
	{"sept", "sep"},
	{"oct"},
	{"nov"},
	{"déc", "dec"},
}

var (
	reYear        = regexp.MustCompile(`\d{4}`)
	reMonthPrefix = regexp.MustCompile(`(?:^|\D)(\d{1,2})[/-]`)
)

// Value maps the token onto a single integer so tokens compare numerically.
func (t DateToken) Value() int {
	if t.Ongoing {
		return ongoingValue
	}
	return t.Year*12 + t.Month
}

// Compare returns -1, 0 or 1 when t sorts before, with or after o.
func (t DateToken) Compare(o DateToken) int {
	a, b := t.Value(), o.Value()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Parse reads a free-text date such as "03/2021", "mars 2021", "Dec. 2019"
// or "En poste". It never fails: input without a year degrades to Min.
func Parse(input string) DateToken {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Min
	}
	for _, kw := range ongoingKeywords {
		if strings.Contains(s, kw) {
			return Ongoing
		}
	}
	yearStr := reYear.FindString(s)
	if yearStr == "" {
		return Min
	}
	year, _ := strconv.Atoi(yearStr)
	return DateToken{Year: year, Month: parseMonth(s)}
}

func parseMonth(s string) int {
	if m := reMonthPrefix.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 12 {
			return n - 1
		}
	}
	for month, variants := range monthNames {
		for _, v := range variants {
			if strings.Contains(s, v) {
				return month
			}
		}
	}
	return 0
}
