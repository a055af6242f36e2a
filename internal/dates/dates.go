// Package dates formats and orders the ISO dates carried by bills.
package dates

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// InvalidDate is shown in place of a date that cannot be parsed.
const InvalidDate = "Date invalide"

// months holds the French short month names, capitalised and cut to three
// letters ("janv." → "Jan", "févr." → "Fév").
var months = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

var layouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Parse reads an ISO date or timestamp.
func Parse(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate turns "2021-01-04" into "4 Jan. 21". Input that does not parse
// yields InvalidDate.
func FormatDate(iso string) string {
	t, ok := Parse(iso)
	if !ok {
		return InvalidDate
	}
	yy := strconv.Itoa(t.Year() % 100)
	if len(yy) == 1 {
		yy = "0" + yy
	}
	return strconv.Itoa(t.Day()) + " " + months[t.Month()-1] + ". " + yy
}

// Compare orders two ISO dates latest first. It returns a negative number
// when a must come before b. Unparsable dates go after every valid one and
// compare equal among themselves.
func Compare(a, b string) int {
	ta, okA := Parse(a)
	tb, okB := Parse(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return tb.Compare(ta)
}

// SortDescending sorts items latest first by the ISO date returned by iso.
// Items with equal dates keep their relative order.
func SortDescending[T any](items []T, iso func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(iso(a), iso(b))
	})
}
