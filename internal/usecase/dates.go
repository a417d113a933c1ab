package usecase

import (
	"strings"
	"time"
)

// dateSeparators are the separators seen on printed packaging
var dateSeparators = []string{"/", "-", "."}

// numericDateLayouts are tried when reparsing a printed date, after
// separators have been normalized to "/". Order matters only for
// which interpretations exist, not for preference: ParsePrintedDates
// returns every distinct calendar date the text can mean.
var numericDateLayouts = []string{
	"02/01/2006", // day-month-year
	"01/02/2006", // month-day-year
	"02/01/06",
	"01/02/06",
	"01/2006", // month-year (common on blister packs)
	"01/06",
	"02 Jan 2006",
	"Jan 02 2006",
	"Jan 2006",
	"Jan/06",
	"Jan/2006",
}

// DateVariants expands a calendar date into every textual rendering it
// may take on printed packaging: day-month-year and month-day-year
// orders, 2- and 4-digit years, "/", "-" and "." separators,
// abbreviated month names, and month-year-only forms. The result is
// deduplicated; order is not significant.
func DateVariants(d time.Time) []string {
	day := d.Format("02")
	month := d.Format("01")
	monthNoPad := d.Format("1")
	year4 := d.Format("2006")
	year2 := d.Format("06")
	monthName := d.Format("Jan")

	seen := make(map[string]bool)
	var variants []string
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	for _, sep := range dateSeparators {
		// Full dates in both field orders
		add(day + sep + month + sep + year4)
		add(day + sep + month + sep + year2)
		add(month + sep + day + sep + year4)
		add(month + sep + day + sep + year2)
		// Month-year only: expiry is usually printed without a day
		add(month + sep + year4)
		add(month + sep + year2)
		add(monthNoPad + sep + year2)
	}

	// Abbreviated month-name forms
	add(day + " " + monthName + " " + year4)
	add(monthName + " " + day + " " + year4)
	add(monthName + " " + year4)
	add(monthName + "-" + year2)
	add(monthName + "-" + year4)

	return variants
}

// ParsePrintedDates parses a printed date string and returns every
// distinct calendar date it can denote. Ambiguous numeric dates like
// "03/04/2026" yield both the day-month and month-day readings;
// month-year-only forms resolve to the first of the month. Returns nil
// when the text is not a recognizable date.
func ParsePrintedDates(s string) []time.Time {
	normalized := strings.TrimSpace(s)
	normalized = strings.ReplaceAll(normalized, "-", "/")
	normalized = strings.ReplaceAll(normalized, ".", "/")

	seen := make(map[string]bool)
	var dates []time.Time
	for _, layout := range numericDateLayouts {
		parsed, err := time.Parse(layout, normalized)
		if err != nil {
			continue
		}
		key := parsed.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			dates = append(dates, parsed)
		}
	}

	return dates
}

// sameCalendarDate reports whether two times fall on the same calendar
// day, ignoring time-of-day and zone.
func sameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sameMonth reports whether two times fall in the same calendar month.
func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
