// Package rowfilter decides which extracted lines plausibly belong to
// the billing table.
//
// Billing report PDFs carry a lot of non-table text: cover sheets,
// legends, overdue lists, month section banners. Sending all of it to
// the extraction oracle wastes tokens and invites hallucinated rows, so
// this package walks the lines once and keeps only the table header and
// the lines that look like data rows.
//
// The heuristics are inherently fuzzy, which is why classification is a
// pure function over (line, state): it can be unit-tested exhaustively
// without any HTTP or job machinery around it. The driver, Filter, is a
// thin loop over Classify.
package rowfilter

import (
	"regexp"
	"strings"
)

// Action is the classifier's verdict for one line.
type Action int

const (
	// ActionStop ends the pass. The table is over; the open row (if
	// any) is flushed and every later line is excluded.
	ActionStop Action = iota
	// ActionHeader keeps the line in the header list, which is
	// prefixed to the filtered output. Header lines never join a row.
	ActionHeader
	// ActionStartIndex opens a new row from a digits-only line (the
	// printed row number), flushing any row already open.
	ActionStartIndex
	// ActionAppend adds the line to the currently open row. Rows whose
	// columns print as separate physical lines are stitched back here.
	ActionAppend
	// ActionStart opens a new row from a line that looks like data.
	ActionStart
	// ActionSkip drops the line.
	ActionSkip
)

// State is the classifier's only memory: whether a logical row is open.
type State struct {
	RowOpen bool
}

// stopMarkers end the table when the upper-cased line contains any of
// them. The phrases come from the trailer sections these reports print
// after the table (overdue lists, intake queues) plus the month banners
// that head each section. Matching is plain substring containment.
var stopMarkers = []string{
	"OVERDUE",
	"DUE CM",
	"ALL INTAKE",
	"NEEDS H0044",
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// headerMarkers identify the table header. Header lines are always
// retained even though they would fail the data-row heuristics.
var headerMarkers = []string{"NAME", "T1023", "H0044"}

var (
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	// A date range like 4/1-6/30 or 09/01/24 - 12/31/24.
	dateRangeRe = regexp.MustCompile(`\d{1,2}/\d{1,2}(/\d{2,4})?\s*-\s*\d{1,2}/\d{1,2}(/\d{2,4})?`)
	// A run of 5+ alphanumerics — member ids and auth numbers.
	idRunRe = regexp.MustCompile(`[A-Za-z0-9]{5,}`)
)

// Classify is the single-line decision function. Rules are checked in
// precedence order: stop, header, row index, append, row start, skip.
// The order matters — "NEEDS H0044" must stop the pass before the
// header rule sees its "H0044", and headers must not be swallowed into
// an open row.
func Classify(line string, st State) (Action, State) {
	upper := strings.ToUpper(line)

	for _, marker := range stopMarkers {
		if strings.Contains(upper, marker) {
			return ActionStop, State{}
		}
	}

	for _, marker := range headerMarkers {
		if strings.Contains(upper, marker) {
			return ActionHeader, st
		}
	}

	if digitsOnlyRe.MatchString(line) {
		return ActionStartIndex, State{RowOpen: true}
	}

	if st.RowOpen {
		return ActionAppend, st
	}

	if startsRow(line) {
		return ActionStart, State{RowOpen: true}
	}

	return ActionSkip, st
}

// startsRow reports whether a line looks like the beginning of a data
// row: a comma (surname, forename), a date range, or an id-length
// alphanumeric run.
func startsRow(line string) bool {
	return strings.Contains(line, ",") ||
		dateRangeRe.MatchString(line) ||
		idRunRe.MatchString(line)
}

// Filter runs the classifier over the whole line sequence and returns
// the header lines followed by the reconstructed data rows.
//
// Fail-open: if the heuristics keep nothing from a non-empty input, the
// original lines are returned unfiltered. An over-inclusive prompt still
// lets the oracle find the table; an empty one guarantees failure.
func Filter(lines []string) []string {
	var headers, rows []string
	var current []string
	st := State{}

	flush := func() {
		if len(current) > 0 {
			rows = append(rows, strings.Join(current, " "))
			current = nil
		}
	}

loop:
	for _, line := range lines {
		action, next := Classify(line, st)
		st = next

		switch action {
		case ActionStop:
			flush()
			break loop
		case ActionHeader:
			headers = append(headers, line)
		case ActionStartIndex:
			flush()
			current = []string{line}
		case ActionAppend:
			current = append(current, line)
		case ActionStart:
			current = []string{line}
		case ActionSkip:
		}
	}
	flush()

	out := make([]string, 0, len(headers)+len(rows))
	out = append(out, headers...)
	out = append(out, rows...)

	if len(out) == 0 {
		return lines
	}
	return out
}
