package rowfilter

import (
	"reflect"
	"testing"
)

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		state      State
		wantAction Action
		wantOpen   bool
	}{
		{
			name:       "stop marker terminates",
			line:       "AP'S OVERDUE LIST",
			state:      State{},
			wantAction: ActionStop,
			wantOpen:   false,
		},
		{
			name:       "stop marker is case-insensitive",
			line:       "all intake summary",
			state:      State{},
			wantAction: ActionStop,
			wantOpen:   false,
		},
		{
			name:       "month banner stops the table",
			line:       "MARCH 2024",
			state:      State{},
			wantAction: ActionStop,
			wantOpen:   false,
		},
		{
			name:       "stop beats header for NEEDS H0044",
			line:       "NEEDS H0044 AUTH",
			state:      State{RowOpen: true},
			wantAction: ActionStop,
			wantOpen:   false,
		},
		{
			name:       "stop closes an open row",
			line:       "DUE CM REVIEW",
			state:      State{RowOpen: true},
			wantAction: ActionStop,
			wantOpen:   false,
		},
		{
			name:       "header by NAME",
			line:       "NAME MRN",
			state:      State{},
			wantAction: ActionHeader,
			wantOpen:   false,
		},
		{
			name:       "header leaves an open row open",
			line:       "T1023 AUTH",
			state:      State{RowOpen: true},
			wantAction: ActionHeader,
			wantOpen:   true,
		},
		{
			name:       "digits-only opens an indexed row",
			line:       "42",
			state:      State{},
			wantAction: ActionStartIndex,
			wantOpen:   true,
		},
		{
			name:       "digits-only reopens even inside a row",
			line:       "7",
			state:      State{RowOpen: true},
			wantAction: ActionStartIndex,
			wantOpen:   true,
		},
		{
			name:       "open row absorbs anything",
			line:       "x",
			state:      State{RowOpen: true},
			wantAction: ActionAppend,
			wantOpen:   true,
		},
		{
			name:       "comma starts a row",
			line:       "Alo, Benjamin",
			state:      State{},
			wantAction: ActionStart,
			wantOpen:   true,
		},
		{
			name:       "date range starts a row",
			line:       "4/1-6/30",
			state:      State{},
			wantAction: ActionStart,
			wantOpen:   true,
		},
		{
			name:       "spaced date range with years starts a row",
			line:       "09/01/24 - 12/31/24",
			state:      State{},
			wantAction: ActionStart,
			wantOpen:   true,
		},
		{
			name:       "long alphanumeric run starts a row",
			line:       "AB12C9",
			state:      State{},
			wantAction: ActionStart,
			wantOpen:   true,
		},
		{
			name:       "short words are skipped",
			line:       "a b c",
			state:      State{},
			wantAction: ActionSkip,
			wantOpen:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, next := Classify(tt.line, tt.state)
			if action != tt.wantAction {
				t.Errorf("Classify(%q) action = %v, want %v", tt.line, action, tt.wantAction)
			}
			if next.RowOpen != tt.wantOpen {
				t.Errorf("Classify(%q) RowOpen = %v, want %v", tt.line, next.RowOpen, tt.wantOpen)
			}
		})
	}
}

// Nothing at or after a stop marker may survive, and the row open at
// the time of the stop is flushed, not lost.
func TestFilterStopMarkerExcludesTail(t *testing.T) {
	lines := []string{
		"NAME MRN",
		"1 Smith, A 12345",
		"AP'S OVERDUE LIST",
		"2 Jones, B 67890",
	}

	got := Filter(lines)
	want := []string{"NAME MRN", "1 Smith, A 12345"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

// A row whose columns print as separate physical lines is stitched
// back into one logical row; a digits-only index line starts the next.
func TestFilterStitchesFragmentedRows(t *testing.T) {
	lines := []string{
		"1",
		"Smith, Alice",
		"4/1-6/30",
		"2",
		"Jones, Bob",
	}

	got := Filter(lines)
	want := []string{"1 Smith, Alice 4/1-6/30", "2 Jones, Bob"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

// Headers are collected independently and prefixed to the output, even
// when they appear mid-document, and they never join an open row.
func TestFilterHeadersPrefixedAndExclusive(t *testing.T) {
	lines := []string{
		"1",
		"Alo, Benjamin",
		"NAME MRN T1023 H0044",
		"9898293",
	}

	got := Filter(lines)
	// 9898293 is digits-only, so it opens its own indexed row.
	want := []string{"NAME MRN T1023 H0044", "1 Alo, Benjamin", "9898293"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestFilterDropsPreamble(t *testing.T) {
	lines := []string{
		"to:", // too short to be data, no comma clause
		"of 4",
		"1 Alo, Benjamin 9898293",
	}

	got := Filter(lines)
	want := []string{"1 Alo, Benjamin 9898293"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

// Fail-open: when the heuristics keep nothing from a non-empty input,
// the original lines come back unfiltered.
func TestFilterFailOpen(t *testing.T) {
	lines := []string{"hi", "ok go", "a b c"}

	got := Filter(lines)

	if !reflect.DeepEqual(got, lines) {
		t.Errorf("Filter = %v, want original input %v", got, lines)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if got := Filter(nil); len(got) != 0 {
		t.Errorf("Filter(nil) = %v, want empty", got)
	}
	if got := Filter([]string{}); len(got) != 0 {
		t.Errorf("Filter(empty) = %v, want empty", got)
	}
}

// The end-to-end fixture: a header plus one complete row line pass
// through untouched.
func TestFilterKeepsCompleteRowLine(t *testing.T) {
	lines := []string{
		"NAME MRN T1023 H0044",
		"1 Alo, Benjamin 9898293 146080416 4/1-6/30",
	}

	got := Filter(lines)

	if !reflect.DeepEqual(got, lines) {
		t.Errorf("Filter = %v, want %v", got, lines)
	}
}
