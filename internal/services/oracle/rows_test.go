package oracle

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantLen int
		wantErr string
	}{
		{
			name:    "plain object with rows",
			content: `{"rows":[{"Name":"Alo, Benjamin"},{"Name":"Reyes, Maria"}]}`,
			wantLen: 2,
		},
		{
			name:    "empty rows array is a valid shape",
			content: `{"rows":[]}`,
			wantLen: 0,
		},
		{
			name:    "markdown-fenced object is salvaged",
			content: "```json\n{\"rows\":[{\"Name\":\"Alo, Benjamin\"}]}\n```",
			wantLen: 1,
		},
		{
			name:    "prose around the object is salvaged",
			content: `Here are your rows: {"rows":[]} hope that helps!`,
			wantLen: 0,
		},
		{
			name:    "missing rows key",
			content: `{"data":[]}`,
			wantErr: "missing rows array",
		},
		{
			name:    "null rows",
			content: `{"rows":null}`,
			wantErr: "missing rows array",
		},
		{
			name:    "refusal prose",
			content: "I cannot extract any table from this document.",
			wantErr: "not valid JSON",
		},
		{
			name:    "rows is not an array",
			content: `{"rows":"nope"}`,
			wantErr: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseRows(tt.content)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("parseRows(%q) succeeded, want error containing %q", tt.content, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("parseRows error = %q, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRows(%q) error: %v", tt.content, err)
			}
			if len(rows) != tt.wantLen {
				t.Errorf("parseRows returned %d rows, want %d", len(rows), tt.wantLen)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"stray close brace first", `} {"a":1}`, `{"a":1}`},
		{"no object", "nothing here", ""},
		{"unbalanced", `{"a":1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.content); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

// A row with a wrong-typed field is blanked, never propagated with the
// bad value.
func TestNormalizeRowBlanksInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"numeric MemberID", `{"Name":"Doe, Jane","MemberID":123}`},
		{"unknown key", `{"Name":"Doe, Jane","Surprise":"yes"}`},
		{"not an object", `"just a string"`},
		{"array element", `[1,2,3]`},
		{"boolean field", `{"Paid":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := normalizeRow(0, json.RawMessage(tt.raw))
			if !row.IsEmpty() {
				t.Errorf("normalizeRow(%s) = %+v, want blank row", tt.raw, row)
			}
		})
	}
}

func TestNormalizeRowKeepsValid(t *testing.T) {
	raw := json.RawMessage(`{
		"Name": "Alo, Benjamin",
		"MemberID": "9898293",
		"T1023AuthId": "146080416",
		"T1023Range": "4/1-6/30",
		"T1023BillDate": null,
		"H0044AuthId": null,
		"H0044Range": null,
		"H0044BillDate": null,
		"Paid": null
	}`)

	row := normalizeRow(0, raw)

	if row.Name == nil || *row.Name != "Alo, Benjamin" {
		t.Errorf("Name = %v, want Alo, Benjamin", row.Name)
	}
	if row.MemberID == nil || *row.MemberID != "9898293" {
		t.Errorf("MemberID = %v, want 9898293", row.MemberID)
	}
	if row.T1023BillDate != nil {
		t.Errorf("T1023BillDate = %q, want nil", *row.T1023BillDate)
	}
}

// Absent keys are not a validation failure — every field is optional.
func TestNormalizeRowPartialKeys(t *testing.T) {
	row := normalizeRow(0, json.RawMessage(`{"Name":"Smith, A"}`))

	if row.IsEmpty() {
		t.Fatal("partial row was blanked, want it kept")
	}
	if row.Name == nil || *row.Name != "Smith, A" {
		t.Errorf("Name = %v, want Smith, A", row.Name)
	}
}

func TestNormalizeRowsDropsEmpties(t *testing.T) {
	raw := []json.RawMessage{
		// One good row, one that gets blanked for a wrong type, one
		// already empty, one all-nulls. Only the first survives.
		json.RawMessage(`{"Name":"Alo, Benjamin"}`),
		json.RawMessage(`{"Name":"Doe, Jane","MemberID":123}`),
		json.RawMessage(`{}`),
		json.RawMessage(`{"Name":null,"Paid":null}`),
	}

	rows := normalizeRows(raw)

	if len(rows) != 1 {
		t.Fatalf("normalizeRows kept %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Name == nil || *rows[0].Name != "Alo, Benjamin" {
		t.Errorf("surviving row = %+v, want Alo, Benjamin", rows[0])
	}
}

func TestNormalizeRowsNeverNil(t *testing.T) {
	if rows := normalizeRows(nil); rows == nil {
		t.Error("normalizeRows(nil) returned nil, want empty slice")
	}
}
