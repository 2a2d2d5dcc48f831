package oracle

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
)

// rowSchema validates one oracle row: every field optional, each value
// a string or null, no keys outside the nine. The oracle is not
// guaranteed to honor its contract, so nothing skips this check.
var rowSchema = jsonschema.MustCompileString("unified_row.json", `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"Name":          {"type": ["string", "null"]},
		"MemberID":      {"type": ["string", "null"]},
		"T1023AuthId":   {"type": ["string", "null"]},
		"T1023Range":    {"type": ["string", "null"]},
		"T1023BillDate": {"type": ["string", "null"]},
		"H0044AuthId":   {"type": ["string", "null"]},
		"H0044Range":    {"type": ["string", "null"]},
		"H0044BillDate": {"type": ["string", "null"]},
		"Paid":          {"type": ["string", "null"]}
	}
}`)

// parseRows pulls the rows array out of the oracle's reply. The reply
// must be a single JSON object with a "rows" key; anything else is a
// hard failure for the job.
func parseRows(content string) ([]json.RawMessage, error) {
	var envelope struct {
		Rows *[]json.RawMessage `json:"rows"`
	}

	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		// Models sometimes wrap the object in markdown fences despite
		// response_format. Try the first balanced {...} before giving up.
		salvaged := extractJSONObject(content)
		if salvaged == "" {
			return nil, fmt.Errorf("oracle response is not valid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(salvaged), &envelope); err != nil {
			return nil, fmt.Errorf("oracle response is not valid JSON: %w", err)
		}
	}

	if envelope.Rows == nil {
		return nil, fmt.Errorf("oracle response missing rows array")
	}
	return *envelope.Rows, nil
}

// extractJSONObject returns the first balanced {...} in the content, or
// "" if there is none.
func extractJSONObject(content string) string {
	start, braces := -1, 0
	for i, c := range content {
		switch c {
		case '{':
			if braces == 0 {
				start = i
			}
			braces++
		case '}':
			if braces == 0 {
				continue
			}
			braces--
			if braces == 0 && start >= 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

// normalizeRows validates every returned row and drops the ones that
// end up entirely empty. The result slice is never nil — a completed
// job serializes its data as [], not null.
func normalizeRows(raw []json.RawMessage) []models.UnifiedRow {
	rows := make([]models.UnifiedRow, 0, len(raw))
	for i, r := range raw {
		row := normalizeRow(i, r)
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// normalizeRow turns one raw oracle row into a UnifiedRow. A row that
// fails validation is blanked rather than fatal — one malformed row
// must not cost the client the whole document.
func normalizeRow(i int, raw json.RawMessage) models.UnifiedRow {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("⚠️ Row %d is not valid JSON, blanking it: %v", i, err)
		return models.UnifiedRow{}
	}

	if err := rowSchema.Validate(v); err != nil {
		log.Printf("⚠️ Row %d failed schema validation, blanking it: %v", i, err)
		return models.UnifiedRow{}
	}

	var row models.UnifiedRow
	if err := json.Unmarshal(raw, &row); err != nil {
		log.Printf("⚠️ Row %d could not be decoded, blanking it: %v", i, err)
		return models.UnifiedRow{}
	}
	return row
}
