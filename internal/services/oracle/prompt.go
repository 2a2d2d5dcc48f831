package oracle

import (
	"fmt"
	"strings"
)

// systemPrompt pins the oracle's role. The data rules live in the user
// prompt next to the lines so weaker models don't lose them.
const systemPrompt = "You are a meticulous data-entry clerk. You transcribe billing report lines " +
	"into structured JSON exactly as written, without inventing, correcting, or reformatting values."

// buildPrompt constructs the extraction prompt: the target schema, the
// transcription rules, two worked examples, and the candidate lines.
//
// The examples matter more than the rules — this is few-shot prompting.
// One shows a row with only a T1023 pair (H0044 fields null), the other
// a full row with both auth/range pairs and a paid flag, so the model
// sees how pairs map when a row has one versus two.
func buildPrompt(lines []string) string {
	return fmt.Sprintf(`Extract the billing table rows from the report lines below.

**Output:** Respond with a single JSON object of this exact shape, nothing else:
{"rows": [ ... ]}

Each element of "rows" is one table row with exactly these keys:
  Name, MemberID, T1023AuthId, T1023Range, T1023BillDate, H0044AuthId, H0044Range, H0044BillDate, Paid

**Rules:**
- Every value is either a string copied literally from the lines, or null.
- Use null for any field the row does not show. NEVER invent or infer a value.
- Do not reformat dates, ids, or names. Copy them character for character.
- Leading row numbers (a bare index like "1") are not part of any field.
- When a row shows two auth/date-range pairs, the first pair is T1023 and the second is H0044. A lone pair is T1023 unless the header says otherwise.
- Ignore lines that are not table rows (titles, legends, page furniture).

**Example 1**
Lines:
NAME MRN T1023 H0044
1 Alo, Benjamin 9898293 146080416 4/1-6/30
Output:
{"rows":[{"Name":"Alo, Benjamin","MemberID":"9898293","T1023AuthId":"146080416","T1023Range":"4/1-6/30","T1023BillDate":null,"H0044AuthId":null,"H0044Range":null,"H0044BillDate":null,"Paid":null}]}

**Example 2**
Lines:
2 Reyes, Maria 4421087 887701234 7/1-9/30 9/15 990218833 7/1-9/30 9/20 YES
Output:
{"rows":[{"Name":"Reyes, Maria","MemberID":"4421087","T1023AuthId":"887701234","T1023Range":"7/1-9/30","T1023BillDate":"9/15","H0044AuthId":"990218833","H0044Range":"7/1-9/30","H0044BillDate":"9/20","Paid":"YES"}]}

**Report lines:**
%s`, strings.Join(lines, "\n"))
}
