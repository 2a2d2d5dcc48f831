// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// There is no ORM here — jobs live in an in-memory registry, not a
// database — so these are pure data containers plus the request/response
// DTOs for the API.
//
// JSON tags (e.g., `json:"jobId"`) control how struct fields are
// serialized. The billing schema keys (Name, MemberID, ...) stay
// capitalized on the wire because the downstream spreadsheet tooling
// matches them case-sensitively — do not "fix" them to snake_case.
package models

import "time"

// JobStatus represents the lifecycle state of an extraction job.
// Go Pattern: We use string constants instead of enums (Go doesn't have enums).
// This is a common pattern — define a type alias and named constants.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusError     JobStatus = "error"
)

// UnifiedRow is the canonical nine-field record for one billing entry.
//
// Every field is optional. Pointer fields marshal as JSON null when the
// document (or the extraction oracle) had nothing for them — clients
// rely on every key being present, null included, so none of these tags
// carry omitempty. Values are literal text reproduced from the document;
// the oracle is instructed never to invent them.
type UnifiedRow struct {
	Name          *string `json:"Name"`
	MemberID      *string `json:"MemberID"`
	T1023AuthId   *string `json:"T1023AuthId"`
	T1023Range    *string `json:"T1023Range"`
	T1023BillDate *string `json:"T1023BillDate"`
	H0044AuthId   *string `json:"H0044AuthId"`
	H0044Range    *string `json:"H0044Range"`
	H0044BillDate *string `json:"H0044BillDate"`
	Paid          *string `json:"Paid"`
}

// IsEmpty reports whether every field of the row is absent. Rows that
// validate but carry no data at all are dropped from job results.
func (r UnifiedRow) IsEmpty() bool {
	return r.Name == nil &&
		r.MemberID == nil &&
		r.T1023AuthId == nil &&
		r.T1023Range == nil &&
		r.T1023BillDate == nil &&
		r.H0044AuthId == nil &&
		r.H0044Range == nil &&
		r.H0044BillDate == nil &&
		r.Paid == nil
}

// Job tracks one asynchronous extraction request.
//
// Lifecycle: created pending, then exactly one terminal write — either
// completed with rows or error with a reason. The registry evicts the
// job a fixed retention window after CreatedAt regardless of state.
// Nothing is persisted; a process restart forgets every job.
type Job struct {
	ID        string       `json:"id"`
	Status    JobStatus    `json:"status"`
	Data      []UnifiedRow `json:"data,omitempty"`
	Error     string       `json:"error,omitempty"` // omitempty = skip if empty
	CreatedAt time.Time    `json:"created_at"`
}

// --- Response DTOs (Data Transfer Objects) ---
// Go Pattern: Separate structs per response shape instead of ad hoc maps.
// The `status` field is deliberately mixed-typed across the API — boolean
// on acceptance/success, string on pending/error. That is the wire
// contract the existing frontend depends on, reproduced field for field.

// LivenessResponse is the body of GET /.
type LivenessResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// DebugResponse is the body of GET /debug. It reports which extraction
// oracle this build talks to, so a misconfigured deploy is obvious.
type DebugResponse struct {
	Status       bool   `json:"status"`
	OracleClient string `json:"oracleClient"`
	Model        string `json:"model"`
	ActiveJobs   int    `json:"activeJobs"`
}

// AcceptedResponse is the 202 body of POST /extract.
type AcceptedResponse struct {
	Status  bool   `json:"status"`
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// UploadErrorResponse is the envelope for rejected uploads. Data is
// always an empty array, never null — build it with NewUploadError so
// the slice is non-nil.
type UploadErrorResponse struct {
	Status bool         `json:"status"`
	Data   []UnifiedRow `json:"data"`
	Error  string       `json:"error"`
}

// NewUploadError builds the rejection envelope with its fixed shape.
func NewUploadError(msg string) UploadErrorResponse {
	return UploadErrorResponse{
		Status: false,
		Data:   []UnifiedRow{},
		Error:  msg,
	}
}

// PendingResponse is returned by GET /status/:jobId while the job runs.
type PendingResponse struct {
	Status JobStatus `json:"status"`
}

// CompletedResponse carries the extracted rows of a finished job.
type CompletedResponse struct {
	Status bool         `json:"status"`
	Data   []UnifiedRow `json:"data"`
}

// JobErrorResponse carries the failure reason of an errored job.
type JobErrorResponse struct {
	Status JobStatus `json:"status"`
	Error  string    `json:"error"`
}

// NotFoundResponse is the 404 body for unknown or already-evicted job ids.
type NotFoundResponse struct {
	Error string `json:"error"`
}
