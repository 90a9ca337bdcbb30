package audit

import (
	"time"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
)

// Outcome classifies how a tool invocation concluded, for the audit trail.
type Outcome string

const (
	OutcomeSuccess      Outcome = "Success"
	OutcomeFailure      Outcome = "Failure"
	OutcomeRateLimited  Outcome = "RateLimited"
	OutcomeUnauthorized Outcome = "Unauthorized"
)

// Record is one append-only audit entry (spec.md §4.F).
type Record struct {
	Timestamp     time.Time   `json:"timestamp"`
	CorrelationID string      `json:"correlationId"`
	IdentityName  string      `json:"identityName,omitempty"`
	ToolName      string      `json:"toolName"`
	Action        string      `json:"action,omitempty"`
	Arguments     dynamic.Map `json:"arguments,omitempty"`
	Outcome       Outcome     `json:"outcome"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
	DurationMs    int64       `json:"durationMs"`
}

// wireRecord is Record's on-disk JSON shape: dynamic.Map doesn't marshal
// directly to plain JSON (its Values carry Kind tags), so arguments are
// flattened to plain Go values via Value.ToAny() at serialization time.
type wireRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlationId"`
	IdentityName  string         `json:"identityName,omitempty"`
	ToolName      string         `json:"toolName"`
	Action        string         `json:"action,omitempty"`
	Arguments     map[string]any `json:"arguments,omitempty"`
	Outcome       Outcome        `json:"outcome"`
	ErrorMessage  string         `json:"errorMessage,omitempty"`
	DurationMs    int64          `json:"durationMs"`
}

func (r Record) toWire() wireRecord {
	w := wireRecord{
		Timestamp:     r.Timestamp,
		CorrelationID: r.CorrelationID,
		IdentityName:  r.IdentityName,
		ToolName:      r.ToolName,
		Action:        r.Action,
		Outcome:       r.Outcome,
		ErrorMessage:  r.ErrorMessage,
		DurationMs:    r.DurationMs,
	}
	if len(r.Arguments) > 0 {
		w.Arguments = make(map[string]any, len(r.Arguments))
		for k, v := range r.Arguments {
			w.Arguments[k] = v.ToAny()
		}
	}
	return w
}
