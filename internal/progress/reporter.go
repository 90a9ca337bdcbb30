// Package progress implements the per-call progress notification capability
// described in spec.md §4.C: a null (no-op) variant and a live variant
// that emits notifications/progress carrying the caller's token.
package progress

import "github.com/Argha713/mcp-pipeline-server/internal/protocol"

// Reporter is the small capability every tool invocation receives.
type Reporter interface {
	// Report emits progress with no known total.
	Report(progress float64) error
	// ReportTotal emits progress against a known total.
	ReportTotal(progress, total float64) error
}

// Writer is the minimal notification-emitting surface — satisfied by
// protocol.LineWriter.
type Writer interface {
	WriteNotification(n *protocol.Notification) error
}

// null is the silent no-op Reporter, used when the call carries no
// progress token.
type null struct{}

// Null is the shared no-op Reporter singleton.
var Null Reporter = null{}

func (null) Report(float64) error            { return nil }
func (null) ReportTotal(float64, float64) error { return nil }

// live emits notifications/progress for one tool call's progress token.
type live struct {
	token  string
	writer Writer
}

// NewLive constructs a live Reporter. Per spec.md §4.C, callers should only
// do so when the call's _meta.progressToken is a non-empty string.
func NewLive(token string, w Writer) Reporter {
	return &live{token: token, writer: w}
}

func (l *live) Report(value float64) error {
	return l.emit(value, nil)
}

func (l *live) ReportTotal(value, total float64) error {
	return l.emit(value, &total)
}

func (l *live) emit(value float64, total *float64) error {
	params := map[string]any{
		"progressToken": l.token,
		"progress":      value,
	}
	if total != nil {
		params["total"] = *total
	}
	return l.writer.WriteNotification(&protocol.Notification{
		JSONRPC: "2.0",
		Method:  "notifications/progress",
		Params:  params,
	})
}

// For constructs the reporter appropriate for a call's optional progress
// token: Null when empty, a live Reporter otherwise.
func For(token string, w Writer) Reporter {
	if token == "" {
		return Null
	}
	return NewLive(token, w)
}
