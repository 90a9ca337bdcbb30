package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// DateTimeTool reports the current time in a caller-chosen format and
// timezone. It reads no "action" argument: every call reports the
// current time.
type DateTimeTool struct {
	clock func() time.Time
}

// NewDateTimeTool builds a DateTimeTool using the real wall clock.
func NewDateTimeTool() *DateTimeTool {
	return &DateTimeTool{clock: time.Now}
}

func (t *DateTimeTool) Name() string        { return "datetime" }
func (t *DateTimeTool) Description() string { return "Returns the current date and time, optionally in a given timezone and layout." }

func (t *DateTimeTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"timezone": {"type": "string", "description": "IANA timezone name, e.g. America/New_York; defaults to UTC"},
			"layout":   {"type": "string", "description": "Go reference-time layout; defaults to RFC3339"}
		}
	}`)
}

func (t *DateTimeTool) Execute(ctx context.Context, args dynamic.Map, reporter progress.Reporter) (protocol.ToolCallResult, error) {
	loc := time.UTC
	if tz := args["timezone"].String(); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return protocol.TextResult(fmt.Sprintf("unknown timezone %q: %v", tz, err), true), nil
		}
		loc = l
	}

	layout := time.RFC3339
	if l := args["layout"].String(); l != "" {
		layout = l
	}

	reporter.Report(1)
	now := t.clock().In(loc)
	return protocol.TextResult(now.Format(layout), false), nil
}
