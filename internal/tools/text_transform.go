package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// TextTransformTool applies a named text transformation to its "text"
// argument, selected by the "action" field that also feeds the cache key
// and authorization checks (spec.md §4.D, §4.G).
type TextTransformTool struct{}

func NewTextTransformTool() *TextTransformTool { return &TextTransformTool{} }

func (t *TextTransformTool) Name() string { return "text_transform" }
func (t *TextTransformTool) Description() string {
	return "Transforms input text: uppercase, lowercase, reverse, or trim."
}

func (t *TextTransformTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["text", "action"],
		"properties": {
			"text":   {"type": "string"},
			"action": {"type": "string", "enum": ["uppercase", "lowercase", "reverse", "trim"]}
		}
	}`)
}

func (t *TextTransformTool) Execute(ctx context.Context, args dynamic.Map, reporter progress.Reporter) (protocol.ToolCallResult, error) {
	text := args["text"].String()
	action := args["action"].String()

	var out string
	switch action {
	case "uppercase":
		out = strings.ToUpper(text)
	case "lowercase":
		out = strings.ToLower(text)
	case "reverse":
		out = reverse(text)
	case "trim":
		out = strings.TrimSpace(text)
	default:
		return protocol.TextResult(fmt.Sprintf("unsupported action %q", action), true), nil
	}

	reporter.Report(1)
	return protocol.TextResult(out, false), nil
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
