package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// EnvironmentTool reads process environment variables. Only variables
// whose name is present in allowlist are ever visible — a request for any
// other name gets a "not allowlisted" error result, so a misconfigured
// allowlist fails closed rather than leaking the full process environment.
type EnvironmentTool struct {
	allowlist map[string]struct{}
}

// NewEnvironmentTool builds an EnvironmentTool restricted to the given
// variable names.
func NewEnvironmentTool(allowedNames []string) *EnvironmentTool {
	allow := make(map[string]struct{}, len(allowedNames))
	for _, n := range allowedNames {
		allow[n] = struct{}{}
	}
	return &EnvironmentTool{allowlist: allow}
}

func (t *EnvironmentTool) Name() string { return "environment" }
func (t *EnvironmentTool) Description() string {
	return "Reads allowlisted process environment variables."
}

func (t *EnvironmentTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "variable name; omit to list all allowlisted names"}
		}
	}`)
}

func (t *EnvironmentTool) Execute(ctx context.Context, args dynamic.Map, reporter progress.Reporter) (protocol.ToolCallResult, error) {
	reporter.Report(1)

	if name := args["name"].String(); name != "" {
		if _, ok := t.allowlist[name]; !ok {
			return protocol.TextResult(fmt.Sprintf("variable %q is not allowlisted", name), true), nil
		}
		val, ok := os.LookupEnv(name)
		if !ok {
			return protocol.TextResult(fmt.Sprintf("variable %q is not set", name), true), nil
		}
		return protocol.TextResult(val, false), nil
	}

	names := make([]string, 0, len(t.allowlist))
	for n := range t.allowlist {
		names = append(names, n)
	}
	sort.Strings(names)
	return protocol.TextResult(strings.Join(names, "\n"), false), nil
}
