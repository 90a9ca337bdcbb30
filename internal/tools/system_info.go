package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// SystemInfoTool reports static process/runtime facts: OS, architecture,
// Go version, and CPU count.
type SystemInfoTool struct{}

func NewSystemInfoTool() *SystemInfoTool { return &SystemInfoTool{} }

func (t *SystemInfoTool) Name() string        { return "system_info" }
func (t *SystemInfoTool) Description() string { return "Reports host OS, architecture, Go runtime version, and CPU count." }

func (t *SystemInfoTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *SystemInfoTool) Execute(ctx context.Context, args dynamic.Map, reporter progress.Reporter) (protocol.ToolCallResult, error) {
	reporter.Report(1)
	info := fmt.Sprintf(
		"os=%s arch=%s go=%s cpus=%d",
		runtime.GOOS, runtime.GOARCH, runtime.Version(), runtime.NumCPU(),
	)
	return protocol.TextResult(info, false), nil
}
