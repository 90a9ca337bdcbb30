// Package tools implements the concrete Tool capability and the built-in
// tool registry (spec.md's supplemented minimal tool set): datetime,
// text_transform, environment, system_info.
package tools

import (
	"context"
	"encoding/json"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// Tool is the capability set of one invocable tool (spec.md §8 "capability
// polymorphism": {Name, Description, Schema, Execute}).
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, args dynamic.Map, reporter progress.Reporter) (protocol.ToolCallResult, error)
}

// Registry holds the set of tools this server exposes, keyed by exact
// name (spec.md §4.H step 2: "look up tool by exact name").
type Registry struct {
	byName map[string]Tool
	order  []string // registration order, for deterministic tools/list
}

// NewRegistry builds a Registry over the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.byName[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

// Lookup returns the tool registered under the exact name, if any.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// List returns every tool's descriptor, in registration order.
func (r *Registry) List() []protocol.ToolDescriptor {
	out := make([]protocol.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.byName[name]
		out = append(out, protocol.ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		})
	}
	return out
}
