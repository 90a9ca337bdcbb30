package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Argha713/mcp-pipeline-server/internal/logsink"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// Handle routes one inbound message. It returns nil for notifications
// (spec.md §8 invariant 2: "zero responses are emitted"), and otherwise
// exactly one Response carrying the same id.
func (d *Dispatcher) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	if req.IsNotification() {
		d.handleNotification(req)
		return nil
	}
	return d.handleRequest(ctx, req)
}

func (d *Dispatcher) handleNotification(req *protocol.Request) {
	// notifications/initialized carries no required action beyond having
	// been the client's side of the handshake; any other unrecognized
	// notification is silently ignored per JSON-RPC semantics (no id, no
	// response, and no "method not found" for notifications).
	_ = req
}

func (d *Dispatcher) handleRequest(ctx context.Context, req *protocol.Request) *protocol.Response {
	if d.state.Load() == Uninitialized && !exemptMethods[req.Method] {
		return protocol.NewError(req.ID, protocol.CodeInvalidRequest,
			"Server not initialized. Send 'initialize' request first.")
	}

	switch req.Method {
	case "initialize":
		return d.handleInitialize(req)
	case "ping":
		return protocol.NewResult(req.ID, json.RawMessage(`{}`))
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, req)
	case "resources/list":
		return d.handleResourcesList(req)
	case "resources/read":
		return d.handleResourcesRead(req)
	case "prompts/list":
		return d.handlePromptsList(req)
	case "prompts/get":
		return d.handlePromptsGet(req)
	case "logging/setLevel":
		return d.handleSetLevel(req)
	default:
		return protocol.NewError(req.ID, protocol.CodeMethodNotFound, "method not found: "+req.Method)
	}
}

func (d *Dispatcher) handleInitialize(req *protocol.Request) *protocol.Response {
	var params protocol.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return protocol.NewError(req.ID, protocol.CodeInvalidParams, "malformed initialize params: "+err.Error())
		}
	}

	d.state.Store(Initialized)

	result := protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		ServerInfo:      d.serverInfo,
		Capabilities: protocol.ServerCapabilities{
			Tools:     &protocol.ToolsCapability{ListChanged: false},
			Resources: &protocol.ResourcesCapability{Subscribe: false, ListChanged: false},
			Prompts:   &protocol.PromptsCapability{ListChanged: false},
			Logging:   &struct{}{},
		},
	}
	return resultResponse(req.ID, result)
}

func (d *Dispatcher) handleToolsList(req *protocol.Request) *protocol.Response {
	return resultResponse(req.ID, map[string]any{"tools": d.tools.List()})
}

func (d *Dispatcher) handleResourcesList(req *protocol.Request) *protocol.Response {
	items, err := d.resources.List()
	if err != nil {
		return protocol.NewError(req.ID, protocol.CodeInternalError, err.Error())
	}
	return resultResponse(req.ID, map[string]any{"resources": items})
}

func (d *Dispatcher) handleResourcesRead(req *protocol.Request) *protocol.Response {
	var params protocol.ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, "missing or malformed \"uri\"")
	}

	contents, err := d.resources.Read(params.URI)
	if err != nil {
		return protocol.NewError(req.ID, mapResourceErrorCode(err), err.Error())
	}
	return resultResponse(req.ID, map[string]any{"contents": []protocol.ResourceContents{contents}})
}

func (d *Dispatcher) handlePromptsList(req *protocol.Request) *protocol.Response {
	items, err := d.prompts.List()
	if err != nil {
		return protocol.NewError(req.ID, protocol.CodeInternalError, err.Error())
	}
	return resultResponse(req.ID, map[string]any{"prompts": items})
}

func (d *Dispatcher) handlePromptsGet(req *protocol.Request) *protocol.Response {
	var params protocol.GetPromptParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, "missing or malformed \"name\"")
	}

	result, err := d.prompts.Get(params.Name, params.Arguments)
	if err != nil {
		return protocol.NewError(req.ID, mapPromptErrorCode(err), err.Error())
	}
	return resultResponse(req.ID, result)
}

func (d *Dispatcher) handleSetLevel(req *protocol.Request) *protocol.Response {
	var params protocol.SetLevelParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, "malformed logging/setLevel params")
	}
	level, ok := logsink.ParseLevel(params.Level)
	if !ok {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, "invalid log level: "+params.Level)
	}
	d.logSink.SetLevel(level)
	return protocol.NewResult(req.ID, json.RawMessage(`{}`))
}

func resultResponse(id json.RawMessage, result any) *protocol.Response {
	data, err := json.Marshal(result)
	if err != nil {
		return protocol.NewError(id, protocol.CodeInternalError, fmt.Sprintf("marshal result: %v", err))
	}
	return protocol.NewResult(id, data)
}
