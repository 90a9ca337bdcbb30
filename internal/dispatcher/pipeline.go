package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Argha713/mcp-pipeline-server/internal/audit"
	"github.com/Argha713/mcp-pipeline-server/internal/cache"
	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// handleToolsCall runs the full invocation pipeline of spec.md §4.H:
// parse -> lookup -> normalize -> progress -> authorize -> rate-limit ->
// cache -> invoke -> audit. Every audit write is best-effort: its failure
// is observed via telemetry and stderr diagnostics, never the response.
func (d *Dispatcher) handleToolsCall(ctx context.Context, req *protocol.Request) *protocol.Response {
	var params protocol.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, "missing or malformed \"name\"")
	}

	tool, ok := d.tools.Lookup(params.Name)
	if !ok {
		return protocol.NewError(req.ID, protocol.CodeMethodNotFound, "unknown tool: "+params.Name)
	}

	args := normalizeArguments(params.Arguments)
	action := args["action"].String()
	toolLower := strings.ToLower(params.Name)

	var token string
	if params.Meta != nil {
		token = params.Meta.ProgressToken
	}
	reporter := progress.For(token, d.progressWriter)

	correlationID := uuid.New().String()
	start := d.clock()

	ctx, authSpan := d.telemetry.StartSpan(ctx, "authorize")
	authorized, reason := d.authz.AuthorizeToolCall(d.identity, params.Name, action)
	authSpan.End()

	if !authorized {
		d.writeAudit(ctx, audit.Record{
			Timestamp:     start,
			CorrelationID: correlationID,
			IdentityName:  d.identity.Name,
			ToolName:      params.Name,
			Action:        action,
			Outcome:       audit.OutcomeUnauthorized,
			ErrorMessage:  reason,
			DurationMs:    elapsedMs(start, d.clock()),
		})
		return resultResponse(req.ID, protocol.TextResult(reason, true))
	}

	_, limitSpan := d.telemetry.StartSpan(ctx, "rate_limit")
	admitted := d.limiter.TryAcquire(toolLower)
	limitSpan.End()

	if !admitted {
		d.telemetry.RecordRateLimitRejection(ctx)
		reason := fmt.Sprintf("Rate limit exceeded for tool '%s'. Try again later.", params.Name)
		d.writeAudit(ctx, audit.Record{
			Timestamp:     start,
			CorrelationID: correlationID,
			IdentityName:  d.identity.Name,
			ToolName:      params.Name,
			Action:        action,
			Outcome:       audit.OutcomeRateLimited,
			ErrorMessage:  reason,
			DurationMs:    elapsedMs(start, d.clock()),
		})
		return resultResponse(req.ID, protocol.TextResult(reason, true))
	}

	key := cache.BuildKey(params.Name, action, args)

	_, cacheSpan := d.telemetry.StartSpan(ctx, "cache_lookup")
	cached, hit := d.cache.Get(key)
	cacheSpan.End()

	if hit {
		d.telemetry.RecordCacheHit(ctx)
		var result protocol.ToolCallResult
		if err := json.Unmarshal(cached, &result); err != nil {
			// A corrupt cache entry should not surface to the caller as a
			// cache hit; fall through to a fresh invocation instead.
			hit = false
		} else {
			d.writeAudit(ctx, audit.Record{
				Timestamp:     start,
				CorrelationID: correlationID,
				IdentityName:  d.identity.Name,
				ToolName:      params.Name,
				Action:        action,
				Arguments:     args,
				Outcome:       audit.OutcomeSuccess,
				DurationMs:    elapsedMs(start, d.clock()),
			})
			return resultResponse(req.ID, result)
		}
	}
	if !hit {
		d.telemetry.RecordCacheMiss(ctx)
	}

	invokeCtx, invokeSpan := d.telemetry.StartSpan(ctx, "invoke")
	result, err := tool.Execute(invokeCtx, args, reporter)
	invokeSpan.End()

	durationMs := elapsedMs(start, d.clock())

	if err != nil {
		d.writeAudit(ctx, audit.Record{
			Timestamp:     start,
			CorrelationID: correlationID,
			IdentityName:  d.identity.Name,
			ToolName:      params.Name,
			Action:        action,
			Arguments:     args,
			Outcome:       audit.OutcomeFailure,
			ErrorMessage:  err.Error(),
			DurationMs:    durationMs,
		})
		return resultResponse(req.ID, protocol.TextResult("Error executing tool: "+err.Error(), true))
	}

	if encoded, encErr := json.Marshal(result); encErr == nil {
		d.cache.Set(toolLower, key, encoded)
	}

	d.writeAudit(ctx, audit.Record{
		Timestamp:     start,
		CorrelationID: correlationID,
		IdentityName:  d.identity.Name,
		ToolName:      params.Name,
		Action:        action,
		Arguments:     args,
		Outcome:       audit.OutcomeSuccess,
		DurationMs:    durationMs,
	})
	return resultResponse(req.ID, result)
}

// writeAudit writes rec and, on failure, records telemetry, logs a
// diagnostic to stderr, and swallows the error — an audit I/O failure is
// never fatal to the tool call (spec.md §4.H, §7).
func (d *Dispatcher) writeAudit(ctx context.Context, rec audit.Record) {
	if err := d.auditor.Write(rec); err != nil {
		d.telemetry.RecordAuditFailure(ctx)
		slog.Warn("audit write failed", "correlationId", rec.CorrelationID, "tool", rec.ToolName, "error", err)
	}
}

func elapsedMs(start, end time.Time) int64 {
	return end.Sub(start).Milliseconds()
}

// normalizeArguments converts tools/call's raw per-field JSON arguments
// into the normalized dynamic.Map shared unchanged across cache-key
// hashing, audit redaction, and tool execution (spec.md §9).
func normalizeArguments(raw map[string]json.RawMessage) dynamic.Map {
	out := make(dynamic.Map, len(raw))
	for k, v := range raw {
		out[k] = dynamic.FromJSON(v)
	}
	return out
}
