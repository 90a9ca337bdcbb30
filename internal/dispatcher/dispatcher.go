// Package dispatcher implements the core JSON-RPC method router and
// tool-invocation pipeline described in spec.md §4.H: the
// Uninitialized -> Initialized -> ShuttingDown handshake gate, and the
// auth -> rate-limit -> cache -> invoke -> audit pipeline for tools/call.
package dispatcher

import (
	"time"

	"github.com/Argha713/mcp-pipeline-server/internal/audit"
	"github.com/Argha713/mcp-pipeline-server/internal/authz"
	"github.com/Argha713/mcp-pipeline-server/internal/cache"
	"github.com/Argha713/mcp-pipeline-server/internal/logsink"
	"github.com/Argha713/mcp-pipeline-server/internal/progress"
	"github.com/Argha713/mcp-pipeline-server/internal/prompts"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
	"github.com/Argha713/mcp-pipeline-server/internal/ratelimit"
	"github.com/Argha713/mcp-pipeline-server/internal/resources"
	"github.com/Argha713/mcp-pipeline-server/internal/telemetry"
	"github.com/Argha713/mcp-pipeline-server/internal/tools"
)

// Clock abstracts time.Now for deterministic pipeline-duration tests.
type Clock func() time.Time

// Dispatcher routes JSON-RPC requests to their handlers and runs the
// tool-invocation pipeline. Safe for concurrent use: a single dispatcher
// instance is shared by every worker in the dispatch pool (spec.md §5).
type Dispatcher struct {
	tools     *tools.Registry
	resources *resources.Registry
	prompts   *prompts.Registry

	cache     cache.Cacher
	limiter   ratelimit.Acquirer
	authz     authz.Authorizer
	auditor   audit.Writer
	logSink   *logsink.Sink
	telemetry telemetry.Recorder

	progressWriter progress.Writer

	// identity is resolved once at startup from the session credential
	// (spec.md §6: "no per-request credential plumbing"). An invalid
	// credential, or a missing one while authentication is required,
	// resolves to the authz.Denied sentinel, which AuthorizeToolCall
	// always rejects.
	identity authz.Identity

	serverInfo protocol.ServerInfo
	state      stateBox
	clock      Clock
}

// Config bundles Dispatcher's dependencies.
type Config struct {
	Tools     *tools.Registry
	Resources *resources.Registry
	Prompts   *prompts.Registry

	Cache     cache.Cacher
	Limiter   ratelimit.Acquirer
	Authz     authz.Authorizer
	Auditor   audit.Writer
	LogSink   *logsink.Sink
	Telemetry telemetry.Recorder

	ProgressWriter progress.Writer

	ServerInfo protocol.ServerInfo

	// Credential is the session credential read once at startup (spec.md
	// §6), e.g. from the MCP_API_KEY environment variable. Empty means
	// anonymous, unless the authorizer requires authentication.
	Credential string
}

// New builds a Dispatcher and resolves the session identity from
// cfg.Credential. An invalid or missing-but-required credential still
// produces a usable Dispatcher — ResolveIdentity returns authz.Denied in
// that case, and every tool call will simply be denied by
// AuthorizeToolCall.
func New(cfg Config) *Dispatcher {
	identity, _ := cfg.Authz.ResolveIdentity(cfg.Credential)

	d := &Dispatcher{
		tools:          cfg.Tools,
		resources:      cfg.Resources,
		prompts:        cfg.Prompts,
		cache:          cfg.Cache,
		limiter:        cfg.Limiter,
		authz:          cfg.Authz,
		auditor:        cfg.Auditor,
		logSink:        cfg.LogSink,
		telemetry:      cfg.Telemetry,
		progressWriter: cfg.ProgressWriter,
		identity:       identity,
		serverInfo:     cfg.ServerInfo,
		clock:          time.Now,
	}
	return d
}

// AttachNotifier wires the outbound notification writer once the
// transport is running, mirroring gateway.Server.run's
// handler.setNotifier(s) in the teacher: the log sink and the
// progress-reporter factory both emit over this same writer, so that
// responses and notifications interleave through one serialized sink
// (spec.md §9). Call once, before serving, from a single goroutine.
func (d *Dispatcher) AttachNotifier(w progress.Writer) {
	d.progressWriter = w
	if d.logSink != nil {
		d.logSink.Attach(w)
	}
}
