package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Argha713/mcp-pipeline-server/internal/audit"
	"github.com/Argha713/mcp-pipeline-server/internal/authz"
	"github.com/Argha713/mcp-pipeline-server/internal/cache"
	"github.com/Argha713/mcp-pipeline-server/internal/config"
	"github.com/Argha713/mcp-pipeline-server/internal/dispatcher"
	"github.com/Argha713/mcp-pipeline-server/internal/logsink"
	"github.com/Argha713/mcp-pipeline-server/internal/prompts"
	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
	"github.com/Argha713/mcp-pipeline-server/internal/ratelimit"
	"github.com/Argha713/mcp-pipeline-server/internal/resources"
	"github.com/Argha713/mcp-pipeline-server/internal/secrets"
	"github.com/Argha713/mcp-pipeline-server/internal/telemetry"
	"github.com/Argha713/mcp-pipeline-server/internal/tools"
)

// defaultWorkerCount bounds the tools/call dispatch pool spec.md §5
// describes: the reader loop stays single-threaded, but in-flight tool
// calls may run concurrently, one per worker, sharing the single
// mutex-guarded response writer.
const defaultWorkerCount = 8

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-pipeline-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml")
	workers := flag.Int("workers", defaultWorkerCount, "bounded worker pool size for tools/call dispatch")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	tel, err := buildTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build telemetry: %w", err)
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	auditor, err := buildAuditor(cfg)
	if err != nil {
		return fmt.Errorf("build auditor: %w", err)
	}

	identityRegistry, err := buildIdentityRegistry(cfg)
	if err != nil {
		return fmt.Errorf("build identity registry: %w", err)
	}

	d := dispatcher.New(dispatcher.Config{
		Tools:          buildToolRegistry(),
		Resources:      buildResourceRegistry(cfg),
		Prompts:        buildPromptRegistry(),
		Cache:          buildCache(cfg),
		Limiter:        buildLimiter(cfg),
		Authz:          identityRegistry,
		Auditor:        auditor,
		LogSink:        logsink.New(),
		Telemetry:      tel,
		ProgressWriter: nil, // attached once the line writer exists, below
		ServerInfo:     protocol.ServerInfo{Name: "mcp-pipeline-server", Version: "0.1.0"},
		Credential:     os.Getenv("MCP_API_KEY"),
	})

	return serveStdio(ctx, d, *workers)
}

// serveStdio runs the reader loop of spec.md §5: stdin lines are parsed
// serially and handed to a bounded pool of workers; outbound writes
// (responses and notifications alike) are serialized through one
// LineWriter. A process-wide cancellation aborts the reader loop; the
// worker pool drains in-flight calls before returning.
func serveStdio(ctx context.Context, d *dispatcher.Dispatcher, workerCount int) error {
	if workerCount < 1 {
		workerCount = 1
	}

	writer := protocol.NewLineWriter(os.Stdout)
	d.AttachNotifier(writer)

	reader := protocol.NewLineReader(os.Stdin)
	jobs := make(chan *protocol.Request)

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case req, ok := <-jobs:
					if !ok {
						return nil
					}
					resp := d.Handle(gctx, req)
					if resp == nil {
						continue // notification: no response
					}
					if err := writer.WriteResponse(resp); err != nil {
						return fmt.Errorf("write response: %w", err)
					}
				}
			}
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for {
			line, ok := reader.Next()
			if !ok {
				return reader.Err()
			}
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			if line.Err != nil {
				if err := writer.WriteResponse(protocol.NewError(nil, protocol.CodeParseError, "invalid JSON: "+line.Err.Error())); err != nil {
					return fmt.Errorf("write parse-error response: %w", err)
				}
				continue
			}
			select {
			case jobs <- line.Req:
			case <-gctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

func buildCache(cfg *config.File) cache.Cacher {
	ttl := cache.NewTTLResolver(time.Duration(cfg.Cache.DefaultTTLSec)*time.Second, cfg.CacheTTLOverrides())
	return cache.New(cfg.Cache.MaxEntries, ttl)
}

func buildLimiter(cfg *config.File) ratelimit.Acquirer {
	buckets := make(map[string]ratelimit.BucketConfig, len(cfg.RateLimit))
	for name, b := range cfg.RateLimitBuckets() {
		buckets[name] = ratelimit.BucketConfig{Capacity: b.Capacity, RefillPerSecond: b.RefillPerSecond}
	}
	return ratelimit.New(buckets)
}

func buildAuditor(cfg *config.File) (audit.Writer, error) {
	if !cfg.Audit.Enabled {
		return audit.Null{}, nil
	}
	if err := os.MkdirAll(cfg.Audit.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
	bus := audit.NewBus()
	return audit.NewLogger(cfg.Audit.Directory, retention, cfg.Audit.RedactionHints, bus), nil
}

// buildIdentityRegistry loads the encrypted identity table, if configured.
// A disabled or unconfigured store yields an empty registry, under which
// no credential matches: an empty one resolves to Anonymous (or Denied
// when authentication is required) and any other resolves to Denied.
func buildIdentityRegistry(cfg *config.File) (*authz.Registry, error) {
	if !cfg.Identities.Enabled {
		return authz.NewRegistry(nil, cfg.Identities.RequireAuthentication), nil
	}

	identityStr := os.Getenv(cfg.Identities.AgeIdentity)
	if identityStr == "" {
		return nil, fmt.Errorf("env var %q (identities.age_identity_env) is not set", cfg.Identities.AgeIdentity)
	}
	ageIdentity, err := secrets.ParseAgeIdentity(identityStr)
	if err != nil {
		return nil, fmt.Errorf("parse age identity: %w", err)
	}

	store := secrets.NewIdentityStore(cfg.Identities.StorePath, secrets.NewAgeEncryptor(ageIdentity))
	identities, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load identity store: %w", err)
	}
	return authz.NewRegistry(identities, cfg.Identities.RequireAuthentication), nil
}

func buildTelemetry(ctx context.Context, cfg *config.File) (telemetry.Recorder, error) {
	if !cfg.Telemetry.Enabled {
		return telemetry.Null{}, nil
	}
	return telemetry.New(ctx, cfg.Telemetry.ServiceName, os.Stderr)
}

func buildResourceRegistry(cfg *config.File) *resources.Registry {
	if len(cfg.Resources.AllowlistRoots) == 0 {
		return resources.NewRegistry()
	}
	return resources.NewRegistry(resources.NewFilesystemProvider(cfg.Resources.AllowlistRoots))
}

func buildPromptRegistry() *prompts.Registry {
	return prompts.NewRegistry(prompts.NewBuiltinProvider(builtinTemplates()...))
}

func builtinTemplates() []prompts.Template {
	return []prompts.Template{
		{
			Name:        "summarize-code",
			Description: "Summarize a snippet of source code in plain language.",
			Arguments: []protocol.PromptArgument{
				{Name: "language", Description: "Source language", Required: true},
				{Name: "code", Description: "The code to summarize", Required: true},
			},
			Role: "user",
			Body: "Summarize the following {{language}} code:\n{{code}}",
		},
		{
			Name:        "explain-error",
			Description: "Explain an error message and suggest a fix.",
			Arguments: []protocol.PromptArgument{
				{Name: "error", Description: "The error message", Required: true},
			},
			Role: "user",
			Body: "Explain this error and suggest a fix:\n{{error}}",
		},
	}
}

func buildToolRegistry() *tools.Registry {
	return tools.NewRegistry(
		tools.NewDateTimeTool(),
		tools.NewTextTransformTool(),
		tools.NewEnvironmentTool(allowedEnvNames()),
		tools.NewSystemInfoTool(),
	)
}

// allowedEnvNames is the fixed, fail-closed allowlist for the environment
// tool (spec.md's domain tool set is fixed in-process; this is not
// user-configurable, deliberately, so an operator cannot widen it via
// config.yaml without a code change).
func allowedEnvNames() []string {
	return []string{"PATH", "HOME", "LANG", "TZ"}
}
