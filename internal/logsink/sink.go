// Package logsink implements the protocol-facing log forwarding pathway:
// structured log records at or above a mutable severity threshold are
// emitted to the connected client as notifications/message. This is
// distinct from the server's own stderr diagnostics (log/slog), which
// never reach the wire.
package logsink

import (
	"sync"

	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// Level is the canonical MCP log severity ordering (spec.md §4.B):
// debug < info < notice < warning < error < critical < alert < emergency.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
	Critical
	Alert
	Emergency
)

var levelNames = map[Level]string{
	Debug:     "debug",
	Info:      "info",
	Notice:    "notice",
	Warning:   "warning",
	Error:     "error",
	Critical:  "critical",
	Alert:     "alert",
	Emergency: "emergency",
}

var namesToLevel = func() map[string]Level {
	m := make(map[string]Level, len(levelNames))
	for lvl, name := range levelNames {
		m[name] = lvl
	}
	return m
}()

// String returns the MCP wire name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ParseLevel parses an MCP wire level name. ok is false for unknown names.
func ParseLevel(name string) (Level, bool) {
	lvl, ok := namesToLevel[name]
	return lvl, ok
}

// FromSeverityClass maps generic severity classes (as tools/subsystems
// would report them) onto the canonical MCP level set, per spec.md §4.B:
// verbose/trace/debug -> debug, informational -> info, warn -> warning,
// error -> error, fatal/critical -> critical.
func FromSeverityClass(class string) Level {
	switch class {
	case "verbose", "trace", "debug":
		return Debug
	case "info", "informational":
		return Info
	case "notice":
		return Notice
	case "warn", "warning":
		return Warning
	case "error":
		return Error
	case "fatal", "critical":
		return Critical
	case "alert":
		return Alert
	case "emergency":
		return Emergency
	default:
		return Info
	}
}

// Writer is the minimal notification-emitting surface the sink needs —
// satisfied by protocol.LineWriter.
type Writer interface {
	WriteNotification(n *protocol.Notification) error
}

// Sink forwards log records at or above a mutable threshold to the client.
// Calls before Attach are dropped silently (never buffered), matching
// spec.md §4.B. Safe for concurrent use.
type Sink struct {
	mu        sync.Mutex
	threshold Level
	writer    Writer // nil until Attach
}

// New creates a Sink with the default threshold (warning).
func New() *Sink {
	return &Sink{threshold: Warning}
}

// Attach supplies the outbound writer once the transport is running. Prior
// to this call every WriteLog is a silent no-op.
func (s *Sink) Attach(w Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// SetLevel atomically mutates the forwarding threshold.
func (s *Sink) SetLevel(level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = level
}

// IsEnabled reports whether level would currently be forwarded.
func (s *Sink) IsEnabled(level Level) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return level >= s.threshold
}

// WriteLog forwards one notifications/message if level clears the
// threshold and a writer has been attached. category becomes the MCP
// "logger" field; message becomes "data".
func (s *Sink) WriteLog(level Level, category, message string) error {
	s.mu.Lock()
	writer := s.writer
	threshold := s.threshold
	s.mu.Unlock()

	if writer == nil || level < threshold {
		return nil
	}

	return writer.WriteNotification(&protocol.Notification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: map[string]any{
			"level":  level.String(),
			"logger": category,
			"data":   message,
		},
	})
}
