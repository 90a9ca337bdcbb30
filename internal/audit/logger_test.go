package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Argha713/mcp-pipeline-server/internal/dynamic"
)

func newTestLogger(t *testing.T, clock Clock) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	l := NewLogger(dir, 30*24*time.Hour, nil, nil).WithClock(clock)
	return l, dir
}

func TestLogger_WritesOneLinePerRecord(t *testing.T) {
	now := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	l, dir := newTestLogger(t, func() time.Time { return now })

	rec := Record{
		Timestamp:     now,
		CorrelationID: "corr-1",
		ToolName:      "datetime",
		Outcome:       OutcomeSuccess,
		DurationMs:    5,
	}
	if err := l.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := l.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	path := filepath.Join(dir, "audit-2026-07-29.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	lines := splitLines(string(data))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
}

func TestLogger_RotatesOnUTCDayChange(t *testing.T) {
	now := time.Date(2026, 7, 29, 23, 59, 0, 0, time.UTC)
	l, dir := newTestLogger(t, func() time.Time { return now })

	if err := l.Write(Record{ToolName: "a", Outcome: OutcomeSuccess}); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute) // crosses into 2026-07-30
	if err := l.Write(Record{ToolName: "b", Outcome: OutcomeSuccess}); err != nil {
		t.Fatal(err)
	}

	files, err := listAuditFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"audit-2026-07-29.jsonl", "audit-2026-07-30.jsonl"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files = %v, want %v", files, want)
		}
	}
}

func TestLogger_RedactsSensitiveArguments(t *testing.T) {
	now := time.Now()
	l, dir := newTestLogger(t, func() time.Time { return now })

	args := dynamic.Map{
		"password": {Kind: dynamic.KindString, Str: "hunter2"},
		"username": {Kind: dynamic.KindString, Str: "alice"},
	}
	if err := l.Write(Record{ToolName: "login", Outcome: OutcomeSuccess, Arguments: args}); err != nil {
		t.Fatal(err)
	}

	// Original map must not be mutated.
	if args["password"].Str != "hunter2" {
		t.Fatal("original arguments map was mutated")
	}

	files, _ := listAuditFiles(dir)
	data, err := os.ReadFile(filepath.Join(dir, files[0]))
	if err != nil {
		t.Fatal(err)
	}
	contents := string(data)
	if strings.Contains(contents, "hunter2") {
		t.Fatal("redacted value leaked into audit file")
	}
	if !strings.Contains(contents, "[REDACTED]") {
		t.Fatal("expected redacted marker in audit file")
	}
	if !strings.Contains(contents, "alice") {
		t.Fatal("non-sensitive value should survive redaction")
	}
}

func TestLogger_RetentionCleanupRunsOnceAndRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "audit-2020-01-01.jsonl")
	if err := os.WriteFile(old, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	staleTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(old, staleTime, staleTime); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	l := NewLogger(dir, 24*time.Hour, nil, nil).WithClock(func() time.Time { return now })

	if err := l.Write(Record{ToolName: "x", Outcome: OutcomeSuccess}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected stale audit file to be removed by retention cleanup")
	}
}

func TestNullWriter_AlwaysSucceeds(t *testing.T) {
	var w Writer = Null{}
	if err := w.Write(Record{ToolName: "x"}); err != nil {
		t.Fatalf("Null.Write returned error: %v", err)
	}
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
