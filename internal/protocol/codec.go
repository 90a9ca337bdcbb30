package protocol

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// maxLineBytes bounds a single JSON-RPC line, mirroring the teacher's
// scanner buffer sizing in gateway.Server.run.
const maxLineBytes = 1024 * 1024

// LineReader reads successive non-empty lines from r and parses each as a
// Request. Blank/whitespace-only lines are skipped silently per spec.md
// §4.A. Structural JSON failures are reported, not panicked on, so the
// caller can still emit a parse-error Response and keep reading.
type LineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader wraps r for line-delimited JSON-RPC reads.
func NewLineReader(r io.Reader) *LineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineReader{scanner: s}
}

// ParsedLine is the result of decoding one non-blank input line.
type ParsedLine struct {
	Req *Request
	Err error // structural JSON failure; Req is nil when Err != nil
}

// Next returns the next non-blank line's parse result, or ok=false at EOF.
func (lr *LineReader) Next() (ParsedLine, bool) {
	for lr.scanner.Scan() {
		line := lr.scanner.Bytes()
		trimmed := trimASCIISpace(line)
		if len(trimmed) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return ParsedLine{Err: err}, true
		}
		return ParsedLine{Req: &req}, true
	}
	return ParsedLine{}, false
}

// Err returns any non-EOF scanning error encountered.
func (lr *LineReader) Err() error { return lr.scanner.Err() }

func trimASCIISpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// LineWriter serializes Responses and Notifications as one JSON object per
// line, flushing before returning, with writes serialized under a single
// mutex — the "global writer" design note in spec.md §9: both the
// dispatcher's responses and the log sink's / progress reporter's
// notifications share this one writer.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineWriter wraps w for serialized line-delimited JSON writes.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// WriteResponse serializes and writes one Response.
func (lw *LineWriter) WriteResponse(resp *Response) error {
	return lw.writeJSON(resp)
}

// WriteNotification serializes and writes one Notification.
func (lw *LineWriter) WriteNotification(n *Notification) error {
	return lw.writeJSON(n)
}

func (lw *LineWriter) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err = lw.w.Write(data)
	return err
}
