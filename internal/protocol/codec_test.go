package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLineReader_SkipsBlankLines(t *testing.T) {
	input := "\n   \n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n\n"
	lr := NewLineReader(strings.NewReader(input))

	line, ok := lr.Next()
	if !ok {
		t.Fatal("expected one parsed line")
	}
	if line.Err != nil {
		t.Fatalf("unexpected parse error: %v", line.Err)
	}
	if line.Req.Method != "ping" {
		t.Fatalf("method = %q, want ping", line.Req.Method)
	}

	_, ok = lr.Next()
	if ok {
		t.Fatal("expected EOF after the single request")
	}
}

func TestLineReader_MalformedJSON(t *testing.T) {
	lr := NewLineReader(strings.NewReader("{not json\n"))
	line, ok := lr.Next()
	if !ok {
		t.Fatal("expected a line")
	}
	if line.Err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestRequest_IsNotification(t *testing.T) {
	withID := Request{ID: json.RawMessage(`1`)}
	if withID.IsNotification() {
		t.Fatal("request with id must not be a notification")
	}
	without := Request{}
	if !without.IsNotification() {
		t.Fatal("request without id must be a notification")
	}
}

func TestLineWriter_OneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	lw := NewLineWriter(&buf)

	if err := lw.WriteResponse(NewResult(json.RawMessage(`1`), json.RawMessage(`{}`))); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	if err := lw.WriteNotification(&Notification{JSONRPC: "2.0", Method: "notifications/progress"}); err != nil {
		t.Fatalf("WriteNotification: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	var resp Response
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatalf("unmarshal response line: %v", err)
	}
	if string(resp.ID) != "1" {
		t.Fatalf("id = %s, want 1", resp.ID)
	}
}
