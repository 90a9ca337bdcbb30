package progress

import (
	"testing"

	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

type captureWriter struct {
	notifications []*protocol.Notification
}

func (c *captureWriter) WriteNotification(n *protocol.Notification) error {
	c.notifications = append(c.notifications, n)
	return nil
}

func TestNull_IsSilent(t *testing.T) {
	if err := Null.Report(0.5); err != nil {
		t.Fatalf("Null.Report: %v", err)
	}
	if err := Null.ReportTotal(1, 2); err != nil {
		t.Fatalf("Null.ReportTotal: %v", err)
	}
}

func TestFor_EmptyTokenYieldsNull(t *testing.T) {
	w := &captureWriter{}
	r := For("", w)
	_ = r.Report(1)
	if len(w.notifications) != 0 {
		t.Fatalf("empty token must yield Null reporter, got %d notifications", len(w.notifications))
	}
}

func TestLive_EmitsProgressToken(t *testing.T) {
	w := &captureWriter{}
	r := For("tok-123", w)
	if err := r.Report(0.25); err != nil {
		t.Fatal(err)
	}
	if err := r.ReportTotal(2, 10); err != nil {
		t.Fatal(err)
	}
	if len(w.notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(w.notifications))
	}

	first := w.notifications[0].Params.(map[string]any)
	if first["progressToken"] != "tok-123" {
		t.Fatalf("progressToken = %v, want tok-123", first["progressToken"])
	}
	if _, hasTotal := first["total"]; hasTotal {
		t.Fatal("Report without total must omit total")
	}

	second := w.notifications[1].Params.(map[string]any)
	if second["total"] != float64(10) {
		t.Fatalf("total = %v, want 10", second["total"])
	}
}
