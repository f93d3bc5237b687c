package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

func TestWithTabAddsField(t *testing.T) {
	capture := &logCapture{}
	ctx := pslog.ContextWithLogger(context.Background(), newCaptureLogger(capture))
	log := WithTab(ctx, "tab-1")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["tab"] != "tab-1" {
		t.Fatalf("expected tab field, got %+v", entry)
	}
}

func TestWithTabSkipsDuplicateMarker(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture).With("tab", "tab-1")
	ctx := ContextWithTabLogger(context.Background(), logger, "tab-1")
	WithTab(ctx, "tab-1").Info("hello")

	line := capture.buf.String()
	if bytes.Count([]byte(line), []byte(`"tab"`)) != 1 {
		t.Fatalf("expected a single tab field, got %s", line)
	}
}

func TestWithLanguageOmitsEmpty(t *testing.T) {
	capture := &logCapture{}
	WithLanguage(newCaptureLogger(capture), "").Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["language"]; ok {
		t.Fatalf("did not expect language field, got %+v", entry)
	}
}

func TestWithFrameAddsFields(t *testing.T) {
	capture := &logCapture{}
	frame := schema.Frame{Mode: schema.RenderHighlight, Seq: 7, Language: "go"}
	WithFrame(newCaptureLogger(capture), frame).Info("hello")

	entry := capture.firstEntry(t)
	if entry["mode"] != "highlight" || entry["language"] != "go" {
		t.Fatalf("expected frame fields, got %+v", entry)
	}
}

func TestCopyContextFields(t *testing.T) {
	src := ContextWithTab(context.Background(), "tab-9")
	dst := CopyContextFields(context.Background(), src)
	if got, _ := dst.Value(tabKey).(schema.TabID); got != "tab-9" {
		t.Fatalf("expected copied tab marker, got %q", got)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
