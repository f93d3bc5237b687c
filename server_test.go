package blackboard

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"pkt.systems/blackboard/httpapi"
	"pkt.systems/blackboard/internal/kv"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/schema"
)

func testConfig() ServerConfig {
	return ServerConfig{
		Service: schema.ServiceConfig{DebounceInterval: time.Hour},
		Storage: StorageConfig{Driver: kv.DriverMemory},
		Render:  RenderConfig{Format: render.FormatHTML},
	}
}

func TestServerStopCancelsContext(t *testing.T) {
	srv, err := New(testConfig(), ServerDeps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Fatalf("expected second Start to fail")
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := srv.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestServerWaitBeforeStart(t *testing.T) {
	srv, err := New(testConfig(), ServerDeps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Wait(); err == nil {
		t.Fatalf("expected Wait to fail before Start")
	}
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
}

func TestServerStateSurvivesRestart(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	first, err := New(testConfig(), ServerDeps{Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := first.Service().WriteBuffer(ctx, schema.WriteBufferRequest{Text: "kept"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := first.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	second, err := New(testConfig(), ServerDeps{Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = second.Stop(ctx) }()
	resp, err := second.Service().GetBuffer(ctx, schema.GetBufferRequest{})
	if err != nil || resp.Text != "kept" {
		t.Fatalf("expected restored buffer, got %q err=%v", resp.Text, err)
	}
}

type recordingSink struct {
	mu       sync.Mutex
	contents []schema.ContentEvent
	frames   int
	tabs     int
}

func (r *recordingSink) OnTabEvent(schema.TabEvent) {
	r.mu.Lock()
	r.tabs++
	r.mu.Unlock()
}

func (r *recordingSink) OnFrame(schema.FrameEvent) {
	r.mu.Lock()
	r.frames++
	r.mu.Unlock()
}

func (r *recordingSink) OnContent(event schema.ContentEvent) {
	r.mu.Lock()
	r.contents = append(r.contents, event)
	r.mu.Unlock()
}

func TestServerFansOutEvents(t *testing.T) {
	sink := &recordingSink{}
	srv, err := New(testConfig(), ServerDeps{EventSink: sink})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = srv.Stop(context.Background()) }()
	ch, unsubscribe := srv.Events().Subscribe("test")
	defer unsubscribe()

	ctx := context.Background()
	if _, err := srv.Service().CreateTab(ctx, schema.CreateTabRequest{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := srv.Service().WriteBuffer(ctx, schema.WriteBufferRequest{Text: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	sink.mu.Lock()
	if sink.tabs == 0 || len(sink.contents) != 1 || sink.frames == 0 {
		sink.mu.Unlock()
		t.Fatalf("unexpected sink counts tabs=%d contents=%d frames=%d", sink.tabs, len(sink.contents), sink.frames)
	}
	sink.mu.Unlock()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected bus event")
	}
}

func TestServerToleratesBusyControlPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.HTTP = httpapi.Config{Addr: ln.Addr().String()}
	srv, err := New(cfg, ServerDeps{}, WithControl())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Wait() }()
	select {
	case err := <-done:
		t.Fatalf("busy port must not stop the server, got %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
