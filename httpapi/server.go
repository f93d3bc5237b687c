package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"pkt.systems/blackboard/core"
	"pkt.systems/blackboard/internal/eventbus"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// Server serves the loopback control plane used by the bb-* helpers.
type Server struct {
	cfg Config
	bus *eventbus.Bus

	mu      sync.RWMutex
	service core.Service
}

// StreamEvent is one server-sent event on /events.
type StreamEvent struct {
	Type    string               `json:"type"`
	Frame   *schema.FrameEvent   `json:"frame,omitempty"`
	Tab     *schema.TabEvent     `json:"tab,omitempty"`
	Content *schema.ContentEvent `json:"content,omitempty"`
}

// NewServer constructs a control plane server. It answers 503 for buffer
// requests until a service is attached.
func NewServer(cfg Config, bus *eventbus.Bus) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{cfg: cfg, bus: bus}
}

// Attach makes the editing session reachable.
func (s *Server) Attach(service core.Service) {
	s.mu.Lock()
	s.service = service
	s.mu.Unlock()
}

// Detach makes buffer requests fail with 503 again.
func (s *Server) Detach() {
	s.mu.Lock()
	s.service = nil
	s.mu.Unlock()
}

func (s *Server) attached() core.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleNotFound)
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/buffer", s.handleBuffer)
	mux.HandleFunc("/frame", s.requireService(s.handleFrame))
	mux.HandleFunc("/events", s.requireService(s.handleEvents))
	mux.HandleFunc("/style.css", s.handleStyle)
	return withRequestLogging(mux)
}

type serviceHandler func(http.ResponseWriter, *http.Request, core.Service)

func (s *Server) requireService(next serviceHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		service := s.attached()
		if service == nil {
			writeText(w, http.StatusServiceUnavailable, "Window not available")
			return
		}
		next(w, r, service)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, "Not found")
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeText(w, http.StatusOK, "pong")
}

func (s *Server) handleBuffer(w http.ResponseWriter, r *http.Request) {
	service := s.attached()
	if service == nil {
		writeText(w, http.StatusServiceUnavailable, "Window not available")
		return
	}
	log := pslog.Ctx(r.Context())
	switch r.Method {
	case http.MethodGet:
		resp, err := service.GetBuffer(r.Context(), schema.GetBufferRequest{})
		if err != nil {
			log.Warn("http buffer get failed", "err", err)
			writeText(w, http.StatusInternalServerError, "Failed to get buffer")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, resp.Text)
		log.Debug("http buffer get ok", "tab", resp.TabID, "length", len(resp.Text))
	case http.MethodPost:
		mode := schema.ParseWriteMode(r.Header.Get("X-Mode"))
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeText(w, http.StatusRequestEntityTooLarge, "Failed to set buffer: payload too large")
				return
			}
			writeText(w, http.StatusInternalServerError, "Failed to set buffer: "+err.Error())
			return
		}
		resp, err := service.WriteBuffer(r.Context(), schema.WriteBufferRequest{Text: string(body), Mode: mode})
		if err != nil {
			log.Warn("http buffer set failed", "err", err, "mode", mode)
			writeText(w, http.StatusInternalServerError, "Failed to set buffer: "+err.Error())
			return
		}
		writeText(w, http.StatusOK, "ok")
		log.Debug("http buffer set ok", "tab", resp.TabID, "mode", mode, "bytes", len(body))
	default:
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request, service core.Service) {
	resp, err := service.GetFrame(r.Context(), schema.GetFrameRequest{})
	if err != nil {
		pslog.Ctx(r.Context()).Warn("http frame failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, service core.Service) {
	if s.bus == nil {
		writeText(w, http.StatusNotFound, "Not found")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("stream unsupported"))
		return
	}
	log := pslog.Ctx(r.Context())

	ch, unsubscribe := s.bus.Subscribe("http " + r.RemoteAddr)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if current, err := service.GetFrame(r.Context(), schema.GetFrameRequest{}); err == nil {
		_ = writeSSEvent(w, StreamEvent{Type: "frame", Frame: &schema.FrameEvent{Frame: current.Frame, Metrics: current.Metrics}})
	}
	flusher.Flush()

	log.Info("http stream opened")
	for {
		select {
		case <-r.Context().Done():
			log.Info("http stream closed")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			_ = writeSSEvent(w, toStreamEvent(event))
			flusher.Flush()
		}
	}
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.cfg.StyleCSS == "" {
		writeText(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s.cfg.StyleCSS)
}

func toStreamEvent(event eventbus.Event) StreamEvent {
	out := StreamEvent{Type: string(event.Type)}
	switch event.Type {
	case eventbus.EventFrame:
		out.Frame = &event.Frame
	case eventbus.EventTab:
		out.Tab = &event.Tab
	case eventbus.EventContent:
		out.Content = &event.Content
	}
	return out
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeSSEvent(w http.ResponseWriter, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, strings.TrimSpace(string(data)))
	return err
}
