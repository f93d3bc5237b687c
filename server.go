// Package blackboard composes the editing session, its loopback control
// plane and the formatter probe into one server a front end can drive.
package blackboard

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/blackboard/core"
	"pkt.systems/blackboard/httpapi"
	"pkt.systems/blackboard/internal/detect"
	"pkt.systems/blackboard/internal/eventbus"
	"pkt.systems/blackboard/internal/formatter"
	"pkt.systems/blackboard/internal/kv"
	"pkt.systems/blackboard/internal/persist"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// Server owns one editing session and the transports attached to it.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
	// Service is the editing session.
	Service() core.Service
	// Events streams tab, frame and content events.
	Events() *eventbus.Bus
	// Linker is the link finder matching the render format.
	Linker() *render.Linker
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Service    schema.ServiceConfig
	HTTP       httpapi.Config
	Storage    StorageConfig
	Render     RenderConfig
	Formatters formatter.Config
}

// StorageConfig selects where editor state lives.
type StorageConfig struct {
	Driver kv.Driver
	Path   string
}

// RenderConfig selects the markup flavour of frames.
type RenderConfig struct {
	Format render.Format
	Style  string
	// Region is the default phone number region for autolinking.
	Region string
}

// ServerDeps captures optional dependencies. A nil Store opens one from
// ServerConfig.Storage.
type ServerDeps struct {
	Store     kv.Store
	EventSink core.EventSink
	Logger    pslog.Logger
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableControl bool
	enableProbe   bool
}

// WithControl enables the loopback HTTP control plane.
func WithControl() ServerOption {
	return func(o *serverOptions) { o.enableControl = true }
}

// WithFormatterProbe checks external formatters in the background on Start.
func WithFormatterProbe() ServerOption {
	return func(o *serverOptions) { o.enableProbe = true }
}

// New constructs a blackboard server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	store := deps.Store
	ownStore := false
	if store == nil {
		opened, err := kv.Open(cfg.Storage.Driver, cfg.Storage.Path, logger)
		if err != nil {
			return nil, err
		}
		store, ownStore = opened, true
	}
	state, err := persist.NewStoreWithLogger(store, logger)
	if err != nil {
		return nil, err
	}

	highlighter := render.NewHighlighter(cfg.Render.Format, cfg.Render.Style)
	linker := render.NewLinker(cfg.Render.Format, cfg.Render.Region)
	registry := formatter.NewRegistry(cfg.Formatters)
	bus := eventbus.New(logger)

	var sink core.EventSink = bus
	if deps.EventSink != nil {
		sink = eventFanout{sinks: []core.EventSink{bus, deps.EventSink}}
	}

	service, err := core.NewService(cfg.Service, core.ServiceDeps{
		Store:       state,
		Detector:    detect.New(detect.WithLogger(logger)),
		Highlighter: highlighter,
		Linker:      linker,
		Formatters:  registry,
		EventSink:   sink,
		Logger:      logger,
	})
	if err != nil {
		if ownStore {
			_ = store.Close()
		}
		return nil, err
	}

	var httpSrv *httpapi.Server
	if options.enableControl {
		httpCfg := cfg.HTTP
		if httpCfg.StyleCSS == "" && cfg.Render.Format == render.FormatHTML {
			if css, err := highlighter.CSS(); err == nil {
				httpCfg.StyleCSS = css
			}
		}
		httpSrv = httpapi.NewServer(httpCfg, bus)
		httpSrv.Attach(service)
	}

	s := &compositeServer{
		cfg:      cfg,
		options:  options,
		service:  service,
		bus:      bus,
		linker:   linker,
		registry: registry,
		httpSrv:  httpSrv,
		logger:   logger,
	}
	if ownStore {
		s.store = store
	}
	return s, nil
}

type compositeServer struct {
	cfg      ServerConfig
	options  serverOptions
	service  core.Service
	bus      *eventbus.Bus
	linker   *render.Linker
	registry *formatter.Registry
	httpSrv  *httpapi.Server
	store    kv.Store
	logger   pslog.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	errCh     chan error
	started   bool
	closeOnce sync.Once
}

func (s *compositeServer) Service() core.Service  { return s.service }
func (s *compositeServer) Events() *eventbus.Bus  { return s.bus }
func (s *compositeServer) Linker() *render.Linker { return s.linker }

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 2)
	s.started = true
	s.mu.Unlock()

	log := pslog.Ctx(s.ctx)
	log.Info(
		"server start",
		"control", s.options.enableControl,
		"control_addr", s.cfg.HTTP.Addr,
		"storage", s.cfg.Storage.Driver,
		"debounce", s.cfg.Service.DebounceInterval,
	)
	if s.options.enableControl && s.httpSrv != nil {
		go func() {
			err := httpapi.ListenAndServe(s.ctx, s.cfg.HTTP.Addr, s.httpSrv.Handler())
			switch {
			case err == nil:
			case errors.Is(err, httpapi.ErrAddrInUse):
				log.Warn("control plane unavailable; another instance may be running", "addr", s.cfg.HTTP.Addr)
			default:
				log.Error("http server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	if s.options.enableProbe {
		go func() {
			if err := s.registry.Probe(s.ctx); err != nil {
				log.Warn("formatter probe failed", "err", err)
			}
		}()
	}
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	runCtx := s.ctx
	s.mu.Unlock()

	log := s.logger
	log.Info("server stop requested")
	if s.httpSrv != nil {
		s.httpSrv.Detach()
	}
	s.closeOnce.Do(func() {
		if err := s.service.Close(); err != nil {
			log.Warn("server session close failed", "err", err)
		}
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				log.Warn("server store close failed", "err", err)
			}
		}
	})
	if !started {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-runCtx.Done():
		log.Info("server stopped")
		return nil
	}
}
