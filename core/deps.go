package core

import (
	"pkt.systems/blackboard/internal/persist"
	"pkt.systems/pslog"
)

// ServiceDeps captures dependencies for the core service. Detector,
// Highlighter and Linker are required; the rest are optional.
type ServiceDeps struct {
	Store       *persist.Store
	Detector    Detector
	Highlighter Highlighter
	Linker      Linker
	Formatters  FormatterRegistry
	EventSink   EventSink
	Logger      pslog.Logger
}
