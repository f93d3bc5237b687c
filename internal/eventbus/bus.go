package eventbus

import (
	"context"
	"sync"

	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventTab carries tab lifecycle updates.
	EventTab EventType = "tab"
	// EventFrame carries a newly applied render frame.
	EventFrame EventType = "frame"
	// EventContent carries buffer text replaced outside the editor.
	EventContent EventType = "content"
)

// Event represents a UI-facing event emitted by the core service.
type Event struct {
	Type    EventType
	Tab     schema.TabEvent
	Frame   schema.FrameEvent
	Content schema.ContentEvent
}

// Bus fans out events to every subscriber. Slow subscribers lose events
// rather than blocking the service.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]string
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]string),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a named subscriber and returns a channel + cancel.
func (b *Bus) Subscribe(name string) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = name
	count := len(b.subs)
	b.mu.Unlock()
	b.log.With("subscriber", name).Debug("eventbus subscribe", "subs", count)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
			b.log.With("subscriber", name).Debug("eventbus unsubscribe")
		})
	}
}

// OnTabEvent publishes a tab event.
func (b *Bus) OnTabEvent(event schema.TabEvent) {
	b.publish(Event{Type: EventTab, Tab: event})
}

// OnFrame publishes a render frame.
func (b *Bus) OnFrame(event schema.FrameEvent) {
	b.publish(Event{Type: EventFrame, Frame: event})
}

// OnContent publishes an external content change.
func (b *Bus) OnContent(event schema.ContentEvent) {
	b.publish(Event{Type: EventContent, Content: event})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subs) == 0 {
		return
	}
	dropped := 0
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "type", event.Type, "count", dropped)
	}
}
