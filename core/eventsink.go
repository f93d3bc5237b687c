package core

import "pkt.systems/blackboard/schema"

// EventSink receives tab, frame and content events from the core service.
type EventSink interface {
	OnTabEvent(event schema.TabEvent)
	OnFrame(event schema.FrameEvent)
	OnContent(event schema.ContentEvent)
}
