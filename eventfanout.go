package blackboard

import (
	"pkt.systems/blackboard/core"
	"pkt.systems/blackboard/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnTabEvent(event schema.TabEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnTabEvent(event)
	}
}

func (f eventFanout) OnFrame(event schema.FrameEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnFrame(event)
	}
}

func (f eventFanout) OnContent(event schema.ContentEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnContent(event)
	}
}
