package schema

// TabEventType describes tab lifecycle updates.
type TabEventType string

const (
	// TabEventCreated indicates a tab was created.
	TabEventCreated TabEventType = "created"
	// TabEventClosed indicates a tab was closed.
	TabEventClosed TabEventType = "closed"
	// TabEventActivated indicates the active tab changed.
	TabEventActivated TabEventType = "activated"
	// TabEventUpdated indicates tab metadata changed.
	TabEventUpdated TabEventType = "updated"
	// TabEventReordered indicates the tab order changed.
	TabEventReordered TabEventType = "reordered"
)

// TabEvent describes a tab lifecycle update.
type TabEvent struct {
	Type      TabEventType
	Tab       TabSnapshot
	ActiveTab TabID
}

// FrameEvent carries a freshly rendered frame.
type FrameEvent struct {
	Frame   Frame
	Metrics Metrics
}

// ContentOrigin names who changed a buffer.
type ContentOrigin string

const (
	// OriginControl is the loopback control plane.
	OriginControl ContentOrigin = "control"
	// OriginFormatter is an external or native formatter.
	OriginFormatter ContentOrigin = "formatter"
)

// ContentEvent reports buffer text replaced outside the editor widget.
type ContentEvent struct {
	TabID  TabID
	Text   string
	Cursor int
	Origin ContentOrigin
}
