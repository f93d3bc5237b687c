package schema

// Tab lifecycle.

// CreateTabRequest describes a request to create a tab.
type CreateTabRequest struct {
	Name TabName
}

// CreateTabResponse reports the created tab.
type CreateTabResponse struct {
	Tab TabSnapshot
}

// CloseTabRequest describes a request to close a tab.
type CloseTabRequest struct {
	TabID TabID
}

// CloseTabResponse reports the close outcome. Closed is false when the tab
// was the last one and the request was ignored.
type CloseTabResponse struct {
	Tab       TabSnapshot
	Closed    bool
	ActiveTab TabID
}

// ListTabsRequest describes a request to list tabs.
type ListTabsRequest struct{}

// ListTabsResponse reports tabs in display order.
type ListTabsResponse struct {
	Tabs          []TabSnapshot
	ActiveTab     TabID
	TabBarVisible bool
}

// ActivateTabRequest describes a request to activate a tab.
type ActivateTabRequest struct {
	TabID TabID
}

// ActivateTabResponse reports the activated tab and its fresh frame.
type ActivateTabResponse struct {
	Tab   TabSnapshot
	Frame Frame
}

// RenameTabRequest describes a request to rename a tab.
type RenameTabRequest struct {
	TabID TabID
	Name  TabName
}

// RenameTabResponse reports the renamed tab.
type RenameTabResponse struct {
	Tab TabSnapshot
}

// ReorderTabRequest moves a tab to a new index.
type ReorderTabRequest struct {
	TabID TabID
	Index int
}

// ReorderTabResponse reports the new order.
type ReorderTabResponse struct {
	Tabs []TabSnapshot
}

// Buffer operations.

// SetContentRequest replaces a tab's text (one keystroke). An empty TabID
// targets the active tab.
type SetContentRequest struct {
	TabID TabID
	Text  string
}

// SetContentResponse carries the immediate frame.
type SetContentResponse struct {
	TabID TabID
	Frame Frame
}

// GetBufferRequest describes a request for the active buffer.
type GetBufferRequest struct{}

// GetBufferResponse reports the active buffer text.
type GetBufferResponse struct {
	TabID TabID
	Text  string
}

// WriteBufferRequest writes text into the active buffer from outside the editor.
type WriteBufferRequest struct {
	Text string
	Mode WriteMode
}

// WriteBufferResponse reports the written tab and resulting text.
type WriteBufferResponse struct {
	TabID TabID
	Text  string
	Frame Frame
}

// Rendering options.

// SetLanguageRequest sets or clears the manual override. An empty TabID
// targets the active tab.
type SetLanguageRequest struct {
	TabID    TabID
	Language LanguageID
}

// SetLanguageResponse reports the re-rendered frame.
type SetLanguageResponse struct {
	Tab   TabSnapshot
	Frame Frame
}

// SetHighlightingRequest toggles syntax highlighting.
type SetHighlightingRequest struct {
	Enabled bool
}

// SetHighlightingResponse reports the re-rendered frame.
type SetHighlightingResponse struct {
	Enabled bool
	Frame   Frame
}

// SetDevModeRequest toggles developer metrics.
type SetDevModeRequest struct {
	Enabled bool
}

// SetDevModeResponse reports the new developer mode state.
type SetDevModeResponse struct {
	Enabled bool
	Metrics Metrics
}

// GetFrameRequest asks for the latest frame of the active tab.
type GetFrameRequest struct{}

// GetFrameResponse reports the latest frame and session flags.
type GetFrameResponse struct {
	Frame        Frame           `json:"frame"`
	Metrics      Metrics         `json:"metrics"`
	Highlighting bool            `json:"highlighting"`
	DevMode      bool            `json:"dev_mode"`
	Manual       LanguageID      `json:"manual,omitempty"`
	Formatter    FormatterStatus `json:"formatter"`
}

// Formatting.

// FormatRequest formats the active buffer. Cursor is a rune offset.
type FormatRequest struct {
	Cursor int
}

// FormatResponse reports the format outcome.
type FormatResponse struct {
	TabID     TabID
	Formatter string
	Applied   bool
	Text      string
	Cursor    int
}

// FormatterStatusRequest asks which formatter applies to the active tab.
type FormatterStatusRequest struct{}

// FormatterStatusResponse reports formatter availability.
type FormatterStatusResponse struct {
	Status FormatterStatus
}
