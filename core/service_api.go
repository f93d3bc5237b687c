package core

import (
	"context"

	"pkt.systems/blackboard/schema"
)

// Service is the transport-agnostic API for managing tabs, rendering and
// formatting of the scratchpad buffers.
type Service interface {
	CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.CreateTabResponse, error)
	CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.CloseTabResponse, error)
	ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error)
	ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.ActivateTabResponse, error)
	RenameTab(ctx context.Context, req schema.RenameTabRequest) (schema.RenameTabResponse, error)
	ReorderTab(ctx context.Context, req schema.ReorderTabRequest) (schema.ReorderTabResponse, error)
	SetContent(ctx context.Context, req schema.SetContentRequest) (schema.SetContentResponse, error)
	GetBuffer(ctx context.Context, req schema.GetBufferRequest) (schema.GetBufferResponse, error)
	WriteBuffer(ctx context.Context, req schema.WriteBufferRequest) (schema.WriteBufferResponse, error)
	SetLanguage(ctx context.Context, req schema.SetLanguageRequest) (schema.SetLanguageResponse, error)
	SetHighlighting(ctx context.Context, req schema.SetHighlightingRequest) (schema.SetHighlightingResponse, error)
	SetDevMode(ctx context.Context, req schema.SetDevModeRequest) (schema.SetDevModeResponse, error)
	GetFrame(ctx context.Context, req schema.GetFrameRequest) (schema.GetFrameResponse, error)
	Format(ctx context.Context, req schema.FormatRequest) (schema.FormatResponse, error)
	FormatterStatus(ctx context.Context, req schema.FormatterStatusRequest) (schema.FormatterStatusResponse, error)
	// Flush runs a pending deferred render now.
	Flush(ctx context.Context)
	Close() error
}
