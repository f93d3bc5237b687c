package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/blackboard/core"
	"pkt.systems/blackboard/internal/eventbus"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/pslog"
)

// Run drives the editor in the alternate screen until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, svc core.Service, bus *eventbus.Bus, linker *render.Linker, opts Options) error {
	m := New(ctx, svc, bus, linker, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	pslog.Ctx(ctx).Info("tui started")
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	pslog.Ctx(ctx).Info("tui stopped", "err", err)
	return err
}
