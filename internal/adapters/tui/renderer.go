package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/unitcache/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer runs the dashboard as a Bubble Tea program and feeds it unit events.
type Renderer struct {
	program *tea.Program
	errCh   chan error
}

// NewRenderer creates a Renderer around model.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		errCh:   make(chan error, 1),
	}
}

// Start runs the program in the background.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program exited, either through Stop or because the
// user quit.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// OnPlanEmit resets the dashboard to the planned units.
func (r *Renderer) OnPlanEmit(unitNames []string) {
	r.program.Send(MsgInitUnits{Units: unitNames})
}

// OnUnitStart marks the unit running.
func (r *Renderer) OnUnitStart(id, unitName string, start time.Time) {
	r.program.Send(MsgUnitStart{SpanID: id, Name: unitName, StartTime: start})
}

// OnUnitLog appends load output to the unit's terminal.
func (r *Renderer) OnUnitLog(id string, data []byte) {
	r.program.Send(MsgUnitLog{SpanID: id, Data: data})
}

// OnUnitComplete marks the unit done or failed.
func (r *Renderer) OnUnitComplete(id string, end time.Time, source string, err error) {
	r.program.Send(MsgUnitComplete{SpanID: id, EndTime: end, Source: source, Err: err})
}

// Program returns the underlying program.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
