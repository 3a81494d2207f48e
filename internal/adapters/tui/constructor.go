// Package tui provides an interactive dashboard for unit loads.
package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/unitcache/internal/ui/output"
)

// NewModel creates a dashboard model rendering to w, which defaults to stderr.
func NewModel(w io.Writer) Model {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.New(w).Profile)

	return Model{
		Units:      make([]*UnitNode, 0),
		UnitMap:    make(map[string]*UnitNode),
		SpanMap:    make(map[string]*UnitNode),
		AutoScroll: true,
		FollowMode: true,
	}
}
