package tui_test

import (
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/unitcache/internal/adapters/tui"
	"go.trai.ch/unitcache/internal/core/domain"
)

func newSizedModel(t *testing.T, units ...string) *tui.Model {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	m := tui.NewModel(io.Discard)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m.Update(tui.MsgInitUnits{Units: units})
	return &m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InitUnits(t *testing.T) {
	m := newSizedModel(t, "alpha", "beta", "alpha")

	require.Len(t, m.Units, 2, "duplicate names share a row")
	assert.Equal(t, "alpha", m.Units[0].Name)
	assert.Equal(t, tui.StatusPending, m.Units[0].Status)
	assert.Equal(t, 70-4, m.LogWidth)
	assert.Equal(t, m.LogWidth, m.Units[1].Term.Width)
}

func TestModel_UnitLifecycle(t *testing.T) {
	m := newSizedModel(t, "alpha", "beta")

	m.Update(tui.MsgUnitStart{SpanID: "s2", Name: "beta", StartTime: time.Now()})
	assert.Equal(t, tui.StatusRunning, m.Units[1].Status)
	assert.Equal(t, 1, m.SelectedIdx, "follow mode selects the started unit")
	assert.Equal(t, "beta", m.ActiveUnit)

	m.Update(tui.MsgUnitLog{SpanID: "s2", Data: []byte("linking beta")})
	assert.Contains(t, m.Units[1].Term.View(), "linking beta")

	m.Update(tui.MsgUnitComplete{SpanID: "s2", EndTime: time.Now(), Source: string(domain.SourceCold)})
	assert.Equal(t, tui.StatusDone, m.Units[1].Status)
	assert.False(t, m.Units[1].Cached())

	m.Update(tui.MsgUnitStart{SpanID: "s1", Name: "alpha"})
	m.Update(tui.MsgUnitComplete{SpanID: "s1", Source: string(domain.SourceMemory)})
	assert.True(t, m.Units[0].Cached())

	m.Update(tui.MsgUnitStart{SpanID: "s3", Name: "ghost"})
	m.Update(tui.MsgUnitLog{SpanID: "s3", Data: []byte("ignored")})
	assert.Len(t, m.Units, 2)
}

func TestModel_UnitFailure(t *testing.T) {
	m := newSizedModel(t, "alpha")

	m.Update(tui.MsgUnitStart{SpanID: "s1", Name: "alpha"})
	m.Update(tui.MsgUnitComplete{SpanID: "s1", Err: errors.New("load command failed")})

	assert.Equal(t, tui.StatusError, m.Units[0].Status)
	require.Error(t, m.Units[0].Err)
	assert.False(t, m.Units[0].Cached())
}

func TestModel_Navigation(t *testing.T) {
	m := newSizedModel(t, "a", "b", "c")

	m.Update(key("j"))
	assert.Equal(t, 1, m.SelectedIdx)
	assert.False(t, m.FollowMode, "manual navigation leaves follow mode")
	assert.Equal(t, "b", m.ActiveUnit)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.SelectedIdx, "selection stops at the last unit")

	m.Update(key("k"))
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.SelectedIdx)

	m.Update(tui.MsgUnitStart{SpanID: "s3", Name: "c"})
	assert.Equal(t, 0, m.SelectedIdx, "selection stays put outside follow mode")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.FollowMode)
	assert.Equal(t, 2, m.SelectedIdx, "esc jumps to the running unit")
	assert.Equal(t, "c", m.ActiveUnit)
}

func TestModel_ListScrollsWithSelection(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := tui.NewModel(io.Discard)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 5})
	m.Update(tui.MsgInitUnits{Units: []string{"a", "b", "c", "d", "e", "f"}})
	require.Positive(t, m.ListHeight)

	for range 5 {
		m.Update(key("j"))
	}
	assert.Equal(t, 5, m.SelectedIdx)
	assert.Equal(t, 5-m.ListHeight+1, m.ListOffset)

	for range 5 {
		m.Update(key("k"))
	}
	assert.Equal(t, 0, m.ListOffset)
}

func TestModel_Quit(t *testing.T) {
	m := newSizedModel(t, "alpha")

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.Nil(t, m.Init())
}
