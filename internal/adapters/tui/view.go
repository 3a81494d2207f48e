package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/unitcache/internal/ui/style"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.unitList(), m.logPane())
}

func (m *Model) unitList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("UNITS") + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Units))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i, m.Units[i]) + "\n")
	}
	return listStyle.Render(b.String())
}

func (m *Model) renderRow(index int, node *UnitNode) string {
	rowStyle := statusStyle(node)
	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if node.Status == StatusPending || node.Status == StatusRunning {
			rowStyle = selectedStyle
		}
	}

	line := statusIcon(node) + " " + node.Name
	if node.Cached() {
		line += " (" + string(node.Source) + ")"
	}
	return cursor + rowStyle.Render(line)
}

func statusIcon(node *UnitNode) string {
	if node.Cached() {
		return style.Bolt
	}
	switch node.Status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return style.Circle
	}
}

func statusStyle(node *UnitNode) lipgloss.Style {
	if node.Cached() {
		return unitCachedStyle
	}
	switch node.Status {
	case StatusRunning:
		return unitRunningStyle
	case StatusDone:
		return unitDoneStyle
	case StatusError:
		return unitErrorStyle
	default:
		return unitPendingStyle
	}
}

func (m *Model) logPane() string {
	node, ok := m.UnitMap[m.ActiveUnit]
	if !ok {
		return logStyle.Render(titleStyle.Render("OUTPUT (Waiting...)"))
	}

	mode := " (Following)"
	if !m.FollowMode {
		mode = " (Manual)"
	}

	header := titleStyle.Render("OUTPUT: " + node.Name + mode)
	content := node.Term.View()
	if node.Status == StatusError {
		header = failureTitleStyle.Render("FAILED: " + node.Name + mode)
		if node.Err != nil && content == "" {
			content = node.Err.Error()
		}
	}
	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content))
}
