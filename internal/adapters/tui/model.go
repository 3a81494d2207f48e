package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/unitcache/internal/core/domain"
)

const (
	unitListWidthRatio = 0.3
	logPaneBorderWidth = 4
)

// UnitStatus is the state of a unit on the dashboard.
type UnitStatus string

const (
	// StatusPending marks a unit that has not started yet.
	StatusPending UnitStatus = "Pending"
	// StatusRunning marks a unit being resolved.
	StatusRunning UnitStatus = "Running"
	// StatusDone marks a resolved unit.
	StatusDone UnitStatus = "Done"
	// StatusError marks a failed unit.
	StatusError UnitStatus = "Error"
)

// UnitNode is one row of the unit list.
type UnitNode struct {
	Name   string
	Status UnitStatus
	Source domain.LoadSource
	Err    error
	Term   *Vterm
}

// Cached reports whether the unit was served without running its loader.
func (n *UnitNode) Cached() bool {
	return n.Status == StatusDone && n.Source != domain.SourceCold && n.Source != domain.SourceNone
}

// Model is the Bubble Tea model of the dashboard: the unit list on the left
// and the selected unit's load output on the right.
type Model struct {
	Units   []*UnitNode
	UnitMap map[string]*UnitNode
	SpanMap map[string]*UnitNode

	ActiveUnit  string
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	LogWidth    int
	LogHeight   int
	// FollowMode moves the selection to whichever unit started last.
	FollowMode bool
	AutoScroll bool
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case MsgInitUnits:
		m.initUnits(msg.Units)
	case MsgUnitStart:
		m.startUnit(msg)
	case MsgUnitLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}
	case MsgUnitComplete:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.Source = domain.LoadSource(msg.Source)
			node.Err = msg.Err
			if msg.Err != nil {
				node.Status = StatusError
			} else {
				node.Status = StatusDone
			}
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.moveSelection(m.SelectedIdx - 1)
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Units)-1 {
			m.moveSelection(m.SelectedIdx + 1)
		}
	case "esc":
		m.FollowMode = true
		for i, node := range m.Units {
			if node.Status == StatusRunning {
				m.SelectedIdx = i
				break
			}
		}
		m.ensureVisible()
		m.updateActiveView()
	default:
		if node, ok := m.UnitMap[m.ActiveUnit]; ok {
			node.Term.Update(msg)
		}
	}
	return nil
}

// moveSelection moves the selection by hand, which leaves follow mode.
func (m *Model) moveSelection(idx int) {
	m.SelectedIdx = idx
	m.FollowMode = false
	m.ensureVisible()
	m.updateActiveView()
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * unitListWidthRatio)
	m.LogWidth = width - listWidth - logPaneBorderWidth
	m.LogHeight = height - lipgloss.Height(titleStyle.Render("OUTPUT"))
	m.ListHeight = height - lipgloss.Height(titleStyle.Render("UNITS")+"\n\n")
	m.ensureVisible()

	for _, node := range m.Units {
		node.Term.SetSize(m.LogWidth, m.LogHeight)
	}
}

func (m *Model) initUnits(names []string) {
	m.Units = make([]*UnitNode, 0, len(names))
	m.UnitMap = make(map[string]*UnitNode, len(names))
	m.SpanMap = make(map[string]*UnitNode)
	m.SelectedIdx = 0
	m.ListOffset = 0
	m.ActiveUnit = ""

	for _, name := range names {
		if _, dup := m.UnitMap[name]; dup {
			continue
		}
		term := NewVterm()
		if m.LogWidth > 0 && m.LogHeight > 0 {
			term.SetSize(m.LogWidth, m.LogHeight)
		}
		node := &UnitNode{Name: name, Status: StatusPending, Term: term}
		m.Units = append(m.Units, node)
		m.UnitMap[name] = node
	}
}

func (m *Model) startUnit(msg MsgUnitStart) {
	node, ok := m.UnitMap[msg.Name]
	if !ok {
		return
	}
	node.Status = StatusRunning
	m.SpanMap[msg.SpanID] = node

	if !m.FollowMode {
		return
	}
	for i, n := range m.Units {
		if n == node {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	m.updateActiveView()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) selectedUnit() *UnitNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Units) {
		return m.Units[m.SelectedIdx]
	}
	return nil
}

func (m *Model) updateActiveView() {
	node := m.selectedUnit()
	if node == nil {
		return
	}
	m.ActiveUnit = node.Name
	if m.FollowMode && m.AutoScroll {
		node.Term.ScrollToBottom()
	}
}
