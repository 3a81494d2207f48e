package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/midterm"
)

// Vterm replays a load command's output on a virtual terminal and renders a
// scrollable window of it.
type Vterm struct {
	mu      sync.Mutex
	vt      *midterm.Terminal
	viewBuf bytes.Buffer

	// Offset is the first rendered row.
	Offset int
	Height int
	Width  int
}

// NewVterm creates an empty Vterm.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal()}
}

// Write feeds output to the terminal. A view that showed the last row keeps
// following new output.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if follow {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetSize resizes the visible window.
func (v *Vterm) SetSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	v.Width = max(width, 1)
	v.Height = max(height, 1)
	v.vt.ResizeX(v.Width)
	if follow {
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

// UsedHeight returns the number of rows holding output.
func (v *Vterm) UsedHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// ScrollToBottom moves the window to the last rows.
func (v *Vterm) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Offset = v.maxOffset()
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.viewBuf.Reset()
	used := v.vt.UsedHeight()
	for i := range v.Height {
		row := v.Offset + i
		if row >= used {
			break
		}
		if i > 0 {
			v.viewBuf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.viewBuf, row)
	}
	return v.viewBuf.String()
}

// Update scrolls the window on navigation keys.
func (v *Vterm) Update(msg tea.Msg) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	switch key.String() {
	case "ctrl+u", "pgup":
		v.Offset -= v.Height
	case "ctrl+d", "pgdown":
		v.Offset += v.Height
	case "g", "home":
		v.Offset = 0
	case "G", "end":
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

func (v *Vterm) clamp() {
	v.Offset = min(max(v.Offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
