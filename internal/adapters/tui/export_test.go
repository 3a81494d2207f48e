package tui

// MaxOffset exposes the scroll limit to tests.
func (v *Vterm) MaxOffset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.maxOffset()
}
