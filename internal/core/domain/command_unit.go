package domain

import "time"

// CommandUnit is the handle produced by running a unit's load command.
type CommandUnit struct {
	Name       string
	SourcePath string
	Output     []byte
	LoadedAt   time.Time
	// Restored is set when the handle was rebuilt from a metadata record
	// instead of running the load command.
	Restored bool
}
