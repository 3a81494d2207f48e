package tui

import "time"

// MsgInitUnits resets the dashboard to the units of a new batch.
type MsgInitUnits struct {
	Units []string
}

// MsgUnitStart is sent when a worker starts resolving a unit.
type MsgUnitStart struct {
	SpanID    string
	Name      string
	StartTime time.Time
}

// MsgUnitLog carries output written while a unit loads.
type MsgUnitLog struct {
	SpanID string
	Data   []byte
}

// MsgUnitComplete is sent when a unit resolved or failed.
type MsgUnitComplete struct {
	SpanID  string
	EndTime time.Time
	Source  string
	Err     error
}
