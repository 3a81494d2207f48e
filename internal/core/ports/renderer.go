package ports

import "time"

//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks

// Renderer receives unit load progress as it happens.
type Renderer interface {
	// OnPlanEmit is called once per batch with the units about to load.
	OnPlanEmit(unitNames []string)
	// OnUnitStart is called when a worker starts resolving a unit.
	OnUnitStart(id, unitName string, start time.Time)
	// OnUnitLog is called with output written while the unit loads.
	OnUnitLog(id string, data []byte)
	// OnUnitComplete is called when the unit resolved. source is empty on failure.
	OnUnitComplete(id string, end time.Time, source string, err error)
}
