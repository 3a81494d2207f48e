package ports

import "time"

// Clock abstracts the current time so expiry can be tested.
//
//go:generate mockgen -source=clock.go -destination=mocks/mock_clock.go -package=mocks
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
