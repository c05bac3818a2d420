package cfkeypair

import "time"

// Clock provides deterministic time for the handler and its access-window checks.
type Clock interface {
	Now() time.Time
}

// RealClock uses time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
