package analysis

import "time"

// Clock supplies the current time to the comp filter and the evaluators.
// Injecting it keeps date-cutoff and age math reproducible in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
