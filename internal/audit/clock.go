package audit

import "time"

// Clock supplies wall-clock timestamps in integer seconds for record
// ordering. Timestamps are monotonic-non-decreasing only in the common
// case: the wall clock may step backward and the trail does not correct
// for it (ties and inversions are resolved by insertion order at read
// time).
type Clock interface {
	Now() int64
}

// SystemClock returns the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}
