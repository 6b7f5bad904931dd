package clock

import "time"

// Clock abstracts time for code that needs to be testable against a frozen
// or advancing timeline.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
