package domain

import "time"

// Clock is injected into deadline logic so tests never sleep.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
