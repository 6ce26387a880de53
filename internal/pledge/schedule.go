package pledge

import "time"

// Schedule is the time-adaptive polling cadence. Elapsed time is always
// measured from the first fetch of a session, so the cadence only ever
// coarsens: fast, then slow, then stop.
type Schedule struct {
	FastInterval time.Duration
	FastPhase    time.Duration
	SlowInterval time.Duration
	SlowPhase    time.Duration
}

// DefaultSchedule polls every 3s for 2 minutes, then every 10s for another
// 10 minutes, then gives up.
var DefaultSchedule = Schedule{
	FastInterval: 3 * time.Second,
	FastPhase:    2 * time.Minute,
	SlowInterval: 10 * time.Second,
	SlowPhase:    10 * time.Minute,
}

// Next returns the delay before the following fetch, or false when polling
// must stop. It is a pure function of its arguments.
func (s Schedule) Next(elapsed time.Duration, status Status) (time.Duration, bool) {
	if status.Terminal() {
		return 0, false
	}
	switch {
	case elapsed < s.FastPhase:
		return s.FastInterval, true
	case elapsed < s.FastPhase+s.SlowPhase:
		return s.SlowInterval, true
	default:
		return 0, false
	}
}

// Deadline is the elapsed time after which a pending pledge stops being polled.
func (s Schedule) Deadline() time.Duration { return s.FastPhase + s.SlowPhase }

// NextInterval applies DefaultSchedule.
func NextInterval(elapsed time.Duration, status Status) (time.Duration, bool) {
	return DefaultSchedule.Next(elapsed, status)
}

func (s Schedule) orDefault() Schedule {
	if s.FastInterval <= 0 || s.SlowInterval <= 0 {
		return DefaultSchedule
	}
	return s
}
