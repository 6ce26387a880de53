package pledge

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StopReason explains why a session ended.
type StopReason string

const (
	StopNone      StopReason = ""
	StopTerminal  StopReason = "terminal"
	StopTimeout   StopReason = "timeout"
	StopCancelled StopReason = "cancelled"
)

// Event is emitted after every fetch. Exactly one of Snapshot or Err is set.
// Final is true on the last event of a session that ended on its own.
type Event struct {
	PledgeID string
	Snapshot *Snapshot
	Err      error
	Elapsed  time.Duration
	Final    bool
}

// Clock abstracts time for the poller loop.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Poller starts tracking sessions. It holds no per-session state and may be
// shared.
type Poller struct {
	schedule Schedule
	clock    Clock
}

// NewPoller returns a Poller. A zero schedule uses DefaultSchedule and a nil
// clock uses wall time.
func NewPoller(schedule Schedule, clock Clock) *Poller {
	if clock == nil {
		clock = realClock{}
	}
	return &Poller{schedule: schedule.orDefault(), clock: clock}
}

// Schedule returns the cadence used by new sessions.
func (p *Poller) Schedule() Schedule { return p.schedule }

// Session is one tracking run for one pledge.
type Session struct {
	PledgeID string

	events chan Event
	cancel context.CancelFunc

	mu        sync.Mutex
	startedAt time.Time
	status    Status
	reason    StopReason
}

// Events is closed when the session stops.
func (s *Session) Events() <-chan Event { return s.events }

// Stop cancels the session. A fetch already in flight is not aborted, but no
// further fetch is issued. Safe to call more than once.
func (s *Session) Stop() { s.cancel() }

// Reason is StopNone while the session is running.
func (s *Session) Reason() StopReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// StartedAt is the instant the first fetch was issued.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Status is the last successfully fetched status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Track starts polling pledgeID with fetch in a new goroutine. The session
// ends on a terminal status, on schedule timeout, or when ctx is cancelled
// or Stop is called.
func (p *Poller) Track(ctx context.Context, pledgeID string, fetch FetchFunc) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		PledgeID: pledgeID,
		events:   make(chan Event, 1),
		cancel:   cancel,
	}
	go p.run(ctx, s, fetch)
	return s
}

func (p *Poller) run(ctx context.Context, s *Session, fetch FetchFunc) {
	defer close(s.events)
	defer s.cancel()

	var started time.Time
	for {
		if ctx.Err() != nil {
			s.stop(StopCancelled)
			return
		}

		issued := p.clock.Now()
		if started.IsZero() {
			started = issued
			s.mu.Lock()
			s.startedAt = started
			s.mu.Unlock()
		}

		snap, err := fetch(ctx, s.PledgeID)
		elapsed := p.clock.Now().Sub(started)

		ev := Event{PledgeID: s.PledgeID, Elapsed: elapsed}
		if err != nil {
			ev.Err = fmt.Errorf("%w: %w", ErrFetchTransient, err)
		} else if snap == nil {
			ev.Err = fmt.Errorf("%w: empty snapshot", ErrFetchTransient)
		} else {
			ev.Snapshot = snap
			s.mu.Lock()
			s.status = snap.Status
			s.mu.Unlock()
		}

		status := s.Status()
		delay, more := p.schedule.Next(elapsed, status)
		if !more {
			ev.Final = true
			if status.Terminal() {
				s.stop(StopTerminal)
			} else {
				s.stop(StopTimeout)
			}
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			if more {
				s.stop(StopCancelled)
			}
			return
		}
		if !more {
			return
		}

		if err := p.clock.Sleep(ctx, delay); err != nil {
			s.stop(StopCancelled)
			return
		}
	}
}

func (s *Session) stop(r StopReason) {
	s.mu.Lock()
	s.reason = r
	s.mu.Unlock()
}
