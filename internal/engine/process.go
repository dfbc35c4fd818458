package engine

// Event is a one-shot rendezvous between simulation processes. One side
// triggers it; any number of waiters get their continuations scheduled at
// the instant of the trigger. Once triggered it stays triggered.
type Event struct {
	s         *Scheduler
	triggered bool
	waiters   []func()
}

// NewEvent creates an untriggered event on the given scheduler
func NewEvent(s *Scheduler) *Event {
	return &Event{s: s}
}

// Triggered reports whether the event has fired
func (e *Event) Triggered() bool {
	return e.triggered
}

// Trigger fires the event and schedules all waiting continuations at the
// current instant. Triggering an already-triggered event is a no-op.
func (e *Event) Trigger() {
	if e.triggered {
		return
	}
	e.triggered = true
	for _, fn := range e.waiters {
		e.s.Schedule(0, fn)
	}
	e.waiters = nil
}

// Wait schedules fn to run once the event triggers. If it has already
// triggered, fn is queued at the current instant behind work already
// queued there.
func (e *Event) Wait(fn func()) {
	if e.triggered {
		e.s.Schedule(0, fn)
		return
	}
	e.waiters = append(e.waiters, fn)
}

// WaitAny resumes fn when ev triggers or after timeout seconds, whichever
// comes first. fn runs exactly once and receives true iff the event had
// triggered by the time the decision is made.
//
// Tie-break: when the event triggers at exactly the instant the timeout
// expires, the event wins. The timeout path defers the decision by one
// same-instant scheduling step, so every trigger queued at the deadline runs
// before the handle's state is read. This matters for verification replies
// that land exactly on the deadline; they count as confirmations, not
// expirations.
func WaitAny(s *Scheduler, ev *Event, timeout float64, fn func(eventFired bool)) {
	done := false
	decide := func() {
		if done {
			return
		}
		done = true
		fn(ev.Triggered())
	}

	ev.Wait(decide)
	s.Schedule(timeout, func() {
		s.Schedule(0, decide)
	})
}
