package driver

import "time"

// PhaseStatus reports whether a program started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a program has been picked up by a worker.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes one program boundary.
type PhaseEvent struct {
	Program string
	Status  PhaseStatus
	Elapsed time.Duration // только для PhaseEnd
	Errors  int
}

// PhaseObserver receives phase events emitted during Run. It is called from
// worker goroutines and must be safe for concurrent use.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}
