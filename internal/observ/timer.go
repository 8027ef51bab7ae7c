// Package observ records how long the lowering passes take.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer collects pass durations. One Timer may be shared by the goroutines
// compiling different programs; phases keep the order they were started in.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

type phase struct {
	name    string
	started time.Time
	dur     time.Duration
	note    string
	done    bool
}

func NewTimer() *Timer { return &Timer{} }

// Track starts phase name and returns the func that stops it. Calling the
// returned func again has no effect. A nil Timer tracks nothing.
//
//	defer timer.Track("walk")("")
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, started: time.Now()})
	t.mu.Unlock()

	return func(note string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		p := &t.phases[idx]
		if p.done {
			return
		}
		p.dur, p.note, p.done = time.Since(p.started), note, true
	}
}

// PhaseReport: одна фаза в сериализуемом виде.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report: снимок таймера. Незавершённые фазы в него не попадают.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var rep Report
	if t == nil {
		return rep
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		total += p.dur
		rep.Phases = append(rep.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	rep.TotalMS = millis(total)
	return rep
}

// String renders the report as an aligned table.
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-28s %8.3f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-28s %8.3f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
