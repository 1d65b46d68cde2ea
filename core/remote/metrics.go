package remote

import (
	"math"
	"sync"
)

// Metrics sources.
const (
	SourceDesktop = "desktop"
	SourceWeb     = "web"
)

// Signal is one telemetry sample from a playback surface.
type Signal struct {
	Active      bool
	FPS         float64
	Duration    float64
	CurrentTime float64
}

// Metrics is the reconciled, view-ready metrics record. All numeric fields
// are finite.
type Metrics struct {
	CurrentTime float64
	Duration    float64
	FPS         float64
	Source      string
}

// Arbitrate reconciles the desktop and web telemetry into one record.
// Desktop wins when it reports itself active and has produced at least one
// non-zero number; otherwise the web metrics are used, which covers the
// startup race where a desktop client connects before it starts reporting.
// Non-finite input values are coerced to zero before arbitration.
func Arbitrate(desktop, web Signal) Metrics {
	desktop = sanitize(desktop)
	web = sanitize(web)

	if desktop.Active && (desktop.FPS > 0 || desktop.Duration > 0 || desktop.CurrentTime > 0) {
		return Metrics{
			CurrentTime: desktop.CurrentTime,
			Duration:    desktop.Duration,
			FPS:         desktop.FPS,
			Source:      SourceDesktop,
		}
	}

	return Metrics{
		CurrentTime: web.CurrentTime,
		Duration:    web.Duration,
		FPS:         web.FPS,
		Source:      SourceWeb,
	}
}

// Arbiter memoizes Arbitrate on the input tuple so repeated reads with
// unchanged telemetry return the identical record.
type Arbiter struct {
	mu          sync.Mutex
	haveLast    bool
	lastDesktop Signal
	lastWeb     Signal
	lastResult  Metrics
}

// NewArbiter creates an arbiter with an empty memo.
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// Current returns the reconciled metrics for the given signals.
func (a *Arbiter) Current(desktop, web Signal) Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.haveLast && desktop == a.lastDesktop && web == a.lastWeb {
		return a.lastResult
	}

	a.lastDesktop = desktop
	a.lastWeb = web
	a.lastResult = Arbitrate(desktop, web)
	a.haveLast = true
	return a.lastResult
}

func sanitize(s Signal) Signal {
	s.FPS = finiteOrZero(s.FPS)
	s.Duration = finiteOrZero(s.Duration)
	s.CurrentTime = finiteOrZero(s.CurrentTime)
	return s
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
