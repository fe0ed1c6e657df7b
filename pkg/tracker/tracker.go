// Package tracker integrates step events and heading into a dead-reckoned
// position path using a cadence-driven stride model.
package tracker

import (
	"log/slog"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"campusnav/pkg/config"
	"campusnav/pkg/geom"
	"campusnav/pkg/model"
	"campusnav/pkg/ring"
)

// State is the tracking lifecycle state.
type State int

const (
	// StateIdle means no origin has been set; steps are ignored.
	StateIdle State = iota
	// StateTracking means steps extend the tracked path.
	StateTracking
)

// Tracker maintains the tracked path for one session. All step events
// arrive on a single serialized stream; the mutex only guards against
// concurrent readers (API snapshots, route requests).
type Tracker struct {
	mu     sync.Mutex
	logger *slog.Logger
	cfg    config.StrideConfig

	state     State
	floor     model.FloorID
	heading   float64
	path      []model.PathPoint
	cadences  *ring.Buffer[float64]
	stepCount int

	observers    map[int]func(model.StepEvent)
	nextObserver int
}

// New creates an idle tracker.
func New(cfg config.StrideConfig, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		logger:    logger,
		cfg:       cfg,
		cadences:  ring.New[float64](cfg.CadenceAverageSize),
		observers: make(map[int]func(model.StepEvent)),
	}
}

// Subscribe registers an observer for step events and returns its id.
func (t *Tracker) Subscribe(fn func(model.StepEvent)) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextObserver
	t.nextObserver++
	t.observers[id] = fn
	return id
}

// Unsubscribe removes a previously registered observer.
func (t *Tracker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.observers, id)
}

// SetOrigin transitions Idle -> Tracking, resetting step count and
// cadence history and seeding the path with a single point at position.
func (t *Tracker) SetOrigin(position orb.Point, floor model.FloorID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = StateTracking
	t.floor = floor
	t.stepCount = 0
	t.cadences.Reset()
	t.path = []model.PathPoint{{Position: position, Heading: t.heading}}
	t.logger.Info("tracking origin set", "floor", floor, "x", position[0], "y", position[1])
}

// UpdateHeading records the latest heading sample. Heading arrives on
// its own high-frequency channel and does not, by itself, extend the path.
func (t *Tracker) UpdateHeading(heading float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.heading = geom.NormalizeAngle(heading)
}

// ProcessStep advances the path by one footstep. It returns the emitted
// step event and whether the step was applied (false while idle).
func (t *Tracker) ProcessStep(intervalMs, heading float64) (model.StepEvent, bool) {
	t.mu.Lock()

	if t.state != StateTracking || len(t.path) == 0 {
		t.mu.Unlock()
		return model.StepEvent{}, false
	}

	instant := 0.0
	if intervalMs > 0 {
		instant = 1000.0 / intervalMs
	}
	t.cadences.Push(instant)
	average := mean(t.cadences.Items())
	smoothed := smoothCadence(instant, average)

	strideCm := strideLengthCm(t.cfg, smoothed)
	strideUnits := strideCm / 100.0

	heading = geom.NormalizeAngle(heading)
	t.heading = heading

	last := t.path[len(t.path)-1].Position
	next := orb.Point{
		last[0] + strideUnits*math.Sin(heading),
		last[1] - strideUnits*math.Cos(heading),
	}

	t.path = append(t.path, model.PathPoint{Position: next, Heading: heading})
	t.stepCount++

	event := model.StepEvent{
		StrideLengthCm: strideCm,
		Cadence:        smoothed,
		Position:       next,
		Heading:        heading,
	}

	subs := make([]func(model.StepEvent), 0, len(t.observers))
	for _, fn := range t.observers {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
	return event, true
}

// ReplaceLast substitutes the most recent path point with a corrected
// one. The origin (index 0) is never replaced.
func (t *Tracker) ReplaceLast(p model.PathPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.path) > 1 {
		t.path[len(t.path)-1] = p
	}
}

// Clear transitions back to Idle, discarding the path and cadence
// history. Calling it repeatedly is harmless.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = StateIdle
	t.floor = ""
	t.path = nil
	t.stepCount = 0
	t.cadences.Reset()
}

// SetConfig replaces the stride configuration. The cadence window is
// resized; history is kept only if the size is unchanged.
func (t *Tracker) SetConfig(cfg config.StrideConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cfg.CadenceAverageSize != t.cfg.CadenceAverageSize {
		t.cadences = ring.New[float64](cfg.CadenceAverageSize)
	}
	t.cfg = cfg
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Floor returns the floor the origin was set on.
func (t *Tracker) Floor() model.FloorID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.floor
}

// Heading returns the latest heading sample.
func (t *Tracker) Heading() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.heading
}

// StepCount returns the number of steps since the origin was set.
func (t *Tracker) StepCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stepCount
}

// Position returns the latest path point and whether one exists.
func (t *Tracker) Position() (model.PathPoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.path) == 0 {
		return model.PathPoint{}, false
	}
	return t.path[len(t.path)-1], true
}

// Path returns a copy of the tracked path, origin first.
func (t *Tracker) Path() []model.PathPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.PathPoint, len(t.path))
	copy(out, t.path)
	return out
}

// RecentSteps returns up to n of the most recent path points.
func (t *Tracker) RecentSteps(n int) []model.PathPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.path) {
		n = len(t.path)
	}
	out := make([]model.PathPoint, n)
	copy(out, t.path[len(t.path)-n:])
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
