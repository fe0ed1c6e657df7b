// Package stairs detects floor transitions through stairwells. Detection
// is two-staged: geometric approach latches a stairwell candidate, then
// activity-classifier labels confirm the climb.
package stairs

import (
	"log/slog"
	"sync"

	"github.com/paulmach/orb"

	"campusnav/pkg/config"
	"campusnav/pkg/geom"
	"campusnav/pkg/model"
	"campusnav/pkg/ring"
)

// Within this distance of a stairwell the heading check is skipped;
// bearings become meaningless when standing on top of the anchor.
const nearSkipRadius = 1.0

// candidate is a latched stairwell awaiting classifier confirmation.
type candidate struct {
	pair            model.StairPair
	direction       model.StairDirection
	stepsSinceLatch int
	expiry          int
}

// Detector runs the two-stage stairwell transition machine. Step
// updates and classifier labels arrive on the session's serialized
// event stream; the mutex guards concurrent status reads.
type Detector struct {
	mu     sync.Mutex
	logger *slog.Logger
	cfg    config.StairsConfig
	stairs []model.StairPair

	floor    model.FloorID
	headings *ring.Buffer[float64]
	labels   *ring.Buffer[model.ClassifierLabel]
	cand     *candidate
}

// New creates a detector over the campus stair pairs.
func New(cfg config.StairsConfig, stairs []model.StairPair, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		logger:   logger,
		cfg:      cfg,
		stairs:   stairs,
		headings: ring.New[float64](cfg.HeadingLagWindow),
		labels:   ring.New[model.ClassifierLabel](cfg.LabelWindowSize),
	}
}

// SetFloor pins the floor candidates are scanned on. Changing floor
// drops any latched candidate and pending labels.
func (d *Detector) SetFloor(floor model.FloorID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if floor != d.floor {
		d.floor = floor
		d.reset()
	}
}

// Reset drops the latched candidate, pending labels and heading history.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	d.headings.Reset()
}

func (d *Detector) reset() {
	d.cand = nil
	d.labels.Reset()
}

// Candidate reports the latched stairwell direction, if any.
func (d *Detector) Candidate() (model.StairDirection, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cand == nil {
		return 0, false
	}
	return d.cand.direction, true
}

// Update feeds one step into stage one. A stairwell on the current
// floor within proximityRadius, with the lagged heading pointing into
// its field of view, latches (or refreshes) a candidate. Steps with no
// matching stairwell run down the candidate's expiry budget.
func (d *Detector) Update(pos orb.Point, heading float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.headings.Push(heading)
	lagged, ok := d.headings.Oldest()
	if !ok {
		lagged = heading
	}

	if d.cand != nil {
		d.cand.stepsSinceLatch++
	}

	pair, dir, found := d.scan(pos, lagged)
	if !found {
		if d.cand != nil {
			d.cand.expiry--
			if d.cand.expiry <= 0 {
				d.logger.Debug("stairwell candidate expired", "direction", d.cand.direction)
				d.reset()
			}
		}
		return
	}

	if d.cand != nil && d.cand.direction == dir && samePair(d.cand.pair, pair) {
		d.cand.expiry = d.cfg.CandidateExpirySteps
		return
	}

	d.cand = &candidate{
		pair:      pair,
		direction: dir,
		expiry:    d.cfg.CandidateExpirySteps,
	}
	d.labels.Reset()
	d.logger.Info("stairwell candidate latched", "direction", dir, "floor", d.floor)
}

// scan checks ascending anchors before descending ones so a stairwell
// shared between directions prefers the climb.
func (d *Detector) scan(pos orb.Point, lagged float64) (model.StairPair, model.StairDirection, bool) {
	for _, s := range d.stairs {
		if s.BottomFloor == d.floor && d.anchorMatches(pos, lagged, s.BottomPosition) {
			return s, model.StairUp, true
		}
	}
	for _, s := range d.stairs {
		if s.TopFloor == d.floor && d.anchorMatches(pos, lagged, s.TopPosition) {
			return s, model.StairDown, true
		}
	}
	return model.StairPair{}, 0, false
}

func (d *Detector) anchorMatches(pos orb.Point, lagged float64, anchor orb.Point) bool {
	dist := geom.Distance(pos, anchor)
	if dist > d.cfg.ProximityRadius {
		return false
	}
	if dist <= nearSkipRadius {
		return true
	}
	bearing := geom.Bearing(pos, anchor)
	diff := geom.AngleDiff(lagged, bearing)
	return absRad(diff) <= geom.DegToRad(d.cfg.FOVHalfAngleDeg)
}

// OnLabel feeds one classifier label into stage two. Labels below the
// confidence gate are dropped before they reach the window. When enough
// in-window labels agree with the latched direction, the transition is
// confirmed and the machine resets.
func (d *Detector) OnLabel(label model.ClassifierLabel) (model.StairTransitionEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if label.Confidence < d.cfg.MinConfidence {
		return model.StairTransitionEvent{}, false
	}
	d.labels.Push(label)

	if d.cand == nil {
		return model.StairTransitionEvent{}, false
	}

	want := model.LabelUpstairs
	if d.cand.direction == model.StairDown {
		want = model.LabelDownstairs
	}
	matching := d.labels.Count(func(l model.ClassifierLabel) bool {
		return l.Label == want
	})
	if matching < d.cfg.RequiredInWindow {
		return model.StairTransitionEvent{}, false
	}

	ev := d.buildEvent()
	d.logger.Info("stairwell transition confirmed",
		"direction", ev.Direction,
		"from", ev.FromFloor,
		"to", ev.ToFloor,
		"preClimbedSteps", ev.PreClimbedSteps)
	d.reset()
	return ev, true
}

func (d *Detector) buildEvent() model.StairTransitionEvent {
	c := d.cand
	ev := model.StairTransitionEvent{
		Pair:            c.pair,
		Direction:       c.direction,
		PreClimbedSteps: c.stepsSinceLatch,
	}
	if c.direction == model.StairUp {
		ev.StartPosition = c.pair.BottomPosition
		ev.EndPosition = c.pair.TopPosition
		ev.FromFloor = c.pair.BottomFloor
		ev.ToFloor = c.pair.TopFloor
	} else {
		ev.StartPosition = c.pair.TopPosition
		ev.EndPosition = c.pair.BottomPosition
		ev.FromFloor = c.pair.TopFloor
		ev.ToFloor = c.pair.BottomFloor
	}
	return ev
}

func samePair(a, b model.StairPair) bool {
	return a.TopFloor == b.TopFloor &&
		a.BottomFloor == b.BottomFloor &&
		a.TopPosition == b.TopPosition &&
		a.BottomPosition == b.BottomPosition
}

func absRad(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
