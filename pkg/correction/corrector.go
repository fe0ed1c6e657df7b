package correction

import (
	"log/slog"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"campusnav/pkg/config"
	"campusnav/pkg/geom"
	"campusnav/pkg/model"
)

// Pull-back distance from a wall intersection, in campus units.
const wallBackoff = 0.05

// Corrector adjusts raw dead-reckoned positions. Two hard contracts:
// the corrected step never crosses a wall the raw step did not cross,
// and the corrected point is never displaced from the raw point by
// more than MaxCorrectionPerStep.
type Corrector struct {
	mu          sync.Mutex
	logger      *slog.Logger
	cfg         config.CorrectionConfig
	constraints *model.FloorConstraintData
}

// NewCorrector creates a corrector with no floor constraints; until
// constraints arrive it passes positions through unchanged.
func NewCorrector(cfg config.CorrectionConfig, logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corrector{logger: logger, cfg: cfg}
}

// SetFloorConstraints installs the wall and entrance data for the
// current floor. A nil value disables correction.
func (c *Corrector) SetFloorConstraints(data *model.FloorConstraintData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constraints = data
}

// UpdateConfig swaps the correction parameters at runtime.
func (c *Corrector) UpdateConfig(cfg config.CorrectionConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Correct returns the adjusted position for the step prev -> raw.
func (c *Corrector) Correct(prev, raw model.PathPoint) model.PathPoint {
	c.mu.Lock()
	cfg := c.cfg
	constraints := c.constraints
	c.mu.Unlock()

	if constraints == nil {
		return raw
	}

	corrected := raw
	if ent, ok := nearestEntrance(constraints.Entrances, raw.Position, cfg.EntranceSnapRadius); ok {
		corrected.Position = ent
	}

	corrected.Position = clampDisplacement(raw.Position, corrected.Position, cfg.MaxCorrectionPerStep)
	corrected.Position = wallSafe(constraints.Walls, prev.Position, raw.Position, corrected.Position)
	return corrected
}

// nearestEntrance finds the closest entrance within radius of p.
func nearestEntrance(entrances []model.Entrance, p orb.Point, radius float64) (orb.Point, bool) {
	best := radius
	var found bool
	var pos orb.Point
	for _, ent := range entrances {
		if d := geom.Distance(p, ent.Position); d <= best {
			best = d
			pos = ent.Position
			found = true
		}
	}
	return pos, found
}

// clampDisplacement limits how far the candidate may move from raw.
func clampDisplacement(raw, candidate orb.Point, maxDist float64) orb.Point {
	dx := candidate[0] - raw[0]
	dy := candidate[1] - raw[1]
	d := math.Hypot(dx, dy)
	if d <= maxDist || d == 0 {
		return candidate
	}
	scale := maxDist / d
	return orb.Point{raw[0] + dx*scale, raw[1] + dy*scale}
}

// wallSafe pulls the candidate back so the step prev -> candidate does
// not cross any wall that the step prev -> raw left uncrossed. The
// candidate is clamped at the earliest offending intersection, backed
// off slightly toward prev.
func wallSafe(walls []model.Wall, prev, raw, candidate orb.Point) orb.Point {
	bestT := math.Inf(1)
	for _, w := range walls {
		if geom.SegmentsCross(prev, raw, w.A, w.B) {
			continue
		}
		pt, ok := geom.SegmentIntersection(prev, candidate, w.A, w.B)
		if !ok {
			continue
		}
		t := segmentParam(prev, candidate, pt)
		if t < bestT {
			bestT = t
		}
	}
	if math.IsInf(bestT, 1) {
		return candidate
	}

	length := geom.Distance(prev, candidate)
	if length == 0 {
		return candidate
	}
	t := bestT - wallBackoff/length
	if t < 0 {
		t = 0
	}
	return orb.Point{
		prev[0] + t*(candidate[0]-prev[0]),
		prev[1] + t*(candidate[1]-prev[1]),
	}
}

// segmentParam returns the parameter of pt along the segment a -> b.
func segmentParam(a, b, pt orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			return 0
		}
		return (pt[0] - a[0]) / dx
	}
	return (pt[1] - a[1]) / dy
}
