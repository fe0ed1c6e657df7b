// Package nav runs one navigation session: it owns the serialized
// sensor stream, fans events out to the detectors and corrector, and
// fronts the router with cancellable route tasks.
package nav

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"campusnav/pkg/config"
	"campusnav/pkg/correction"
	"campusnav/pkg/floor"
	"campusnav/pkg/geom"
	"campusnav/pkg/model"
	"campusnav/pkg/ring"
	"campusnav/pkg/router"
	"campusnav/pkg/stairs"
	"campusnav/pkg/store"
	"campusnav/pkg/tracker"
)

// Channel capacities for the sensor inlets. Steps and headings block
// the producer when full to preserve ordering; classifier labels are
// dropped instead, a stale label is worthless.
const (
	stepQueueSize  = 64
	labelQueueSize = 16
)

// Steps of leading history handed to the turn detector ahead of the
// analysis buffer.
const turnContextSize = 2

type stepInput struct {
	intervalMs float64
	heading    float64
}

// Session ties the tracker, corrector, detectors and router together
// for one user. All sensor input is funneled through a single worker
// goroutine, so the pipeline sees a serialized step stream.
type Session struct {
	id       string
	logger   *slog.Logger
	provider config.Provider
	store    store.StateStore

	tracker   *tracker.Tracker
	corrector *correction.Corrector
	floors    *floor.Detector
	stairsDet *stairs.Detector
	router    *router.Router

	steps  chan stepInput
	labels chan model.ClassifierLabel
	done   chan struct{}
	stop   sync.Once
	wg     sync.WaitGroup

	mu          sync.Mutex
	turnPoints  *ring.Buffer[model.PathPoint]
	routeCancel context.CancelFunc
	observers   map[int]func(Event)
	nextObs     int
}

// Deps bundles the session's collaborators.
type Deps struct {
	Provider config.Provider
	Store    store.StateStore
	Tracker  *tracker.Tracker
	Floors   *floor.Detector
	Stairs   *stairs.Detector
	Router   *router.Router
	Logger   *slog.Logger
}

// NewSession assembles a session and starts its worker goroutine.
func NewSession(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Provider.AppConfig()

	s := &Session{
		id:         uuid.NewString(),
		logger:     logger,
		provider:   deps.Provider,
		store:      deps.Store,
		tracker:    deps.Tracker,
		corrector:  correction.NewCorrector(cfg.Correction, logger),
		floors:     deps.Floors,
		stairsDet:  deps.Stairs,
		router:     deps.Router,
		steps:      make(chan stepInput, stepQueueSize),
		labels:     make(chan model.ClassifierLabel, labelQueueSize),
		done:       make(chan struct{}),
		turnPoints: ring.New[model.PathPoint](turnContextSize + cfg.Correction.StepBufferSize),
		observers:  make(map[int]func(Event)),
	}

	s.wg.Add(1)
	go s.run()
	return s
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers an observer for session events.
func (s *Session) Subscribe(fn func(Event)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return id
}

// Unsubscribe removes an observer.
func (s *Session) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, id)
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	subs := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// Start places the user at an origin and begins tracking. The origin is
// persisted so the next session can offer it as a starting point.
func (s *Session) Start(ctx context.Context, position orb.Point, floorID model.FloorID) {
	s.tracker.SetConfig(s.provider.Stride(ctx))
	s.tracker.SetOrigin(position, floorID)
	s.floors.SetInitial(floorID)
	s.stairsDet.Reset()
	s.stairsDet.SetFloor(floorID)

	if cur, ok := s.floors.Current(); ok {
		s.corrector.SetFloorConstraints(cur.Constraints)
	} else {
		s.corrector.SetFloorConstraints(nil)
	}

	s.mu.Lock()
	s.turnPoints.Reset()
	s.mu.Unlock()

	s.persistOrigin(ctx, position, floorID)
	s.logger.Info("session started", "session", s.id, "floor", floorID)
}

// Step queues one footstep for the pipeline.
func (s *Session) Step(intervalMs, heading float64) {
	select {
	case s.steps <- stepInput{intervalMs: intervalMs, heading: heading}:
	case <-s.done:
	}
}

// Heading forwards a heading-only sample. It bypasses the step queue;
// heading updates never extend the path.
func (s *Session) Heading(heading float64) {
	s.tracker.UpdateHeading(heading)
}

// Label queues one motion-classifier label. The queue is bounded; when
// the pipeline falls behind, new labels are dropped with a warning.
func (s *Session) Label(label model.ClassifierLabel) {
	select {
	case s.labels <- label:
	case <-s.done:
	default:
		s.logger.Warn("classifier label dropped, queue full", "label", label.Label)
	}
}

// Route plans from the current tracked position. Requesting a new route
// cancels any route computation still in flight.
func (s *Session) Route(goalFloor model.FloorID, goal orb.Point) (model.Route, error) {
	ctx := s.newRouteContext()
	pos, ok := s.tracker.Position()
	if !ok {
		return nil, router.ErrNoPath
	}
	return s.router.Route(ctx, s.tracker.Floor(), pos.Position, goalFloor, goal)
}

// RouteToRoom plans from the current tracked position to a room query.
func (s *Session) RouteToRoom(building model.BuildingID, query string) (model.Route, error) {
	ctx := s.newRouteContext()
	pos, ok := s.tracker.Position()
	if !ok {
		return nil, router.ErrNoPath
	}
	return s.router.RouteToRoom(ctx, s.tracker.Floor(), pos.Position, building, query)
}

func (s *Session) newRouteContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.routeCancel != nil {
		s.routeCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.routeCancel = cancel
	return ctx
}

// Clear stops tracking without tearing the session down. Safe to call
// repeatedly.
func (s *Session) Clear() {
	s.tracker.Clear()
	s.stairsDet.Reset()
	s.corrector.SetFloorConstraints(nil)
	s.mu.Lock()
	s.turnPoints.Reset()
	s.mu.Unlock()
}

// Stop shuts the session down. Safe to call more than once.
func (s *Session) Stop() {
	s.stop.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.routeCancel != nil {
			s.routeCancel()
		}
		s.mu.Unlock()
		s.wg.Wait()
		s.tracker.Clear()
		s.logger.Info("session stopped", "session", s.id)
	})
}

// Status is a point-in-time snapshot for the API.
type Status struct {
	Session   string           `json:"session"`
	Tracking  bool             `json:"tracking"`
	Floor     model.FloorID    `json:"floor,omitempty"`
	Position  *model.PathPoint `json:"position,omitempty"`
	StepCount int              `json:"step_count"`
}

// Status reports the session's current tracking state.
func (s *Session) Status() Status {
	st := Status{
		Session:   s.id,
		Tracking:  s.tracker.State() == tracker.StateTracking,
		StepCount: s.tracker.StepCount(),
	}
	if cur, ok := s.floors.Current(); ok {
		st.Floor = cur.Floor
	}
	if pos, ok := s.tracker.Position(); ok {
		st.Position = &pos
	}
	return st
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case in := <-s.steps:
			s.handleStep(in)
		case label := <-s.labels:
			s.handleLabel(label)
		}
	}
}

func (s *Session) handleStep(in stepInput) {
	prev, havePrev := s.tracker.Position()
	raw, ok := s.tracker.ProcessStep(in.intervalMs, in.heading)
	if !ok || !havePrev {
		return
	}

	point := model.PathPoint{Position: raw.Position, Heading: raw.Heading}
	corrected := s.corrector.Correct(prev, point)
	if corrected != point {
		s.tracker.ReplaceLast(corrected)
	}

	stepEv := raw
	stepEv.Position = corrected.Position
	s.emit(Event{Kind: EventStep, Step: &stepEv})

	if ev, constraints, changed := s.floors.Update(corrected.Position); changed {
		s.corrector.SetFloorConstraints(constraints)
		if ev.Floor != nil {
			s.stairsDet.SetFloor(*ev.Floor)
		} else {
			s.stairsDet.SetFloor("")
		}
		s.emit(Event{Kind: EventFloorChange, FloorChange: &ev})
	}

	s.stairsDet.Update(corrected.Position, corrected.Heading)
	s.detectTurn(corrected)
}

func (s *Session) detectTurn(latest model.PathPoint) {
	s.mu.Lock()
	s.turnPoints.Push(latest)
	full := s.turnPoints.Full()
	pts := s.turnPoints.Items()
	s.mu.Unlock()
	if !full {
		return
	}

	threshold := geom.DegToRad(s.provider.TurnThresholdDeg(context.Background()))
	ev, ok := correction.DetectTurn(pts[:turnContextSize], pts[turnContextSize:], threshold)
	if !ok {
		return
	}

	s.mu.Lock()
	s.turnPoints.Reset()
	s.mu.Unlock()
	s.emit(Event{Kind: EventTurn, Turn: &ev})
}

func (s *Session) handleLabel(label model.ClassifierLabel) {
	ev, confirmed := s.stairsDet.OnLabel(label)
	if !confirmed {
		return
	}

	// Relocate the user to the stairwell exit on the destination floor.
	s.tracker.SetOrigin(ev.EndPosition, ev.ToFloor)
	s.floors.SetInitial(ev.ToFloor)
	s.stairsDet.SetFloor(ev.ToFloor)
	if cur, ok := s.floors.Current(); ok {
		s.corrector.SetFloorConstraints(cur.Constraints)
	} else {
		s.corrector.SetFloorConstraints(nil)
	}

	s.mu.Lock()
	s.turnPoints.Reset()
	s.mu.Unlock()

	s.emit(Event{Kind: EventStairTransition, Stair: &ev})
}

// persistedOrigin is the JSON shape stored under the last-origin key.
type persistedOrigin struct {
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	Floor model.FloorID `json:"floor"`
}

func (s *Session) persistOrigin(ctx context.Context, position orb.Point, floorID model.FloorID) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(persistedOrigin{X: position[0], Y: position[1], Floor: floorID})
	if err != nil {
		return
	}
	if err := s.store.SetState(ctx, config.KeyLastOrigin, string(data)); err != nil {
		s.logger.Warn("failed to persist session origin", "error", err)
	}
}

// LastOrigin returns the most recently persisted session origin.
func (s *Session) LastOrigin(ctx context.Context) (orb.Point, model.FloorID, bool) {
	if s.store == nil {
		return orb.Point{}, "", false
	}
	val, ok := s.store.GetState(ctx, config.KeyLastOrigin)
	if !ok {
		return orb.Point{}, "", false
	}
	var p persistedOrigin
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return orb.Point{}, "", false
	}
	return orb.Point{p.X, p.Y}, p.Floor, true
}
