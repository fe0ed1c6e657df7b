package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"campusnav/pkg/config"
	"campusnav/pkg/model"
)

var (
	// ErrNoPath means the two endpoints are not connected by walkable cells.
	ErrNoPath = errors.New("no walkable path between the requested points")
	// ErrNoEntrance means no entrance matched the room query.
	ErrNoEntrance = errors.New("no entrance matches the query")
	// ErrUnknownFloor means the floor id is not part of the loaded campus.
	ErrUnknownFloor = errors.New("unknown floor")
)

// Router plans routes over the loaded campus. Per-floor grids are built
// lazily on first use and cached until the floor data is replaced.
type Router struct {
	mu     sync.Mutex
	logger *slog.Logger
	cfg    config.RouterConfig

	floors     map[model.FloorID]model.CampusBuilding
	entrances  []model.Entrance
	stairs     []model.StairPair
	grids      map[model.FloorID]*Grid
	generation uint64
}

// NewRouter creates a router with no floor data; Route fails with
// ErrUnknownFloor until SupplyFloorData is called.
func NewRouter(cfg config.RouterConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger: logger,
		cfg:    cfg,
		floors: make(map[model.FloorID]model.CampusBuilding),
		grids:  make(map[model.FloorID]*Grid),
	}
}

// SupplyFloorData replaces the campus data wholesale. Every cached grid
// is invalidated; in-flight route computations finish against the grids
// they already hold.
func (r *Router) SupplyFloorData(buildings []model.CampusBuilding, stairs []model.StairPair, entrances []model.Entrance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.floors = make(map[model.FloorID]model.CampusBuilding, len(buildings))
	for _, b := range buildings {
		r.floors[b.Floor] = b
	}
	r.entrances = entrances
	r.stairs = stairs
	r.grids = make(map[model.FloorID]*Grid)
	r.generation++
	r.logger.Info("router floor data replaced",
		"floors", len(buildings), "stairs", len(stairs), "generation", r.generation)
}

// Generation returns how many times the floor data has been replaced.
func (r *Router) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// grid returns the cached grid for a floor, building it on first use.
func (r *Router) grid(floor model.FloorID) (*Grid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.grids[floor]; ok {
		return g, nil
	}
	b, ok := r.floors[floor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFloor, floor)
	}
	g := buildGrid(b, r.cfg)
	r.grids[floor] = g
	r.logger.Debug("floor grid built", "floor", floor, "width", g.width, "height", g.height)
	return g, nil
}

// GridInfo is a debug snapshot of one floor's occupancy grid.
type GridInfo struct {
	Floor    model.FloorID `json:"floor"`
	Origin   orb.Point     `json:"origin"`
	CellSize float64       `json:"cell_size"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Blocked  []bool        `json:"blocked"`
}

// Grid returns a debug snapshot of a floor's grid, building it if
// needed.
func (r *Router) Grid(floor model.FloorID) (GridInfo, error) {
	g, err := r.grid(floor)
	if err != nil {
		return GridInfo{}, err
	}
	blocked := make([]bool, len(g.blocked))
	copy(blocked, g.blocked)
	return GridInfo{
		Floor:    g.floor,
		Origin:   g.origin,
		CellSize: g.cellSize,
		Width:    g.width,
		Height:   g.height,
		Blocked:  blocked,
	}, nil
}

// ResolveEntrance finds the entrance matching query within a building
// (any building when the id is empty). Room numbers are matched first,
// exactly; names second, case-insensitively. The first match in load
// order wins.
func (r *Router) ResolveEntrance(building model.BuildingID, query string) (model.Entrance, error) {
	r.mu.Lock()
	entrances := r.entrances
	r.mu.Unlock()

	for _, ent := range entrances {
		if building != "" && ent.Building != building {
			continue
		}
		if ent.RoomNumber != "" && ent.RoomNumber == query {
			return ent, nil
		}
	}
	for _, ent := range entrances {
		if building != "" && ent.Building != building {
			continue
		}
		if ent.Name != "" && strings.EqualFold(ent.Name, query) {
			return ent, nil
		}
	}
	return model.Entrance{}, fmt.Errorf("%w: %q", ErrNoEntrance, query)
}

// RouteToRoom resolves a room query to an entrance and routes to it.
func (r *Router) RouteToRoom(ctx context.Context, startFloor model.FloorID, start orb.Point, building model.BuildingID, query string) (model.Route, error) {
	ent, err := r.ResolveEntrance(building, query)
	if err != nil {
		return nil, err
	}
	return r.Route(ctx, startFloor, start, ent.Floor, ent.Position)
}

// Route plans a path from start on startFloor to goal on goalFloor.
// Cross-floor routes are stitched through stairwells; each stair hop
// contributes a transition segment whose waypoints are exactly the two
// stairwell anchor positions.
func (r *Router) Route(ctx context.Context, startFloor model.FloorID, start orb.Point, goalFloor model.FloorID, goal orb.Point) (model.Route, error) {
	if startFloor == goalFloor {
		seg, err := r.routeOnFloor(ctx, startFloor, start, goal)
		if err != nil {
			return nil, err
		}
		return model.Route{seg}, nil
	}

	hops, err := r.stairPath(startFloor, goalFloor)
	if err != nil {
		return nil, err
	}

	var route model.Route
	pos := start
	floorID := startFloor
	for _, hop := range hops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		from, to, nextFloor := stairExit(hop, floorID)
		seg, err := r.routeOnFloor(ctx, floorID, pos, from)
		if err != nil {
			return nil, err
		}
		route = append(route, seg)
		trans, err := r.transitionSegment(nextFloor, from, to)
		if err != nil {
			return nil, err
		}
		route = append(route, trans)

		pos = to
		floorID = nextFloor
	}

	seg, err := r.routeOnFloor(ctx, floorID, pos, goal)
	if err != nil {
		return nil, err
	}
	route = append(route, seg)
	return route, nil
}

// routeOnFloor runs the grid search for one floor and converts the cell
// path into waypoints anchored on the exact endpoints.
func (r *Router) routeOnFloor(ctx context.Context, floorID model.FloorID, start, goal orb.Point) (model.FloorPathSegment, error) {
	g, err := r.grid(floorID)
	if err != nil {
		return model.FloorPathSegment{}, err
	}

	startCell, ok := g.nearestWalkable(start, r.cfg.SnapRadius)
	if !ok {
		return model.FloorPathSegment{}, fmt.Errorf("%w: start unreachable on %s", ErrNoPath, floorID)
	}
	goalCell, ok := g.nearestWalkable(goal, r.cfg.SnapRadius)
	if !ok {
		return model.FloorPathSegment{}, fmt.Errorf("%w: goal unreachable on %s", ErrNoPath, floorID)
	}

	cells, err := findPath(ctx, g, startCell, goalCell)
	if err != nil {
		return model.FloorPathSegment{}, err
	}
	if cells == nil {
		return model.FloorPathSegment{}, fmt.Errorf("%w: %s", ErrNoPath, floorID)
	}

	b := r.building(floorID)
	return model.FloorPathSegment{
		Floor:       floorID,
		FloorNumber: b.FloorNumber,
		Building:    b.Building,
		Waypoints:   waypoints(g, cells, start, goal),
	}, nil
}

// transitionSegment is the stair connector. It carries the destination
// floor's identity so a client following the route knows where the
// stairs land.
func (r *Router) transitionSegment(toFloor model.FloorID, from, to orb.Point) (model.FloorPathSegment, error) {
	b := r.building(toFloor)
	if b.Floor == "" {
		return model.FloorPathSegment{}, fmt.Errorf("%w: %s", ErrUnknownFloor, toFloor)
	}
	return model.FloorPathSegment{
		Floor:        toFloor,
		FloorNumber:  b.FloorNumber,
		Building:     b.Building,
		Waypoints:    []orb.Point{from, to},
		IsTransition: true,
	}, nil
}

func (r *Router) building(floorID model.FloorID) model.CampusBuilding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.floors[floorID]
}

// stairPath finds the shortest stairwell sequence between two floors
// with a BFS over the floor adjacency graph. Stair order in the campus
// data breaks ties, so the result is stable across runs.
func (r *Router) stairPath(from, to model.FloorID) ([]model.StairPair, error) {
	r.mu.Lock()
	stairs := r.stairs
	_, fromKnown := r.floors[from]
	_, toKnown := r.floors[to]
	r.mu.Unlock()

	if !fromKnown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFloor, from)
	}
	if !toKnown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFloor, to)
	}

	type hop struct {
		floor model.FloorID
		via   int // index into stairs
		prev  int // index into visited order, -1 for origin
	}
	visited := []hop{{floor: from, via: -1, prev: -1}}
	seen := map[model.FloorID]bool{from: true}

	for i := 0; i < len(visited); i++ {
		cur := visited[i]
		if cur.floor == to {
			var rev []model.StairPair
			for j := i; visited[j].via != -1; j = visited[j].prev {
				rev = append(rev, stairs[visited[j].via])
			}
			out := make([]model.StairPair, len(rev))
			for k, s := range rev {
				out[len(rev)-1-k] = s
			}
			return out, nil
		}
		for si, s := range stairs {
			var next model.FloorID
			switch cur.floor {
			case s.BottomFloor:
				next = s.TopFloor
			case s.TopFloor:
				next = s.BottomFloor
			default:
				continue
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			visited = append(visited, hop{floor: next, via: si, prev: i})
		}
	}
	return nil, fmt.Errorf("%w: no stairwell chain from %s to %s", ErrNoPath, from, to)
}

// stairExit orients a stair pair relative to the floor being left:
// from is the anchor on that floor, to and nextFloor the other end.
func stairExit(s model.StairPair, floorID model.FloorID) (from, to orb.Point, nextFloor model.FloorID) {
	if s.BottomFloor == floorID {
		return s.BottomPosition, s.TopPosition, s.TopFloor
	}
	return s.TopPosition, s.BottomPosition, s.BottomFloor
}

// waypoints converts a cell path to campus points, replacing the first
// and last cell centers with the exact endpoints and dropping collinear
// intermediate cells.
func waypoints(g *Grid, cells []cell, start, goal orb.Point) []orb.Point {
	pts := []orb.Point{start}
	for i := 1; i < len(cells)-1; i++ {
		prev := cells[i-1]
		cur := cells[i]
		next := cells[i+1]
		if cur.x-prev.x == next.x-cur.x && cur.y-prev.y == next.y-cur.y {
			continue
		}
		pts = append(pts, g.center(cur))
	}
	pts = append(pts, goal)
	return pts
}
