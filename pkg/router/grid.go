// Package router plans walkable routes across floors. Each floor is
// rasterized into a coarse occupancy grid; paths are found with A* and
// stitched across stairwells.
package router

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"campusnav/pkg/config"
	"campusnav/pkg/geom"
	"campusnav/pkg/model"
)

// cell addresses one grid square.
type cell struct {
	x, y int
}

// Grid is the rasterized occupancy map of one floor. Cells outside the
// boundary or touched by a wall are blocked; walkable cells carry a
// movement cost that grows near walls, steering paths toward corridor
// centers.
type Grid struct {
	floor    model.FloorID
	origin   orb.Point
	cellSize float64
	width    int
	height   int
	blocked  []bool
	wallDist []float64 // campus units to the nearest blocked cell
	cost     []float64
}

// buildGrid rasterizes a floor. Wall rasterization is conservative: any
// cell whose center lies within half a cell diagonal of a wall segment
// is blocked, so no wall can slip between cell centers.
func buildGrid(b model.CampusBuilding, cfg config.RouterConfig) *Grid {
	minX, minY, maxX, maxY := boundsOf(b.Boundary)

	// One cell of padding so boundary cells have blocked neighbors.
	minX -= cfg.CellSize
	minY -= cfg.CellSize
	maxX += cfg.CellSize
	maxY += cfg.CellSize

	g := &Grid{
		floor:    b.Floor,
		origin:   orb.Point{minX, minY},
		cellSize: cfg.CellSize,
		width:    int(math.Ceil((maxX-minX)/cfg.CellSize)) + 1,
		height:   int(math.Ceil((maxY-minY)/cfg.CellSize)) + 1,
	}
	n := g.width * g.height
	g.blocked = make([]bool, n)
	g.wallDist = make([]float64, n)
	g.cost = make([]float64, n)

	wallRadius := cfg.CellSize * math.Sqrt2 / 2

	var walls []model.Wall
	if b.Constraints != nil {
		walls = b.Constraints.Walls
	}

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			center := g.center(cell{x, y})
			idx := g.index(cell{x, y})
			if !polygonsContain(b.Boundary, center) {
				g.blocked[idx] = true
				continue
			}
			for _, w := range walls {
				if geom.DistanceToSegment(center, w.A, w.B) <= wallRadius {
					g.blocked[idx] = true
					break
				}
			}
		}
	}

	g.computeWallDistance()
	for i := range g.cost {
		if !g.blocked[i] {
			g.cost[i] = 1 + cfg.WallPenalty/(1+g.wallDist[i])
		}
	}
	return g
}

// computeWallDistance runs a multi-source BFS from every blocked cell,
// measuring 4-connected distance in cells, then scales to campus units.
func (g *Grid) computeWallDistance() {
	const unvisited = -1
	dist := make([]int, len(g.blocked))
	queue := make([]cell, 0, len(g.blocked)/4)

	for i := range dist {
		if g.blocked[i] {
			dist[i] = 0
			queue = append(queue, cell{i % g.width, i / g.width})
		} else {
			dist[i] = unvisited
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		d := dist[g.index(c)]
		for _, nb := range [4]cell{{c.x, c.y - 1}, {c.x + 1, c.y}, {c.x, c.y + 1}, {c.x - 1, c.y}} {
			if !g.inBounds(nb) {
				continue
			}
			idx := g.index(nb)
			if dist[idx] == unvisited {
				dist[idx] = d + 1
				queue = append(queue, nb)
			}
		}
	}

	for i, d := range dist {
		if d > 0 {
			g.wallDist[i] = float64(d) * g.cellSize
		}
	}
}

func (g *Grid) index(c cell) int {
	return c.y*g.width + c.x
}

func (g *Grid) inBounds(c cell) bool {
	return c.x >= 0 && c.x < g.width && c.y >= 0 && c.y < g.height
}

func (g *Grid) walkable(c cell) bool {
	return g.inBounds(c) && !g.blocked[g.index(c)]
}

// center returns the campus coordinates of a cell's midpoint.
func (g *Grid) center(c cell) orb.Point {
	return orb.Point{
		g.origin[0] + (float64(c.x)+0.5)*g.cellSize,
		g.origin[1] + (float64(c.y)+0.5)*g.cellSize,
	}
}

// cellAt maps a campus point to the cell containing it.
func (g *Grid) cellAt(p orb.Point) (cell, bool) {
	c := cell{
		x: int(math.Floor((p[0] - g.origin[0]) / g.cellSize)),
		y: int(math.Floor((p[1] - g.origin[1]) / g.cellSize)),
	}
	return c, g.inBounds(c)
}

// nearestWalkable finds the walkable cell closest to p within radius
// campus units. Ties break on scan order (rows top to bottom, then
// columns left to right) so snapping is deterministic.
func (g *Grid) nearestWalkable(p orb.Point, radius float64) (cell, bool) {
	start, ok := g.cellAt(p)
	if !ok {
		return cell{}, false
	}
	if g.walkable(start) {
		return start, true
	}

	maxCells := int(math.Ceil(radius / g.cellSize))
	best := cell{}
	bestDist := math.Inf(1)
	found := false
	for dy := -maxCells; dy <= maxCells; dy++ {
		for dx := -maxCells; dx <= maxCells; dx++ {
			c := cell{start.x + dx, start.y + dy}
			if !g.walkable(c) {
				continue
			}
			if d := geom.Distance(p, g.center(c)); d <= radius && d < bestDist {
				best = c
				bestDist = d
				found = true
			}
		}
	}
	return best, found
}

func boundsOf(polys []orb.Polygon) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, ring := range poly {
			for _, p := range ring {
				minX = math.Min(minX, p[0])
				minY = math.Min(minY, p[1])
				maxX = math.Max(maxX, p[0])
				maxY = math.Max(maxY, p[1])
			}
		}
	}
	return minX, minY, maxX, maxY
}

func polygonsContain(polys []orb.Polygon, p orb.Point) bool {
	for _, poly := range polys {
		if len(poly) == 0 || len(poly[0]) < 3 {
			continue
		}
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return false
}
