package router

import (
	"container/heap"
	"context"
	"math"
)

// Neighbor visit order is fixed so equal-cost searches always expand
// the same way: orthogonals first, clockwise from north, then the
// diagonals in the same rotation.
var neighborOffsets = [8]cell{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

const ctxCheckInterval = 1024

// openNode is one entry on the A* frontier.
type openNode struct {
	idx int
	f   float64
	h   float64
	seq int
}

// openHeap orders the frontier by f, breaking ties on h and finally on
// insertion sequence, which keeps the search fully deterministic.
type openHeap []openNode

func (o openHeap) Len() int { return len(o) }

func (o openHeap) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}

func (o openHeap) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openHeap) Push(x any) { *o = append(*o, x.(openNode)) }

func (o *openHeap) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}

// findPath runs A* between two walkable cells and returns the cell
// path, start and goal inclusive. A nil path means the goal is
// unreachable. The context is polled periodically so long searches can
// be cancelled.
func findPath(ctx context.Context, g *Grid, start, goal cell) ([]cell, error) {
	if !g.walkable(start) || !g.walkable(goal) {
		return nil, nil
	}

	n := g.width * g.height
	gScore := make([]float64, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		parent[i] = -1
	}

	startIdx := g.index(start)
	goalIdx := g.index(goal)
	gScore[startIdx] = 0

	open := &openHeap{}
	seq := 0
	h := octile(start, goal)
	heap.Push(open, openNode{idx: startIdx, f: h, h: h, seq: seq})

	pops := 0
	for open.Len() > 0 {
		pops++
		if pops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cur := heap.Pop(open).(openNode)
		if closed[cur.idx] {
			continue
		}
		closed[cur.idx] = true

		if cur.idx == goalIdx {
			return reconstruct(g, parent, goalIdx), nil
		}

		c := cell{cur.idx % g.width, cur.idx / g.width}
		for i, off := range neighborOffsets {
			nb := cell{c.x + off.x, c.y + off.y}
			if !g.walkable(nb) {
				continue
			}
			stepLen := 1.0
			if i >= 4 {
				// Diagonal moves must not cut wall corners: both
				// orthogonal neighbors have to be free.
				if !g.walkable(cell{c.x + off.x, c.y}) || !g.walkable(cell{c.x, c.y + off.y}) {
					continue
				}
				stepLen = math.Sqrt2
			}

			nbIdx := g.index(nb)
			tentative := gScore[cur.idx] + stepLen*g.cost[nbIdx]
			if tentative >= gScore[nbIdx] {
				continue
			}
			gScore[nbIdx] = tentative
			parent[nbIdx] = cur.idx
			seq++
			hn := octile(nb, goal)
			heap.Push(open, openNode{idx: nbIdx, f: tentative + hn, h: hn, seq: seq})
		}
	}

	return nil, nil
}

// octile is the admissible distance heuristic for 8-connected grids
// with unit base cost.
func octile(a, b cell) float64 {
	dx := math.Abs(float64(a.x - b.x))
	dy := math.Abs(float64(a.y - b.y))
	if dx < dy {
		dx, dy = dy, dx
	}
	return dx + (math.Sqrt2-1)*dy
}

func reconstruct(g *Grid, parent []int, goalIdx int) []cell {
	var rev []cell
	for idx := goalIdx; idx != -1; idx = parent[idx] {
		rev = append(rev, cell{idx % g.width, idx / g.width})
	}
	out := make([]cell, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return out
}
