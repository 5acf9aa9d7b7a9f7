package main

import (
	"math"

	astar "github.com/beefsack/go-astar"
)

const (
	NavCellSize   = 40.0 // world units per grid cell
	NavWallMargin = 16.0 // clearance kept around walls
)

// Navigator plans a path between two points. It returns the waypoints
// after start, ending at goal, or nil when goal is unreachable.
type Navigator interface {
	FindPath(start, goal Vec2) []Vec2
}

// DirectNavigator drives straight at the goal
type DirectNavigator struct{}

func (DirectNavigator) FindPath(start, goal Vec2) []Vec2 {
	return []Vec2{goal}
}

type gridCell struct{ X, Y int }

// navTile is one grid cell as an astar.Pather
type navTile struct {
	g    *GridNavigator
	cell gridCell
}

var navSteps = [8]gridCell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func (t *navTile) PathNeighbors() []astar.Pather {
	g, c := t.g, t.cell
	out := make([]astar.Pather, 0, len(navSteps))
	for _, s := range navSteps {
		next := gridCell{c.X + s.X, c.Y + s.Y}
		if !g.open(next) {
			continue
		}
		// no corner cutting past walls
		if s.X != 0 && s.Y != 0 && (!g.open(gridCell{c.X + s.X, c.Y}) || !g.open(gridCell{c.X, c.Y + s.Y})) {
			continue
		}
		out = append(out, g.tile(next))
	}
	return out
}

func (t *navTile) PathNeighborCost(to astar.Pather) float64 {
	n := to.(*navTile).cell
	if n.X != t.cell.X && n.Y != t.cell.Y {
		return math.Sqrt2
	}
	return 1
}

// PathEstimatedCost is the octile distance
func (t *navTile) PathEstimatedCost(to astar.Pather) float64 {
	n := to.(*navTile).cell
	dx, dy := math.Abs(float64(n.X-t.cell.X)), math.Abs(float64(n.Y-t.cell.Y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}

// GridNavigator runs 8-way A* over a coarse occupancy grid of the
// arena's walls
type GridNavigator struct {
	cell    float64
	cols    int
	rows    int
	blocked []bool
	tiles   []*navTile
}

// NewGridNavigator rasterizes the arena's Wall hitboxes
func NewGridNavigator(arena *Arena, cell float64) *GridNavigator {
	if cell <= 0 {
		cell = NavCellSize
	}
	g := &GridNavigator{
		cell: cell,
		cols: max(1, int(math.Ceil(arena.Width/cell))),
		rows: max(1, int(math.Ceil(arena.Height/cell))),
	}
	g.blocked = make([]bool, g.cols*g.rows)
	g.tiles = make([]*navTile, g.cols*g.rows)
	ix := NewHitboxIndex(arena.Sorted())
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			c := gridCell{x, y}
			g.tiles[y*g.cols+x] = &navTile{g: g, cell: c}
			probe := Collider{Pos: g.center(c), Width: cell + 2*NavWallMargin, Height: cell + 2*NavWallMargin}
			for _, hb := range ix.QueryCollider(probe, 0) {
				if hb.Obstacle == ObstacleWall && Intersects(probe, hb.Collider()) {
					g.blocked[y*g.cols+x] = true
					break
				}
			}
		}
	}
	return g
}

func (g *GridNavigator) tile(c gridCell) *navTile { return g.tiles[c.Y*g.cols+c.X] }

func (g *GridNavigator) center(c gridCell) Vec2 {
	return Vec2{(float64(c.X) + 0.5) * g.cell, (float64(c.Y) + 0.5) * g.cell}
}

func (g *GridNavigator) cellOf(p Vec2) gridCell {
	return gridCell{
		X: int(Clamp(math.Floor(p.X/g.cell), 0, float64(g.cols-1))),
		Y: int(Clamp(math.Floor(p.Y/g.cell), 0, float64(g.rows-1))),
	}
}

func (g *GridNavigator) open(c gridCell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.cols && c.Y < g.rows && !g.blocked[c.Y*g.cols+c.X]
}

// Blocked reports whether the cell containing p is inside a wall
func (g *GridNavigator) Blocked(p Vec2) bool {
	return !g.open(g.cellOf(p))
}

func (g *GridNavigator) FindPath(start, goal Vec2) []Vec2 {
	from, to := g.cellOf(start), g.cellOf(goal)
	if !g.open(to) {
		return nil
	}
	if from == to {
		return []Vec2{goal}
	}
	tiles, _, found := astar.Path(g.tile(from), g.tile(to))
	if !found {
		return nil
	}
	// tiles runs goal first back to start; the start and goal cells are
	// replaced by the exact goal point
	path := make([]Vec2, 0, len(tiles))
	for i := len(tiles) - 2; i > 0; i-- {
		path = append(path, g.center(tiles[i].(*navTile).cell))
	}
	return append(path, goal)
}
