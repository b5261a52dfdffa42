package flocking

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// maxCellIndex keeps cell coordinates far from int overflow when the 3x3
// block adds or subtracts one.
const maxCellIndex = math.MaxInt32

// CellKey is the integer coordinate of one grid cell: floor(position / cellSize).
type CellKey struct {
	X, Y int
}

// Neighbor is the copy of an agent the grid hands out during steering.
// It is a snapshot, later writes to the agent do not show up here.
type Neighbor struct {
	ID       int
	Position geometry.Vector2D
	Heading  geometry.Vector2D
}

// SpatialHashGrid buckets agents by cell so that neighbor lookups only touch
// the 3x3 block of cells around a query instead of the whole population.
// It is rebuilt from scratch every tick and is read-only between rebuilds.
type SpatialHashGrid struct {
	cellSize float64
	cells    map[CellKey][]Neighbor
	indexed  int
}

// NewSpatialHashGrid returns an empty grid.
func NewSpatialHashGrid() *SpatialHashGrid {
	return &SpatialHashGrid{
		cells: make(map[CellKey][]Neighbor),
	}
}

// Rebuild drops every previous record and buckets agents by cell, in ID order.
// Agents with a non-finite position get no bucket and therefore never show
// up as anybody's neighbor. A non-positive cellSize leaves the grid empty.
func (g *SpatialHashGrid) Rebuild(agents []Agent, cellSize float64) {
	// Reset slices to length 0 but keep their capacity, so a steady flock
	// rebuilds with almost no allocation.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	g.indexed = 0
	g.cellSize = cellSize

	if !finite(cellSize) || cellSize <= 0 {
		clear(g.cells)
		return
	}

	for _, a := range agents {
		key, ok := g.CellOf(a.Position)
		if !ok {
			continue
		}
		g.cells[key] = append(g.cells[key], Neighbor{
			ID:       a.ID,
			Position: a.Position,
			Heading:  a.Heading,
		})
		g.indexed++
	}

	// A cell nobody occupies must be absent, not an empty bucket.
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
		}
	}
}

// CellOf maps a position to its cell. ok is false for positions that cannot
// be indexed: non-finite coordinates, or coordinates too far from the origin.
func (g *SpatialHashGrid) CellOf(p geometry.Vector2D) (CellKey, bool) {
	if g.cellSize <= 0 || !p.IsFinite() {
		return CellKey{}, false
	}
	cx := math.Floor(p.X / g.cellSize)
	cy := math.Floor(p.Y / g.cellSize)
	if math.Abs(cx) > maxCellIndex || math.Abs(cy) > maxCellIndex {
		return CellKey{}, false
	}
	return CellKey{X: int(cx), Y: int(cy)}, true
}

// NeighborsInBlock returns every record in the 3x3 block centered on center.
// Order is deterministic: dx then dy from -1 to 1, bucket order inside a cell.
func (g *SpatialHashGrid) NeighborsInBlock(center CellKey) []Neighbor {
	return g.AppendNeighborsInBlock(nil, center)
}

// AppendNeighborsInBlock is NeighborsInBlock appending into dst, so a caller
// can recycle one buffer across many queries.
func (g *SpatialHashGrid) AppendNeighborsInBlock(dst []Neighbor, center CellKey) []Neighbor {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if bucket, ok := g.cells[CellKey{X: center.X + dx, Y: center.Y + dy}]; ok {
				dst = append(dst, bucket...)
			}
		}
	}
	return dst
}

// Cells lists the occupied cells sorted by X then Y.
func (g *SpatialHashGrid) Cells() []CellKey {
	keys := make([]CellKey, 0, len(g.cells))
	for k := range g.cells {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b CellKey) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Y - b.Y
	})
	return keys
}

// Bucket returns a copy of the records stored in one cell.
func (g *SpatialHashGrid) Bucket(key CellKey) []Neighbor {
	return slices.Clone(g.cells[key])
}

// Len is the number of agents indexed by the last Rebuild.
func (g *SpatialHashGrid) Len() int {
	return g.indexed
}

// CellSize is the cell size used by the last Rebuild.
func (g *SpatialHashGrid) CellSize() float64 {
	return g.cellSize
}
