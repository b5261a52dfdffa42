package flocking

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Placement is the initial state a Distribution hands out for one agent.
type Placement struct {
	Position geometry.Vector2D
	Heading  geometry.Vector2D
	Leader   bool
}

// Distribution supplies initial placements. Implementations own their
// random source so a run can be replayed from a seed.
type Distribution interface {
	Sample(id int) Placement
}

// NewRand returns a deterministic PCG-backed generator.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// UniformRect places agents uniformly in [-HalfWidth, HalfWidth) x [-HalfHeight, HalfHeight)
// facing a uniformly random direction.
type UniformRect struct {
	Rand       *rand.Rand
	HalfWidth  float64
	HalfHeight float64
}

func (u UniformRect) Sample(int) Placement {
	x := (u.Rand.Float64()*2 - 1) * u.HalfWidth
	y := (u.Rand.Float64()*2 - 1) * u.HalfHeight
	return Placement{
		Position: geometry.Vector2D{X: x, Y: y},
		Heading:  geometry.FromAngle(u.Rand.Float64() * 2 * math.Pi),
	}
}

// UniformDisk places agents uniformly (by area) inside a disk of Radius
// centered on the origin.
type UniformDisk struct {
	Rand   *rand.Rand
	Radius float64
}

func (u UniformDisk) Sample(int) Placement {
	r := u.Radius * math.Sqrt(u.Rand.Float64())
	theta := u.Rand.Float64() * 2 * math.Pi
	return Placement{
		Position: geometry.NewVectorPolar(r, theta),
		Heading:  geometry.FromAngle(u.Rand.Float64() * 2 * math.Pi),
	}
}

// WithLeader overrides agent ID with a fixed placement tagged as leader.
// Every other agent comes from Base.
type WithLeader struct {
	Base      Distribution
	ID        int
	Placement Placement
}

func (w WithLeader) Sample(id int) Placement {
	if id == w.ID {
		p := w.Placement
		p.Leader = true
		return p
	}
	p := w.Base.Sample(id)
	p.Leader = false
	return p
}

// Fixed hands out the given placements in order, mostly useful in tests and
// for replaying a recorded start state. Missing entries sit at the origin.
type Fixed []Placement

func (f Fixed) Sample(id int) Placement {
	if id < 0 || id >= len(f) {
		return Placement{Heading: geometry.UnitX}
	}
	return f[id]
}
