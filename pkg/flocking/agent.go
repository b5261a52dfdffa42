package flocking

import (
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Agent is one boid.
// ID is the agent's slot in its AgentStore and never changes.
// Leader is a display tag for renderers and diagnostics, physics ignore it.
type Agent struct {
	ID            int
	Position      geometry.Vector2D
	Heading       geometry.Vector2D // unit length
	TargetHeading geometry.Vector2D // unit length, written by the FlockingEngine
	Leader        bool
}

// Bounds is the size of the toroidal world, centered on the origin.
type Bounds struct {
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
}

// Contains reports whether p lies in [-W/2, W/2] x [-H/2, H/2].
func (b Bounds) Contains(p geometry.Vector2D) bool {
	hw, hh := b.Width/2, b.Height/2
	return p.X >= -hw && p.X <= hw && p.Y >= -hh && p.Y <= hh
}

// AgentStore holds the authoritative state of a fixed population.
type AgentStore struct {
	agents []Agent
}

// NewAgentStore adopts agents, renumbering IDs to their slot index and
// normalizing headings. A missing target heading starts equal to the heading.
func NewAgentStore(agents []Agent) *AgentStore {
	s := &AgentStore{agents: make([]Agent, len(agents))}
	for i, a := range agents {
		a.ID = i
		a.Heading = unitOrDefault(a.Heading)
		if a.TargetHeading.IsZero() || !a.TargetHeading.IsFinite() {
			a.TargetHeading = a.Heading
		} else {
			a.TargetHeading = unitOrDefault(a.TargetHeading)
		}
		s.agents[i] = a
	}
	return s
}

// Initialize creates population agents placed by dist.
// The store does not own any random source; dist does. Placements outside
// bounds are teleported inside exactly as BoundaryWrap would.
func Initialize(population int, bounds Bounds, dist Distribution) *AgentStore {
	if population < 0 {
		population = 0
	}
	agents := make([]Agent, population)
	for i := range agents {
		p := dist.Sample(i)
		agents[i] = Agent{
			Position: wrapPosition(p.Position, bounds.Width/2, bounds.Height/2),
			Heading:  p.Heading,
			Leader:   p.Leader,
		}
	}
	return NewAgentStore(agents)
}

// Len returns the population size.
func (s *AgentStore) Len() int {
	return len(s.agents)
}

// At returns a copy of agent id.
func (s *AgentStore) At(id int) (Agent, bool) {
	if id < 0 || id >= len(s.agents) {
		return Agent{}, false
	}
	return s.agents[id], true
}

// Snapshot copies every agent, ordered by ID.
func (s *AgentStore) Snapshot() []Agent {
	out := make([]Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Leaders returns copies of the agents tagged as leader.
func (s *AgentStore) Leaders() []Agent {
	var out []Agent
	for _, a := range s.agents {
		if a.Leader {
			out = append(out, a)
		}
	}
	return out
}

// Place moves agent id and resets both its heading and target heading.
func (s *AgentStore) Place(id int, pos, heading geometry.Vector2D) bool {
	if id < 0 || id >= len(s.agents) {
		return false
	}
	h := unitOrDefault(heading)
	s.agents[id].Position = pos
	s.agents[id].Heading = h
	s.agents[id].TargetHeading = h
	return true
}

// SetLeader toggles the display tag of agent id.
func (s *AgentStore) SetLeader(id int, leader bool) bool {
	if id < 0 || id >= len(s.agents) {
		return false
	}
	s.agents[id].Leader = leader
	return true
}

// slice exposes the backing array to the pipeline phases of this package.
func (s *AgentStore) slice() []Agent {
	return s.agents
}

func unitOrDefault(v geometry.Vector2D) geometry.Vector2D {
	n := v.Normalize()
	if n.IsZero() {
		return geometry.UnitX
	}
	return n
}
