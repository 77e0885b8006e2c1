// Package boids implements a three-rule Reynolds flocking simulation in 3D.
//
// A Simulation advances a fixed set of agents in discrete steps. Each step
// runs three behavior rules (separation, alignment, cohesion) that
// accumulate a per-agent acceleration, then integrates: the acceleration is
// added to each agent's position and becomes its new velocity. Every rule
// queries its own kd-tree built over the positions the step started with,
// so rule order never changes which neighbors a rule sees.
package boids

import "gonum.org/v1/gonum/spatial/r3"

// Parameters are the six tunables of the flocking model: a field-of-view
// radius and a magnitude per rule. There is no validation; a zero or
// negative FOV disables its rule by emptying every neighbor set.
type Parameters struct {
	SeparationFOV float64
	SeparationMag float64
	AlignmentFOV  float64
	AlignmentMag  float64
	CohesionFOV   float64
	CohesionMag   float64
}

// Simulation holds the flock state: parallel position and velocity arrays
// indexed by agent, plus the acceleration accumulator for the current step.
// Methods are not safe for concurrent use.
type Simulation struct {
	pos []r3.Vec
	vel []r3.Vec
	acc []r3.Vec

	params Parameters

	index   pointIndex
	scratch []int
}

// New creates a simulation with one agent per starting position and all
// velocities zero. The input slice is copied.
func New(starting []r3.Vec) *Simulation {
	s := &Simulation{
		pos: make([]r3.Vec, len(starting)),
		vel: make([]r3.Vec, len(starting)),
		acc: make([]r3.Vec, len(starting)),
	}
	copy(s.pos, starting)
	return s
}

// SetParameters replaces the rule parameters. Safe to call between steps;
// agent state is unaffected.
func (s *Simulation) SetParameters(p Parameters) {
	s.params = p
}

// Parameters returns the current rule parameters.
func (s *Simulation) Parameters() Parameters {
	return s.params
}

// Len returns the number of agents.
func (s *Simulation) Len() int {
	return len(s.pos)
}

// Update advances the simulation by one step: it zeroes the acceleration
// accumulator, runs separation, alignment and cohesion in that order, then
// adds each agent's accumulated acceleration to its position and overwrites
// its velocity with that acceleration.
func (s *Simulation) Update() {
	if len(s.pos) == 0 {
		return
	}

	for i := range s.acc {
		s.acc[i] = r3.Vec{}
	}

	s.separate()
	s.align()
	s.cohere()

	for i := range s.pos {
		s.pos[i] = r3.Add(s.pos[i], s.acc[i])
		s.vel[i] = s.acc[i]
	}
}

// Positions returns a copy of the agent positions in index order.
func (s *Simulation) Positions() []r3.Vec {
	return s.PositionsInto(nil)
}

// PositionsInto copies the agent positions into dst, growing it if needed,
// and returns the filled slice.
func (s *Simulation) PositionsInto(dst []r3.Vec) []r3.Vec {
	if cap(dst) < len(s.pos) {
		dst = make([]r3.Vec, len(s.pos))
	}
	dst = dst[:len(s.pos)]
	copy(dst, s.pos)
	return dst
}

// Velocities returns a copy of the agent velocities in index order.
func (s *Simulation) Velocities() []r3.Vec {
	return s.VelocitiesInto(nil)
}

// VelocitiesInto copies the agent velocities into dst, growing it if
// needed, and returns the filled slice.
func (s *Simulation) VelocitiesInto(dst []r3.Vec) []r3.Vec {
	if cap(dst) < len(s.vel) {
		dst = make([]r3.Vec, len(s.vel))
	}
	dst = dst[:len(s.vel)]
	copy(dst, s.vel)
	return dst
}
