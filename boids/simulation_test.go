package boids

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func almostEqual(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestNewZeroVelocities(t *testing.T) {
	starting := []r3.Vec{{X: 1}, {Y: 2}, {Z: 3}}
	s := New(starting)

	if s.Len() != 3 {
		t.Fatalf("expected 3 agents, got %d", s.Len())
	}
	for i, p := range s.Positions() {
		if p != starting[i] {
			t.Errorf("agent %d: expected position %v, got %v", i, starting[i], p)
		}
	}
	for i, v := range s.Velocities() {
		if v != (r3.Vec{}) {
			t.Errorf("agent %d: expected zero velocity, got %v", i, v)
		}
	}
}

func TestSeparationPair(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 1}})
	s.SetParameters(Parameters{SeparationFOV: 2, SeparationMag: 1})
	s.Update()

	pos := s.Positions()
	vel := s.Velocities()

	// delta=(1,0,0), dist=1: push = 0.5*(1-2)/1 * delta = (-0.5,0,0) on
	// agent 0, mirrored on agent 1.
	if want := (r3.Vec{X: -0.5}); vel[0] != want {
		t.Errorf("expected velocity %v for agent 0, got %v", want, vel[0])
	}
	if want := (r3.Vec{X: 0.5}); vel[1] != want {
		t.Errorf("expected velocity %v for agent 1, got %v", want, vel[1])
	}
	if want := (r3.Vec{X: -0.5}); pos[0] != want {
		t.Errorf("expected position %v for agent 0, got %v", want, pos[0])
	}
	if want := (r3.Vec{X: 1.5}); pos[1] != want {
		t.Errorf("expected position %v for agent 1, got %v", want, pos[1])
	}
}

func TestSeparationReactionPair(t *testing.T) {
	s := New([]r3.Vec{{X: 0.3, Y: -0.2, Z: 1.1}, {X: -0.6, Y: 0.9, Z: 0.4}})
	s.SetParameters(Parameters{SeparationFOV: 5, SeparationMag: 1.7})
	s.Update()

	vel := s.Velocities()
	if vel[0] == (r3.Vec{}) {
		t.Fatal("expected a nonzero separation force")
	}
	if got := r3.Add(vel[0], vel[1]); !almostEqual(got, r3.Vec{}, 1e-15) {
		t.Errorf("expected equal and opposite forces, got sum %v", got)
	}
}

func TestSeparationOutOfRange(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 5}})
	s.SetParameters(Parameters{SeparationFOV: 2, SeparationMag: 1})
	s.Update()

	pos := s.Positions()
	if pos[0] != (r3.Vec{}) || pos[1] != (r3.Vec{X: 5}) {
		t.Errorf("expected positions unchanged, got %v", pos)
	}
	for i, v := range s.Velocities() {
		if v != (r3.Vec{}) {
			t.Errorf("agent %d: expected zero velocity, got %v", i, v)
		}
	}
}

func TestSeparationZeroAtBoundary(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 2}})
	s.SetParameters(Parameters{SeparationFOV: 2, SeparationMag: 1})
	s.Update()

	for i, v := range s.Velocities() {
		if v != (r3.Vec{}) {
			t.Errorf("agent %d: expected zero force at the FOV boundary, got %v", i, v)
		}
	}
}

func TestSeparationMonotonic(t *testing.T) {
	var prev float64
	for _, d := range []float64{1.8, 1.2, 0.6, 0.1} {
		s := New([]r3.Vec{{}, {X: d}})
		s.SetParameters(Parameters{SeparationFOV: 2, SeparationMag: 1})
		s.Update()

		force := r3.Norm(s.Velocities()[0])
		if force <= prev {
			t.Errorf("distance %v: expected repulsion above %v, got %v", d, prev, force)
		}
		prev = force
	}
}

func TestSeparationCoincident(t *testing.T) {
	p := r3.Vec{X: 1, Y: 1, Z: 1}
	s := New([]r3.Vec{p, p})
	s.SetParameters(Parameters{SeparationFOV: 2, SeparationMag: 1})
	s.Update()

	for i, v := range s.Velocities() {
		if v != (r3.Vec{}) {
			t.Errorf("agent %d: expected zero force for coincident agents, got %v", i, v)
		}
	}
	for i, got := range s.Positions() {
		if got != p {
			t.Errorf("agent %d: expected position unchanged, got %v", i, got)
		}
	}
}

func TestCohesionHigherIndexOnly(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 1}, {X: 2}})
	s.SetParameters(Parameters{CohesionFOV: 100, CohesionMag: 1})
	s.Update()

	vel := s.Velocities()

	// Agent 0 sees 1 and 2 (centroid x=1.5), agent 1 sees only 2
	// (centroid x=2), agent 2 sees nobody.
	want := []r3.Vec{{X: 1.5}, {X: 1}, {}}
	for i := range want {
		if !almostEqual(vel[i], want[i], 1e-12) {
			t.Errorf("agent %d: expected velocity %v, got %v", i, want[i], vel[i])
		}
	}
}

func TestAlignmentHigherIndexOnly(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 1}})
	s.vel[1] = r3.Vec{X: 3, Y: -1}
	s.SetParameters(Parameters{AlignmentFOV: 10, AlignmentMag: 2})
	s.Update()

	vel := s.Velocities()

	// Agent 0 picks up agent 1's velocity scaled by the magnitude. Agent 1
	// has no higher-indexed neighbor, so its acceleration is zero and the
	// integrator overwrites its old velocity with zero.
	want := r3.Vec{X: 6, Y: -2}
	if !almostEqual(vel[0], want, 1e-12) {
		t.Errorf("expected velocity %v for agent 0, got %v", want, vel[0])
	}
	if vel[1] != (r3.Vec{}) {
		t.Errorf("expected zero velocity for agent 1, got %v", vel[1])
	}
}

func TestAlignmentAveragesNeighbors(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 1}, {X: -1}})
	s.vel[1] = r3.Vec{X: 4}
	s.vel[2] = r3.Vec{X: 2, Y: 6}
	s.SetParameters(Parameters{AlignmentFOV: 10, AlignmentMag: 1})
	s.Update()

	want := r3.Vec{X: 3, Y: 3}
	if got := s.Velocities()[0]; !almostEqual(got, want, 1e-12) {
		t.Errorf("expected mean neighbor velocity %v for agent 0, got %v", want, got)
	}
}

func TestIsolatedAgentsUnaffected(t *testing.T) {
	s := New([]r3.Vec{{X: -50}, {X: 50}})
	s.SetParameters(Parameters{
		SeparationFOV: 2, SeparationMag: 1,
		AlignmentFOV: 3, AlignmentMag: 1,
		CohesionFOV: 4, CohesionMag: 1,
	})
	s.Update()

	pos := s.Positions()
	if pos[0] != (r3.Vec{X: -50}) || pos[1] != (r3.Vec{X: 50}) {
		t.Errorf("expected isolated agents to stay put, got %v", pos)
	}
}

func TestIntegrationLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	starting := make([]r3.Vec, 64)
	for i := range starting {
		starting[i] = r3.Vec{
			X: rng.Float64()*20 - 10,
			Y: rng.Float64()*20 - 10,
			Z: rng.Float64()*20 - 10,
		}
	}

	s := New(starting)
	s.SetParameters(Parameters{
		SeparationFOV: 3, SeparationMag: 0.8,
		AlignmentFOV: 5, AlignmentMag: 0.4,
		CohesionFOV: 8, CohesionMag: 0.1,
	})

	before := s.Positions()
	s.Update()
	after := s.Positions()
	vel := s.Velocities()

	// The step adds the accumulated acceleration to the position and stores
	// the same vector as the new velocity, so after == before + vel exactly.
	for i := range after {
		if want := r3.Add(before[i], vel[i]); after[i] != want {
			t.Errorf("agent %d: expected position %v, got %v", i, want, after[i])
		}
	}
}

func TestEmptySimulation(t *testing.T) {
	s := New(nil)
	s.SetParameters(Parameters{SeparationFOV: 2, SeparationMag: 1})
	s.Update()

	if s.Len() != 0 {
		t.Errorf("expected 0 agents, got %d", s.Len())
	}
	if got := s.Positions(); len(got) != 0 {
		t.Errorf("expected no positions, got %v", got)
	}
}

func TestNegativeFOVDisablesRule(t *testing.T) {
	s := New([]r3.Vec{{}, {X: 1}})
	s.SetParameters(Parameters{SeparationFOV: -2, SeparationMag: 1})
	s.Update()

	for i, v := range s.Velocities() {
		if v != (r3.Vec{}) {
			t.Errorf("agent %d: expected no force with negative FOV, got %v", i, v)
		}
	}
}

func TestSetParameters(t *testing.T) {
	s := New([]r3.Vec{{}})
	p := Parameters{
		SeparationFOV: 1, SeparationMag: 2,
		AlignmentFOV: 3, AlignmentMag: 4,
		CohesionFOV: 5, CohesionMag: 6,
	}
	s.SetParameters(p)
	if got := s.Parameters(); got != p {
		t.Errorf("expected parameters %+v, got %+v", p, got)
	}
}

func TestPositionsCopy(t *testing.T) {
	s := New([]r3.Vec{{X: 1}})

	pos := s.Positions()
	pos[0] = r3.Vec{X: 99}
	if got := s.Positions()[0]; got != (r3.Vec{X: 1}) {
		t.Errorf("expected internal position unchanged, got %v", got)
	}

	vel := s.Velocities()
	vel[0] = r3.Vec{X: 99}
	if got := s.Velocities()[0]; got != (r3.Vec{}) {
		t.Errorf("expected internal velocity unchanged, got %v", got)
	}
}

func BenchmarkUpdate(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	starting := make([]r3.Vec, 1000)
	for i := range starting {
		starting[i] = r3.Vec{
			X: rng.Float64()*100 - 50,
			Y: rng.Float64()*100 - 50,
			Z: rng.Float64()*100 - 50,
		}
	}

	s := New(starting)
	s.SetParameters(Parameters{
		SeparationFOV: 4, SeparationMag: 1,
		AlignmentFOV: 6, AlignmentMag: 0.5,
		CohesionFOV: 10, CohesionMag: 0.08,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Update()
	}
}
