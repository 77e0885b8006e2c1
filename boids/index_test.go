package boids

import (
	"math/rand"
	"sort"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func randomPositions(n int, extent float64, seed int64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * extent,
			Y: (rng.Float64()*2 - 1) * extent,
			Z: (rng.Float64()*2 - 1) * extent,
		}
	}
	return pts
}

// bruteWithin is the reference query: an exhaustive scan using the same
// squared-distance comparison and higher-index restriction as the index.
func bruteWithin(pos []r3.Vec, i int, radius float64) []int {
	var out []int
	if radius <= 0 {
		return out
	}
	rsq := radius * radius
	for j := i + 1; j < len(pos); j++ {
		if r3.Norm2(r3.Sub(pos[j], pos[i])) <= rsq {
			out = append(out, j)
		}
	}
	return out
}

func TestWithinMatchesBruteForce(t *testing.T) {
	pos := randomPositions(200, 10, 1)

	var idx pointIndex
	idx.rebuild(pos)

	var got []int
	for _, radius := range []float64{0.5, 2, 5, 25} {
		for i := range pos {
			got = idx.within(got, pos[i], i, radius)
			want := bruteWithin(pos, i, radius)

			sort.Ints(got)
			if len(got) != len(want) {
				t.Fatalf("radius %v agent %d: expected %d neighbors, got %d", radius, i, len(want), len(got))
			}
			for k := range want {
				if got[k] != want[k] {
					t.Fatalf("radius %v agent %d: expected neighbors %v, got %v", radius, i, want, got)
				}
			}
		}
	}
}

func TestWithinNonPositiveRadius(t *testing.T) {
	pos := randomPositions(50, 5, 2)

	var idx pointIndex
	idx.rebuild(pos)

	for _, radius := range []float64{0, -1, -3.5} {
		for i := range pos {
			if got := idx.within(nil, pos[i], i, radius); len(got) != 0 {
				t.Errorf("radius %v agent %d: expected empty neighbor set, got %v", radius, i, got)
			}
		}
	}
}

func TestWithinExcludesSelfAndLower(t *testing.T) {
	pos := []r3.Vec{{}, {X: 0.1}, {X: 0.2}, {X: 0.3}}

	var idx pointIndex
	idx.rebuild(pos)

	for i := range pos {
		got := idx.within(nil, pos[i], i, 10)
		if len(got) != len(pos)-i-1 {
			t.Errorf("agent %d: expected %d neighbors, got %v", i, len(pos)-i-1, got)
		}
		for _, j := range got {
			if j <= i {
				t.Errorf("agent %d: neighbor %d violates the higher-index restriction", i, j)
			}
		}
	}
}

func TestWithinBoundaryInclusive(t *testing.T) {
	pos := []r3.Vec{{}, {X: 2}}

	var idx pointIndex
	idx.rebuild(pos)

	if got := idx.within(nil, pos[0], 0, 2); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected the agent exactly at the radius to be included, got %v", got)
	}
}

func TestRebuildReuse(t *testing.T) {
	// Rebuilding over new positions must fully replace the old tree.
	a := []r3.Vec{{}, {X: 1}}
	b := []r3.Vec{{}, {X: 100}}

	var idx pointIndex
	idx.rebuild(a)
	if got := idx.within(nil, a[0], 0, 2); len(got) != 1 {
		t.Fatalf("expected 1 neighbor before rebuild, got %v", got)
	}

	idx.rebuild(b)
	if got := idx.within(nil, b[0], 0, 2); len(got) != 0 {
		t.Errorf("expected no neighbors after rebuild, got %v", got)
	}
}

func BenchmarkIndexRebuild(b *testing.B) {
	pos := randomPositions(1000, 50, 3)
	var idx pointIndex

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.rebuild(pos)
	}
}

func BenchmarkWithin(b *testing.B) {
	pos := randomPositions(1000, 50, 4)
	var idx pointIndex
	idx.rebuild(pos)

	var dst []int
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := i % len(pos)
		dst = idx.within(dst, pos[q], q, 10)
	}
}
