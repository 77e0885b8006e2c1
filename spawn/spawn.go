// Package spawn generates starting positions for the flock.
//
// Generators are deterministic for a given seed: the same seed always yields
// the same positions, which keeps runs reproducible across resets and
// parameter sweeps.
package spawn

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flock/config"
)

// Spawn modes.
const (
	ModeUniform   = "uniform"
	ModeClustered = "clustered"
)

// rejectBudgetPerAgent bounds rejection sampling in Clustered so a threshold
// above the noise range degrades to uniform instead of spinning.
const rejectBudgetPerAgent = 256

// FromConfig generates starting positions using the configured spawn mode.
func FromConfig(cfg *config.Config, seed int64) []r3.Vec {
	w := cfg.World
	switch cfg.Spawn.Mode {
	case ModeClustered:
		return Clustered(w.Agents, w.Extent, seed, cfg.Spawn.NoiseScale, cfg.Spawn.NoiseThreshold)
	default:
		return Uniform(w.Agents, w.Extent, seed)
	}
}

// Uniform draws n positions uniformly from the cube [-extent, extent] on
// each axis.
func Uniform(n int, extent float64, seed int64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vec, n)
	for i := range pts {
		pts[i] = sample(rng, extent)
	}
	return pts
}

// Clustered draws n positions from the dense patches of a smooth noise field
// over the spawn cube: candidates are sampled uniformly and kept only where
// normalized noise meets threshold, producing patchy starting flocks.
// noiseScale sets the patch size (higher = smaller patches).
func Clustered(n int, extent float64, seed int64, noiseScale, threshold float64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	noise := opensimplex.NewNormalized(seed)

	pts := make([]r3.Vec, 0, n)
	rejects := 0
	for len(pts) < n {
		p := sample(rng, extent)
		if rejects < n*rejectBudgetPerAgent &&
			noise.Eval3(p.X*noiseScale, p.Y*noiseScale, p.Z*noiseScale) < threshold {
			rejects++
			continue
		}
		pts = append(pts, p)
	}
	return pts
}

func sample(rng *rand.Rand, extent float64) r3.Vec {
	return r3.Vec{
		X: (rng.Float64()*2 - 1) * extent,
		Y: (rng.Float64()*2 - 1) * extent,
		Z: (rng.Float64()*2 - 1) * extent,
	}
}
