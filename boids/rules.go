package boids

import "gonum.org/v1/gonum/spatial/r3"

// separate applies pairwise soft repulsion between agents closer than the
// separation FOV. The j > i query restriction visits every unordered pair
// exactly once; the push on one agent is mirrored on the other, making
// separation the only rule with a reciprocal effect.
func (s *Simulation) separate() {
	fov := s.params.SeparationFOV
	mag := s.params.SeparationMag

	s.index.rebuild(s.pos)
	for i := range s.pos {
		s.scratch = s.index.within(s.scratch, s.pos[i], i, fov)
		for _, j := range s.scratch {
			delta := r3.Sub(s.pos[j], s.pos[i])
			dist := r3.Norm(delta)
			// Re-check the radius, and skip coincident agents so the
			// direction term never divides by zero.
			if dist > fov || dist == 0 {
				continue
			}
			// (dist-fov)/dist is zero at the boundary and -inf as agents
			// converge; the negative sign turns delta into a push apart.
			push := r3.Scale(mag*0.5*(dist-fov)/dist, delta)
			s.acc[i] = r3.Add(s.acc[i], push)
			s.acc[j] = r3.Sub(s.acc[j], push)
		}
	}
}

// align steers each agent toward the mean velocity of its in-range
// neighbors. Queries only see higher indices, so influence runs
// one-directional through the flock order.
func (s *Simulation) align() {
	fov := s.params.AlignmentFOV
	mag := s.params.AlignmentMag

	s.index.rebuild(s.pos)
	for i := range s.pos {
		s.scratch = s.index.within(s.scratch, s.pos[i], i, fov)
		if len(s.scratch) == 0 {
			continue
		}
		var sum r3.Vec
		for _, j := range s.scratch {
			sum = r3.Add(sum, s.vel[j])
		}
		mean := r3.Scale(1/float64(len(s.scratch)), sum)
		s.acc[i] = r3.Add(s.acc[i], r3.Scale(mag, mean))
	}
}

// cohere pulls each agent toward the centroid of its in-range neighbors,
// under the same higher-index restriction as align. Agents with no
// neighbors in range are left untouched.
func (s *Simulation) cohere() {
	fov := s.params.CohesionFOV
	mag := s.params.CohesionMag

	s.index.rebuild(s.pos)
	for i := range s.pos {
		s.scratch = s.index.within(s.scratch, s.pos[i], i, fov)
		if len(s.scratch) == 0 {
			continue
		}
		var sum r3.Vec
		for _, j := range s.scratch {
			sum = r3.Add(sum, s.pos[j])
		}
		centroid := r3.Scale(1/float64(len(s.scratch)), sum)
		toward := r3.Sub(s.pos[i], centroid)
		s.acc[i] = r3.Sub(s.acc[i], r3.Scale(mag, toward))
	}
}
