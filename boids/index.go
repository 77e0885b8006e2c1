package boids

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// agentPoint is one agent's position in the spatial index, tagged with the
// agent's index so query results map back to the flock arrays.
type agentPoint struct {
	r3.Vec
	id int
}

// Compare returns the signed distance of p from the plane through c
// orthogonal to dimension d.
func (p agentPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(agentPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

// Dims returns the number of dimensions the point occupies.
func (p agentPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between p and c.
func (p agentPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(agentPoint)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}

// agentPoints implements kdtree.Interface over a slice of agentPoint.
type agentPoints []agentPoint

func (p agentPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p agentPoints) Len() int                              { return len(p) }
func (p agentPoints) Pivot(d kdtree.Dim) int                { return plane{agentPoints: p, Dim: d}.Pivot() }
func (p agentPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts agentPoints along one dimension during tree construction.
type plane struct {
	agentPoints
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.agentPoints[i].X < p.agentPoints[j].X
	case 1:
		return p.agentPoints[i].Y < p.agentPoints[j].Y
	default:
		return p.agentPoints[i].Z < p.agentPoints[j].Z
	}
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.agentPoints = p.agentPoints[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.agentPoints[i], p.agentPoints[j] = p.agentPoints[j], p.agentPoints[i]
}

// pointIndex is a kd-tree over agent positions supporting spherical radius
// queries. Each behavior rule rebuilds it from the unmutated pre-step
// positions and discards it when the rule finishes; it is never shared
// between rules or carried across steps.
type pointIndex struct {
	pts  agentPoints
	tree *kdtree.Tree
	keep *kdtree.DistKeeper
}

// rebuild constructs a fresh tree over pos, replacing any previous tree.
// The point buffer is reused between rebuilds.
func (x *pointIndex) rebuild(pos []r3.Vec) {
	if cap(x.pts) < len(pos) {
		x.pts = make(agentPoints, len(pos))
	}
	x.pts = x.pts[:len(pos)]
	for i, p := range pos {
		x.pts[i] = agentPoint{Vec: p, id: i}
	}
	x.tree = kdtree.New(x.pts, false)
	if x.keep == nil {
		x.keep = kdtree.NewDistKeeper(0)
	}
}

// within appends to dst the agents inside radius of center, restricted to
// indices greater than i, and returns the extended slice. Agents exactly at
// radius are included. A zero or negative radius yields no neighbors.
func (x *pointIndex) within(dst []int, center r3.Vec, i int, radius float64) []int {
	dst = dst[:0]
	if radius <= 0 || x.tree == nil {
		return dst
	}

	// Reset the keeper: entry 0 is the sentinel carrying the squared search
	// radius, everything the search keeps lands after it.
	x.keep.Heap = x.keep.Heap[:1]
	x.keep.Heap[0] = kdtree.ComparableDist{Comparable: nil, Dist: radius * radius}
	x.tree.NearestSet(x.keep, agentPoint{Vec: center, id: i})

	for _, c := range x.keep.Heap {
		if c.Comparable == nil {
			continue
		}
		if j := c.Comparable.(agentPoint).id; j > i {
			dst = append(dst, j)
		}
	}
	return dst
}
