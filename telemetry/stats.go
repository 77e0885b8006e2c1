package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// FrameStats holds instantaneous flock measurements for a single tick.
type FrameStats struct {
	Polarization float64 // |mean unit velocity|, 1 when perfectly aligned
	Spread       float64 // RMS distance from the flock centroid
}

// WindowStats holds aggregated flock statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`
	Ticks           int   `csv:"ticks"`
	Agents          int   `csv:"agents"`

	// Order measurements averaged over the window
	PolarizationMean float64 `csv:"polarization_mean"`
	PolarizationMin  float64 `csv:"polarization_min"`
	PolarizationMax  float64 `csv:"polarization_max"`
	SpreadMean       float64 `csv:"spread_mean"`
	SpreadMax        float64 `csv:"spread_max"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// MeasureFrame computes instantaneous flock measurements from positions and
// velocities. Agents with zero velocity contribute no direction, so a freshly
// spawned flock measures zero polarization.
func MeasureFrame(pos, vel []r3.Vec) FrameStats {
	n := len(pos)
	if n == 0 {
		return FrameStats{}
	}

	var unitSum r3.Vec
	for _, v := range vel {
		if s := r3.Norm(v); s > 0 {
			unitSum = r3.Add(unitSum, r3.Scale(1/s, v))
		}
	}

	var centroid r3.Vec
	for _, p := range pos {
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(n), centroid)

	var sqSum float64
	for _, p := range pos {
		sqSum += r3.Norm2(r3.Sub(p, centroid))
	}

	return FrameStats{
		Polarization: r3.Norm(unitSum) / float64(n),
		Spread:       math.Sqrt(sqSum / float64(n)),
	}
}

// Speeds appends the magnitude of each velocity to dst and returns it.
func Speeds(vel []r3.Vec, dst []float64) []float64 {
	for _, v := range vel {
		dst = append(dst, r3.Norm(v))
	}
	return dst
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// SpeedStats calculates mean, std, and percentiles from speed values.
func SpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("ticks", s.Ticks),
		slog.Int("agents", s.Agents),
		slog.Float64("polarization_mean", s.PolarizationMean),
		slog.Float64("polarization_min", s.PolarizationMin),
		slog.Float64("polarization_max", s.PolarizationMax),
		slog.Float64("spread_mean", s.SpreadMean),
		slog.Float64("spread_max", s.SpreadMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"ticks", s.Ticks,
		"agents", s.Agents,
		"polarization_mean", s.PolarizationMean,
		"polarization_min", s.PolarizationMin,
		"polarization_max", s.PolarizationMax,
		"spread_mean", s.SpreadMean,
		"spread_max", s.SpreadMax,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
	)
}
