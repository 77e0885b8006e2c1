package telemetry

// Collector accumulates per-tick flock measurements within time windows and
// produces WindowStats.
type Collector struct {
	windowTicks int32

	// Current window tracking
	windowStartTick int32

	// Accumulators for the current window
	ticks           int
	polarizationSum float64
	polarizationMin float64
	polarizationMax float64
	spreadSum       float64
	spreadMax       float64
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window spans.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks:     windowTicks,
		windowStartTick: 0,
	}
}

// RecordFrame folds one tick's measurements into the current window.
func (c *Collector) RecordFrame(f FrameStats) {
	if c.ticks == 0 {
		c.polarizationMin = f.Polarization
		c.polarizationMax = f.Polarization
		c.spreadMax = f.Spread
	} else {
		if f.Polarization < c.polarizationMin {
			c.polarizationMin = f.Polarization
		}
		if f.Polarization > c.polarizationMax {
			c.polarizationMax = f.Polarization
		}
		if f.Spread > c.spreadMax {
			c.spreadMax = f.Spread
		}
	}
	c.polarizationSum += f.Polarization
	c.spreadSum += f.Spread
	c.ticks++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets accumulators for the next window.
// The caller provides the current tick, the agent count, and the agent speeds
// sampled at window end for percentile calculation.
func (c *Collector) Flush(currentTick int32, agents int, speeds []float64) WindowStats {
	speedMean, speedStd, speedP10, speedP50, speedP90 := SpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Ticks:           c.ticks,
		Agents:          agents,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  speedP10,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,
	}

	if c.ticks > 0 {
		n := float64(c.ticks)
		stats.PolarizationMean = c.polarizationSum / n
		stats.PolarizationMin = c.polarizationMin
		stats.PolarizationMax = c.polarizationMax
		stats.SpreadMean = c.spreadSum / n
		stats.SpreadMax = c.spreadMax
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.ticks = 0
	c.polarizationSum = 0
	c.polarizationMin = 0
	c.polarizationMax = 0
	c.spreadSum = 0
	c.spreadMax = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
