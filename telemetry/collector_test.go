package telemetry

import (
	"math"
	"testing"
)

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(10)

	if c.ShouldFlush(9) {
		t.Error("should not flush before the window is full")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush when the window is full")
	}

	// After a flush the window start advances.
	c.Flush(10, 0, nil)
	if c.ShouldFlush(19) {
		t.Error("should not flush 9 ticks into the next window")
	}
	if !c.ShouldFlush(20) {
		t.Error("should flush at the end of the next window")
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0)

	if c.WindowTicks() != 1 {
		t.Errorf("WindowTicks() = %d, want 1 for non-positive window", c.WindowTicks())
	}
}

func TestCollectorFlushAggregates(t *testing.T) {
	c := NewCollector(10)

	c.RecordFrame(FrameStats{Polarization: 0.5, Spread: 2.0})
	c.RecordFrame(FrameStats{Polarization: 1.0, Spread: 4.0})

	stats := c.Flush(2, 3, []float64{1, 2, 3})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 2 {
		t.Errorf("window = [%d, %d], want [0, 2]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.Ticks != 2 {
		t.Errorf("Ticks = %d, want 2", stats.Ticks)
	}
	if stats.Agents != 3 {
		t.Errorf("Agents = %d, want 3", stats.Agents)
	}
	if math.Abs(stats.PolarizationMean-0.75) > 1e-12 {
		t.Errorf("PolarizationMean = %v, want 0.75", stats.PolarizationMean)
	}
	if stats.PolarizationMin != 0.5 || stats.PolarizationMax != 1.0 {
		t.Errorf("polarization range = [%v, %v], want [0.5, 1.0]",
			stats.PolarizationMin, stats.PolarizationMax)
	}
	if math.Abs(stats.SpreadMean-3.0) > 1e-12 {
		t.Errorf("SpreadMean = %v, want 3.0", stats.SpreadMean)
	}
	if stats.SpreadMax != 4.0 {
		t.Errorf("SpreadMax = %v, want 4.0", stats.SpreadMax)
	}
	if math.Abs(stats.SpeedMean-2.0) > 1e-12 {
		t.Errorf("SpeedMean = %v, want 2.0", stats.SpeedMean)
	}
	if math.Abs(stats.SpeedStd-1.0) > 1e-12 {
		t.Errorf("SpeedStd = %v, want 1.0", stats.SpeedStd)
	}
}

func TestCollectorFlushResets(t *testing.T) {
	c := NewCollector(10)

	c.RecordFrame(FrameStats{Polarization: 0.9, Spread: 5.0})
	c.Flush(1, 1, nil)

	// A second flush with no recorded frames reports an empty window.
	stats := c.Flush(2, 1, nil)

	if stats.Ticks != 0 {
		t.Errorf("Ticks = %d, want 0 after reset", stats.Ticks)
	}
	if stats.PolarizationMean != 0 || stats.SpreadMean != 0 || stats.SpreadMax != 0 {
		t.Error("expected zeroed aggregates after reset")
	}
	if stats.WindowStartTick != 1 {
		t.Errorf("WindowStartTick = %d, want 1", stats.WindowStartTick)
	}
}
