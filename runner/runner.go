// Package runner hosts the flocking engine for headless runs. It owns the
// run lifecycle: spawning the starting flock, applying configured rule
// parameters before every step, and flushing windowed telemetry.
package runner

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flock/boids"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/spawn"
	"github.com/pthm-cable/flock/telemetry"
)

// Options configures a Runner.
type Options struct {
	Seed           int64
	MaxTicks       int
	StatsWindow    int32 // ticks per stats window (0 = config value)
	OutputDir      string
	LogStats       bool
	WritePositions bool // write final positions to positions.csv on Close

	// Config overrides the global configuration when non-nil. Tools that
	// run many simulations concurrently pass per-run configs here.
	Config *config.Config

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Runner owns one engine instance and its telemetry surfaces.
type Runner struct {
	cfg  *config.Config
	opts Options

	sim       *boids.Simulation
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	tick int32

	// Scratch buffers reused every tick
	pos    []r3.Vec
	vel    []r3.Vec
	speeds []float64
}

// New creates a runner: it generates starting positions with the configured
// spawn mode, constructs the engine, and opens telemetry outputs.
func New(opts Options) (*Runner, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	windowTicks := opts.StatsWindow
	if windowTicks == 0 {
		windowTicks = cfg.Telemetry.WindowTicks
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("opening outputs: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	r := &Runner{
		cfg:       cfg,
		opts:      opts,
		collector: telemetry.NewCollector(windowTicks),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:    output,
	}

	r.sim = boids.New(spawn.FromConfig(cfg, opts.Seed))
	r.sim.SetParameters(r.parameters())

	slog.Info("flock initialized",
		"agents", r.sim.Len(),
		"spawn", cfg.Spawn.Mode,
		"seed", opts.Seed,
		"density", float64(r.sim.Len())/cfg.Derived.Volume,
	)

	return r, nil
}

// parameters maps the config surface onto the engine's parameter set.
func (r *Runner) parameters() boids.Parameters {
	rules := r.cfg.Rules
	return boids.Parameters{
		SeparationFOV: rules.SeparationFOV,
		SeparationMag: rules.SeparationMag,
		AlignmentFOV:  rules.AlignmentFOV,
		AlignmentMag:  rules.AlignmentMag,
		CohesionFOV:   rules.CohesionFOV,
		CohesionMag:   rules.CohesionMag,
	}
}

// Step advances the simulation one tick.
func (r *Runner) Step() {
	r.perf.StartTick()

	// 1. Re-read rule parameters so config edits apply on the next tick
	r.perf.StartPhase(telemetry.PhaseParameters)
	r.sim.SetParameters(r.parameters())

	// 2. Advance the engine exactly one step
	r.perf.StartPhase(telemetry.PhaseUpdate)
	r.sim.Update()

	// 3. Measure the flock
	r.perf.StartPhase(telemetry.PhaseStats)
	r.pos = r.sim.PositionsInto(r.pos[:0])
	r.vel = r.sim.VelocitiesInto(r.vel[:0])
	r.collector.RecordFrame(telemetry.MeasureFrame(r.pos, r.vel))

	r.perf.EndTick()
	r.tick++

	r.flushTelemetry()
}

// Run steps the simulation until MaxTicks have completed.
func (r *Runner) Run() {
	for int(r.tick) < r.opts.MaxTicks {
		r.Step()
	}
	slog.Info("run complete", "ticks", r.tick)
}

// Reset discards the engine and constructs a fresh one from starting,
// returning the flock to a zero-velocity initial state. Telemetry windows
// keep their cadence; the tick counter is not rewound.
func (r *Runner) Reset(starting []r3.Vec) {
	r.sim = boids.New(starting)
	r.sim.SetParameters(r.parameters())
	slog.Info("flock reset", "agents", r.sim.Len(), "tick", r.tick)
}

// Tick returns the number of completed steps.
func (r *Runner) Tick() int32 {
	return r.tick
}

// Positions returns a copy of the current agent positions in index order.
func (r *Runner) Positions() []r3.Vec {
	return r.sim.Positions()
}

// Velocities returns a copy of the current agent velocities in index order.
func (r *Runner) Velocities() []r3.Vec {
	return r.sim.Velocities()
}

// flushTelemetry emits the current window when it has filled: callback
// first, then logs, then CSV. Write failures are logged, not fatal.
func (r *Runner) flushTelemetry() {
	if !r.collector.ShouldFlush(r.tick) {
		return
	}

	r.speeds = telemetry.Speeds(r.vel, r.speeds[:0])
	stats := r.collector.Flush(r.tick, r.sim.Len(), r.speeds)
	perfStats := r.perf.Stats()

	if r.opts.StatsCallback != nil {
		r.opts.StatsCallback(stats)
	}

	if r.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := r.output.WriteFlock(stats); err != nil {
		slog.Error("failed to write flock stats", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
}

// Close writes final positions when enabled and closes telemetry outputs.
func (r *Runner) Close() error {
	if r.opts.WritePositions {
		r.pos = r.sim.PositionsInto(r.pos[:0])
		if err := r.output.WritePositions(r.pos); err != nil {
			r.output.Close()
			return fmt.Errorf("writing positions: %w", err)
		}
	}
	return r.output.Close()
}
