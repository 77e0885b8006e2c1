package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/flock/config"
	"gonum.org/v1/gonum/spatial/r3"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	flockFile *os.File
	perfFile  *os.File

	// Track if headers have been written
	flockHeaderWritten bool
	perfHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	// Open flock.csv
	flockPath := filepath.Join(dir, "flock.csv")
	f, err := os.Create(flockPath)
	if err != nil {
		return nil, fmt.Errorf("creating flock.csv: %w", err)
	}
	om.flockFile = f

	// Open perf.csv
	perfPath := filepath.Join(dir, "perf.csv")
	f, err = os.Create(perfPath)
	if err != nil {
		om.flockFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteFlock writes a window stats record to flock.csv.
func (om *OutputManager) WriteFlock(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.flockHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.flockFile); err != nil {
			return fmt.Errorf("writing flock stats: %w", err)
		}
		om.flockHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.flockFile); err != nil {
			return fmt.Errorf("writing flock stats: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}

	csvRecord := stats.ToCSV(windowEnd)
	records := []PerfStatsCSV{csvRecord}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// PositionRecord is one agent's position row in positions.csv.
type PositionRecord struct {
	Agent int     `csv:"agent"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
}

// WritePositions writes agent positions to positions.csv, one row per agent
// in index order. Each call replaces the file.
func (om *OutputManager) WritePositions(pos []r3.Vec) error {
	if om == nil {
		return nil
	}

	records := make([]PositionRecord, len(pos))
	for i, p := range pos {
		records[i] = PositionRecord{Agent: i, X: p.X, Y: p.Y, Z: p.Z}
	}

	path := filepath.Join(om.dir, "positions.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating positions.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.flockFile != nil {
		if err := om.flockFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
