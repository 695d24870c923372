package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

type runCSV struct {
	RunID            string `csv:"run_id"`
	Timestamp        int64  `csv:"timestamp"`
	Scenario         string `csv:"scenario"`
	Mode             string `csv:"mode"`
	Seed             int64  `csv:"seed"`
	StopReason       string `csv:"stop_reason"`
	Steps            int    `csv:"steps"`
	CapacityMax      int64  `csv:"capacity_max"`
	InitialAvailable int64  `csv:"initial_available"`
	FinalAvailable   int64  `csv:"final_available"`
	ConsumedTotal    int64  `csv:"consumed_total"`
	ReplenishedTotal int64  `csv:"replenished_total"`
	Target           int64  `csv:"target"`
	TotalWithdrawn   int64  `csv:"total_withdrawn"`
	TargetMet        bool   `csv:"target_met"`
}

type cycleCSV struct {
	RunID             string `csv:"run_id"`
	Index             int    `csv:"index"`
	AvailableBefore   int64  `csv:"available_before"`
	AmountReplenished int64  `csv:"amount_replenished"`
	AmountWithdrawn   int64  `csv:"amount_withdrawn"`
	AvailableAfter    int64  `csv:"available_after"`
}

// CSVRecorder appends runs to runs.csv and their steps to cycles.csv in dir.
type CSVRecorder struct {
	mu  sync.Mutex
	dir string
	log *zap.Logger

	runsFile   *os.File
	cyclesFile *os.File

	runsHeaderWritten   bool
	cyclesHeaderWritten bool
}

// NewCSVRecorder creates dir and truncates both CSV files.
func NewCSVRecorder(dir string, logger *zap.Logger) (*CSVRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	runs, err := os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating runs.csv: %w", err)
	}
	cycles, err := os.Create(filepath.Join(dir, "cycles.csv"))
	if err != nil {
		runs.Close()
		return nil, fmt.Errorf("creating cycles.csv: %w", err)
	}

	logger.Info("csv recorder opened", zap.String("dir", dir))
	return &CSVRecorder{dir: dir, log: logger, runsFile: runs, cyclesFile: cycles}, nil
}

// Dir returns the output directory path.
func (c *CSVRecorder) Dir() string { return c.dir }

func (c *CSVRecorder) RecordRun(evt *RunEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := evt.Result.Summary
	runs := []runCSV{{
		RunID:            evt.RunID,
		Timestamp:        evt.StartedAt.Unix(),
		Scenario:         evt.Scenario,
		Mode:             string(s.Mode),
		Seed:             evt.Seed,
		StopReason:       string(s.StopReason),
		Steps:            s.Steps,
		CapacityMax:      s.CapacityMax,
		InitialAvailable: s.InitialAvailable,
		FinalAvailable:   s.FinalAvailable,
		ConsumedTotal:    s.ConsumedTotal,
		ReplenishedTotal: s.ReplenishedTotal,
		Target:           s.Target,
		TotalWithdrawn:   s.TotalWithdrawn,
		TargetMet:        s.TargetMet,
	}}
	if err := writeRows(c.runsFile, runs, &c.runsHeaderWritten); err != nil {
		return fmt.Errorf("writing runs: %w", err)
	}

	if len(evt.Result.Records) == 0 {
		return nil
	}
	cycles := make([]cycleCSV, len(evt.Result.Records))
	for i, rec := range evt.Result.Records {
		cycles[i] = cycleCSV{
			RunID:             evt.RunID,
			Index:             rec.Index,
			AvailableBefore:   rec.AvailableBefore,
			AmountReplenished: rec.AmountReplenished,
			AmountWithdrawn:   rec.AmountWithdrawn,
			AvailableAfter:    rec.AvailableAfter,
		}
	}
	if err := writeRows(c.cyclesFile, cycles, &c.cyclesHeaderWritten); err != nil {
		return fmt.Errorf("writing cycles: %w", err)
	}
	return nil
}

// writeRows emits the header only on the first write to f.
func writeRows(f *os.File, rows interface{}, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}

// Close flushes and closes both files.
func (c *CSVRecorder) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, f := range []*os.File{c.runsFile, c.cyclesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
