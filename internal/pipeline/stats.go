package pipeline

import (
	"time"

	"github.com/backmassage/lomux/internal/planner"
	"github.com/backmassage/lomux/internal/preset"
)

// Status is the terminal state of one job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusAborted   Status = "aborted"
)

// Outcome records how one job ended.
type Outcome struct {
	Job    planner.Job
	Status Status
	Reason string // Empty on success.

	// Argv is the engine command, set once the job got that far.
	Argv     []string
	ExitCode int
	Elapsed  time.Duration

	InputBytes  int64
	OutputBytes int64 // Set only on success.
}

// BatchResult is the ordered list of outcomes for one RunBatch call. It
// has exactly one Outcome per input, in input order.
type BatchResult struct {
	ID        string
	Preset    preset.Preset
	OutputDir string
	Started   time.Time
	Finished  time.Time
	Outcomes  []Outcome
}

// Stats folds the outcomes into counters.
func (b BatchResult) Stats() RunStats {
	s := RunStats{Total: len(b.Outcomes)}
	for _, o := range b.Outcomes {
		switch o.Status {
		case StatusSucceeded:
			s.Succeeded++
			s.TotalInputBytes += o.InputBytes
			s.TotalOutputBytes += o.OutputBytes
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusAborted:
			s.Aborted++
		}
	}
	return s
}

// RunStats tracks aggregate counters and byte totals across a batch run.
// Byte totals cover succeeded jobs only.
type RunStats struct {
	Total            int
	Succeeded        int
	Failed           int
	Skipped          int
	Aborted          int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// OK reports whether no job failed or was aborted.
func (s RunStats) OK() bool {
	return s.Failed == 0 && s.Aborted == 0
}
