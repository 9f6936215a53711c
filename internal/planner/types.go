package planner

import (
	"path/filepath"

	"github.com/backmassage/lomux/internal/preset"
)

// Job is one conversion unit. It is built once per input by Plan, filled
// with the probed duration, and passed by value from then on; nothing
// mutates it after the engine is launched.
type Job struct {
	ID    string
	Index int // 1-based position in the batch.
	Total int

	InputPath  string
	OutputPath string

	Preset preset.Preset
	Params preset.ParameterSet

	// Duration is the probed source length in seconds; 0 means unknown.
	Duration float64
}

// Name returns the input's base name for labels and log lines.
func (j Job) Name() string { return filepath.Base(j.InputPath) }

// WithDuration returns a copy of j with Duration set.
func (j Job) WithDuration(seconds float64) Job {
	if seconds < 0 {
		seconds = 0
	}
	j.Duration = seconds
	return j
}
