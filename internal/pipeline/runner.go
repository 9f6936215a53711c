package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/lomux/internal/events"
	"github.com/backmassage/lomux/internal/ffmpeg"
	"github.com/backmassage/lomux/internal/planner"
	"github.com/backmassage/lomux/internal/preset"
)

// Prober reports a source's duration in seconds, or 0 when unknown.
type Prober interface {
	Duration(ctx context.Context, input string) float64
}

// Monitor runs one engine command to completion.
type Monitor interface {
	Run(ctx context.Context, req ffmpeg.Request, sink events.Sink) ffmpeg.Result
}

// Options configures a Runner.
type Options struct {
	Engine  string // Resolved ffmpeg path.
	Prober  Prober
	Monitor Monitor
	Sink    events.Sink

	// DryRun probes and builds each command but spawns nothing; every
	// job is recorded as skipped.
	DryRun bool
}

// Runner is the batch sequencer.
type Runner struct {
	engine  string
	prober  Prober
	monitor Monitor
	sink    events.Sink
	dryRun  bool

	newID func() string
	now   func() time.Time
}

// NewRunner returns a Runner. A nil Monitor uses ffmpeg.NewMonitor and a
// nil Sink discards events.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		engine:  opts.Engine,
		prober:  opts.Prober,
		monitor: opts.Monitor,
		sink:    opts.Sink,
		dryRun:  opts.DryRun,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	if r.monitor == nil {
		r.monitor = ffmpeg.NewMonitor()
	}
	if r.sink == nil {
		r.sink = events.Discard
	}
	return r
}

// RunBatch converts inputs one at a time into outputDir. It never returns an
// error: every per-job failure is captured in the result, and the batch
// always finishes with a BatchFinished event. Cancelling ctx kills the
// running engine and records it and every later job as aborted.
func (r *Runner) RunBatch(ctx context.Context, inputs []string, outputDir string, p preset.Preset, params preset.ParameterSet) BatchResult {
	result := BatchResult{
		ID:        r.newID(),
		Preset:    p,
		OutputDir: outputDir,
		Started:   r.now(),
	}

	var jobID string
	sink := events.Stamp(r.sink, result.ID, func() string { return jobID })

	if len(inputs) == 0 {
		sink.Emit(events.BatchFinished())
		result.Finished = r.now()
		return result
	}

	pl := planner.New(planner.Batch{OutputDir: outputDir, Preset: p, Params: params})
	pl.SetIDFunc(r.newID)
	total := len(inputs)
	result.Outcomes = make([]Outcome, 0, total)

	for i, input := range inputs {
		job := pl.Plan(input, i+1, total)
		jobID = job.ID

		var out Outcome
		if ctx.Err() != nil {
			out = Outcome{Job: job, Status: StatusAborted, Reason: "batch cancelled"}
			sink.Emit(events.JobFinished(job.Index, total, job.Name(), string(out.Status)))
		} else {
			out = r.runJob(ctx, job, sink)
		}
		result.Outcomes = append(result.Outcomes, out)
	}
	jobID = ""

	if ctx.Err() != nil {
		sink.Emit(events.LogLine("Batch aborted"))
	} else {
		sink.Emit(events.Progress(100, "All tasks complete!"))
		sink.Emit(events.LogLine("All tasks complete!"))
	}
	sink.Emit(events.BatchFinished())
	result.Finished = r.now()
	return result
}

// runJob takes one job from "Processing" to a terminal outcome.
func (r *Runner) runJob(ctx context.Context, job planner.Job, sink events.Sink) Outcome {
	name := job.Name()
	out := Outcome{Job: job}
	start := r.now()

	sink.Emit(events.Progress(0, fmt.Sprintf("Processing %d/%d...", job.Index, job.Total)))
	sink.Emit(events.JobStarted(job.Index, job.Total, name))

	finish := func(status Status, reason string) Outcome {
		out.Status = status
		out.Reason = reason
		out.Elapsed = r.now().Sub(start)
		if reason != "" {
			sink.Emit(events.LogLine(fmt.Sprintf("%s %s: %s", statusVerb(status), name, reason)))
		}
		sink.Emit(events.JobFinished(job.Index, job.Total, name, string(status)))
		sink.Emit(events.Progress(100, "Finished "+name))
		return out
	}

	// --- Validate ---
	fi, err := os.Stat(job.InputPath)
	if err != nil {
		return finish(StatusSkipped, "input not found")
	}
	if !fi.Mode().IsRegular() {
		return finish(StatusSkipped, "input is not a regular file")
	}
	out.InputBytes = fi.Size()

	sink.Emit(events.LogLine(fmt.Sprintf("=== Converting %s (%d/%d) ===", name, job.Index, job.Total)))

	// --- Probe ---
	if r.prober != nil {
		job = job.WithDuration(r.prober.Duration(ctx, job.InputPath))
		out.Job = job
	}
	if job.Duration <= 0 {
		sink.Emit(events.LogLine("Duration unknown for " + name + "; percentage unavailable"))
	}

	// --- Build ---
	out.Argv = ffmpeg.Build(r.engine, job)

	if r.dryRun {
		sink.Emit(events.LogLine("[DRY] " + strings.Join(out.Argv, " ")))
		return finish(StatusSkipped, "dry run")
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return finish(StatusFailed, fmt.Sprintf("cannot create output directory: %v", err))
	}

	// --- Run ---
	prior := statOutput(job.OutputPath)
	res := r.monitor.Run(ctx, ffmpeg.Request{
		Argv:     out.Argv,
		Duration: job.Duration,
		Index:    job.Index,
		Total:    job.Total,
	}, sink)
	out.ExitCode = res.ExitCode

	switch {
	case res.OK():
		if st, err := os.Stat(job.OutputPath); err == nil {
			out.OutputBytes = st.Size()
		}
		return finish(StatusSucceeded, "")
	case ctx.Err() != nil:
		removePartial(job.OutputPath, prior)
		return finish(StatusAborted, "cancelled")
	default:
		removePartial(job.OutputPath, prior)
		return finish(StatusFailed, failureReason(res))
	}
}

// outputState is what was at an output path before the engine ran.
type outputState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statOutput(path string) outputState {
	fi, err := os.Stat(path)
	if err != nil {
		return outputState{}
	}
	return outputState{exists: true, size: fi.Size(), modTime: fi.ModTime()}
}

// removePartial deletes path after a failed run only when the run created
// or rewrote it. A file left untouched, such as an earlier run's good
// output, is kept.
func removePartial(path string, prior outputState) {
	now := statOutput(path)
	if !now.exists {
		return
	}
	if prior.exists && now.size == prior.size && now.modTime.Equal(prior.modTime) {
		return
	}
	_ = os.Remove(path)
}

func failureReason(res ffmpeg.Result) string {
	if res.Err == nil {
		return fmt.Sprintf("engine exited with status %d", res.ExitCode)
	}
	reason := res.Err.Error()
	if last := strings.TrimSpace(res.Progress.LastLine); last != "" {
		reason += " (last output: " + last + ")"
	}
	return reason
}

func statusVerb(s Status) string {
	switch s {
	case StatusFailed:
		return "Conversion failed for"
	case StatusSkipped:
		return "Skipped"
	case StatusAborted:
		return "Aborted"
	default:
		return "Finished"
	}
}
