package ffmpeg

import (
	"context"
	"errors"
	"fmt"

	"github.com/backmassage/lomux/internal/events"
)

// State is the lifecycle position of one monitored engine run.
type State int

const (
	Starting State = iota
	Streaming
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Streaming:
		return "streaming"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Request describes one engine run.
type Request struct {
	Argv     []string
	Duration float64 // Source length in seconds; <= 0 disables percentages.
	Index    int     // 1-based, for the progress label.
	Total    int
}

// Result is the terminal report of Monitor.Run. State is always Finished or
// Failed.
type Result struct {
	State       State
	ExitCode    int
	SawSentinel bool
	Progress    ProgressState
	Err         error
}

// OK reports whether the run finished.
func (r Result) OK() bool { return r.State == Finished }

// Monitor runs engine processes and reports their progress.
type Monitor struct {
	start Starter
}

// NewMonitor returns a Monitor that launches real processes.
func NewMonitor() *Monitor {
	return &Monitor{start: StartExec}
}

// NewMonitorWith returns a Monitor using start. Tests use it to substitute
// scripted processes.
func NewMonitorWith(start Starter) *Monitor {
	return &Monitor{start: start}
}

// Run launches req.Argv and blocks until the process has exited.
//
// Every line other than the sentinel is emitted to sink as a log event
// before the next line is read. Elapsed-time lines additionally emit a
// progress event when req.Duration is known. The sentinel ends reading and
// marks the run Finished regardless of exit code. Without it, a non-zero
// exit is Failed with an *ExitError, and cancellation of ctx is Failed with
// ctx's error.
func (m *Monitor) Run(ctx context.Context, req Request, sink events.Sink) Result {
	if sink == nil {
		sink = events.Discard
	}
	res := Result{State: Starting}

	if len(req.Argv) == 0 {
		res.State = Failed
		res.Err = fmt.Errorf("%w: empty command", ErrSpawn)
		return res
	}
	proc, err := m.start(ctx, req.Argv)
	if err != nil {
		res.State = Failed
		res.Err = fmt.Errorf("%w: %s: %w", ErrSpawn, req.Argv[0], err)
		return res
	}
	res.State = Streaming

	var readErr error
	for line, err := range Lines(ctx, proc.Output()) {
		if err != nil {
			readErr = fmt.Errorf("%w: %w", ErrStreamRead, err)
			break
		}
		if IsSentinel(line) {
			res.SawSentinel = true
			break
		}
		sink.Emit(events.EngineLine(line))
		if pct, ok := res.Progress.Observe(line, req.Duration); ok {
			sink.Emit(events.Progress(pct, Label(req.Index, req.Total, pct)))
		}
	}

	code, waitErr := proc.Wait()
	res.ExitCode = code

	switch {
	case res.SawSentinel:
		res.State = Finished
	case ctx.Err() != nil:
		res.State = Failed
		res.Err = ctx.Err()
	case waitErr != nil:
		res.State = Failed
		res.Err = errors.Join(waitErr, readErr)
	case code != 0:
		res.State = Failed
		res.Err = errors.Join(&ExitError{Code: code}, readErr)
	default:
		res.State = Finished
	}
	return res
}
