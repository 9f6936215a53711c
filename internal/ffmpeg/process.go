package ffmpeg

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Process is a running engine as seen by Monitor.
type Process interface {
	// Output is the merged stdout+stderr stream.
	Output() io.Reader
	// Wait drains whatever is left on Output, reaps the process, and
	// returns its exit code (-1 when killed by a signal). The error is
	// non-nil only when the exit status could not be collected at all.
	Wait() (int, error)
}

// Starter launches argv. Cancelling ctx must terminate the process.
type Starter func(ctx context.Context, argv []string) (Process, error)

// StartExec is the production Starter. stdout and stderr share one OS pipe
// so their relative order is the order the engine wrote them; stdin is
// not connected.
func StartExec(ctx context.Context, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, err
	}
	// The child holds its own copy; ours must go so EOF arrives on exit.
	_ = w.Close()

	// A grandchild may inherit the pipe and outlive the engine. Closing our
	// end on cancellation unblocks the reader either way.
	stop := context.AfterFunc(ctx, func() { _ = r.Close() })

	return &execProcess{cmd: cmd, out: r, stop: stop}, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	out  *os.File
	stop func() bool
}

func (p *execProcess) Output() io.Reader { return p.out }

func (p *execProcess) Wait() (int, error) {
	// The reader may have stopped early (sentinel, cancellation). Keep the
	// pipe flowing so the child never blocks on a full buffer.
	drained := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, p.out)
		close(drained)
	}()

	err := p.cmd.Wait()
	p.stop()
	_ = p.out.Close()
	<-drained

	if p.cmd.ProcessState == nil {
		return -1, err
	}
	code := p.cmd.ProcessState.ExitCode()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return code, err
	}
	return code, nil
}
