package ffmpeg

import (
	"errors"
	"fmt"
)

// Job-level failure kinds. None of these escape the batch; the pipeline
// records them in the job outcome.
var (
	// ErrSpawn wraps the OS error when the engine process cannot start.
	ErrSpawn = errors.New("failed to start engine")

	// ErrEngineExited is matched by every *ExitError.
	ErrEngineExited = errors.New("engine exited with error")

	// ErrStreamRead wraps a read failure on the merged output stream. It is
	// treated like end of stream: the monitor still waits for the exit code.
	ErrStreamRead = errors.New("engine output read failed")
)

// ExitError reports an engine that exited abnormally without printing the
// completion sentinel. Code is -1 when the process was killed by a signal.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("engine exited with status %d", e.Code)
}

// Unwrap lets callers test with errors.Is(err, ErrEngineExited).
func (e *ExitError) Unwrap() error { return ErrEngineExited }
