package ffmpeg

import (
	"bufio"
	"context"
	"io"
	"iter"
)

// maxLineBytes bounds a single engine output line. ffmpeg lines are short;
// anything longer is almost certainly binary garbage on the pipe.
const maxLineBytes = 1 << 20

// Lines yields r one newline-delimited line at a time, without the line
// terminator. The sequence is lazy, finite, and not restartable. It ends at
// EOF, when ctx is cancelled, or when the consumer stops ranging. A read
// error is yielded once as the final element with an empty line.
func Lines(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
		for sc.Scan() {
			if ctx.Err() != nil {
				return
			}
			if !yield(sc.Text(), nil) {
				return
			}
		}
		if err := sc.Err(); err != nil && ctx.Err() == nil {
			yield("", err)
		}
	}
}
