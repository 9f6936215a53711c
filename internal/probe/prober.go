package probe

import (
	"context"
	"errors"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// errNoDuration is returned by ParseDuration for empty or "N/A" output.
var errNoDuration = errors.New("ffprobe reported no duration")

// Prober runs ffprobe against source files.
type Prober struct {
	path string
	run  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns a Prober using the ffprobe binary at path.
func New(path string) *Prober {
	return &Prober{path: path, run: runOutput}
}

func runOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Args returns the ffprobe arguments used to read the duration of input.
func Args(input string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		input,
	}
}

// Duration returns the container duration of input in seconds, or 0 when
// ffprobe fails, exits non-zero, or prints anything other than one
// non-negative number.
func (p *Prober) Duration(ctx context.Context, input string) float64 {
	out, err := p.run(ctx, p.path, Args(input)...)
	if err != nil {
		return 0
	}
	d, err := ParseDuration(out)
	if err != nil {
		return 0
	}
	return d
}

// ParseDuration extracts the duration from ffprobe's csv=p=0 output.
// Exported for testing without a real ffprobe binary.
func ParseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	// Some containers repeat the format section; the first line wins.
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.TrimSuffix(s, ",")
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, errNoDuration
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, errNoDuration
	}
	return d, nil
}
