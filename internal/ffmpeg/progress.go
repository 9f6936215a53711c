package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel is the line ffmpeg prints to -progress when a job is complete.
const Sentinel = "progress=end"

// Elapsed-time keys in the -progress stream. Both are microseconds; the
// "_ms" spelling is a long-standing ffmpeg misnomer kept for compatibility.
const (
	keyOutTimeUS = "out_time_us"
	keyOutTimeMS = "out_time_ms"
)

// ProgressState is the per-job view of the engine's progress stream. It
// lives for one Monitor.Run call.
type ProgressState struct {
	ElapsedUS int64   // Largest elapsed time reported so far.
	Percent   float64 // 0-100, never decreases.
	LastLine  string  // Most recent line read.

	// sawUS is set once out_time_us has been seen; out_time_ms, which
	// ffmpeg prints in the same block, is then ignored.
	sawUS bool
}

// SplitKV splits a "key=value" line. ok is false when there is no '=' or
// the key is empty.
func SplitKV(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found || key == "" {
		return "", "", false
	}
	return key, value, true
}

// IsSentinel reports whether line is the end-of-progress marker.
func IsSentinel(line string) bool {
	return strings.TrimSpace(line) == Sentinel
}

// ElapsedMicros extracts the elapsed-time value from an out_time_us or
// out_time_ms line. "N/A", negative, and non-integer values are rejected.
func ElapsedMicros(line string) (int64, bool) {
	key, value, ok := SplitKV(line)
	if !ok || (key != keyOutTimeUS && key != keyOutTimeMS) {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return us, true
}

// Percent converts elapsed microseconds into a completion percentage of a
// source lasting durationSec seconds, clamped to [0, 100]. It returns false
// when the duration is unknown.
func Percent(elapsedUS int64, durationSec float64) (float64, bool) {
	if durationSec <= 0 {
		return 0, false
	}
	pct := float64(elapsedUS) / 1_000_000 / durationSec * 100
	return clamp(pct, 0, 100), true
}

// Observe folds one line into s. It returns the new percentage and true when
// the line moved the percentage computation (even if the value is
// unchanged); the percentage never goes backwards. out_time_ms counts only
// until the stream has shown an out_time_us line, so each progress block
// yields one update.
func (s *ProgressState) Observe(line string, durationSec float64) (float64, bool) {
	s.LastLine = line
	us, ok := ElapsedMicros(line)
	if !ok {
		return s.Percent, false
	}
	switch key, _, _ := SplitKV(line); key {
	case keyOutTimeUS:
		s.sawUS = true
	case keyOutTimeMS:
		if s.sawUS {
			return s.Percent, false
		}
	}
	s.ElapsedUS = max(s.ElapsedUS, us)
	pct, ok := Percent(s.ElapsedUS, durationSec)
	if !ok {
		return s.Percent, false
	}
	s.Percent = max(s.Percent, pct)
	return s.Percent, true
}

// Label formats the per-job progress label, e.g. "2/5: 42.0%".
func Label(index, total int, percent float64) string {
	return fmt.Sprintf("%d/%d: %.1f%%", index, total, percent)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
