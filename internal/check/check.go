// Package check provides the --check diagnostics: which engines were
// resolved, their versions, and which presets the installed ffmpeg can
// encode.
package check

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/backmassage/lomux/internal/engine"
	"github.com/backmassage/lomux/internal/ffmpeg"
	"github.com/backmassage/lomux/internal/preset"
)

// Logger is the minimal logging interface needed by Run.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Checker inspects the engine binaries.
type Checker struct {
	run Runner
}

// New returns a Checker that runs real commands.
func New() *Checker { return &Checker{run: execRunner} }

// NewWith returns a Checker that runs commands through run.
func NewWith(run Runner) *Checker { return &Checker{run: run} }

// Run prints the --check report. Informational only; it returns false when
// an engine is missing so the caller can pick an exit code.
func (c *Checker) Run(ctx context.Context, loc *engine.Locator, log Logger) bool {
	log.Info("=== System Check ===")

	ok := true
	paths := map[string]string{}
	for _, name := range []string{engine.FFmpeg, engine.FFprobe} {
		p, err := loc.Locate(name)
		if err != nil {
			log.Error("%v", err)
			ok = false
			continue
		}
		paths[name] = p
		c.version(ctx, log, name, p)
	}

	ff, found := paths[engine.FFmpeg]
	if !found {
		return ok
	}
	have, err := c.Encoders(ctx, ff)
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return ok
	}
	log.Info("Preset support:")
	for _, p := range preset.All() {
		if missing := missingFrom(have, p); len(missing) > 0 {
			log.Warn("  %-4s missing %s", p, strings.Join(missing, ", "))
		} else {
			log.Success("  %-4s %s", p, strings.Join(ffmpeg.Encoders(p), ", "))
		}
	}
	return ok
}

func (c *Checker) version(ctx context.Context, log Logger, name, path string) {
	out, err := c.run(ctx, path, "-version")
	if err != nil {
		log.Warn("%s found at %s but -version failed: %v", name, path, err)
		return
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	log.Success("%s: %s (%s)", name, strings.TrimSpace(first), path)
}

// Encoders returns the set of encoder names the ffmpeg at path reports.
func (c *Checker) Encoders(ctx context.Context, ffmpegPath string) (map[string]bool, error) {
	out, err := c.run(ctx, ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		return nil, err
	}
	return ParseEncoders(out), nil
}

// MissingEncoders lists the encoders p needs that the ffmpeg at path lacks.
// An error listing encoders is returned as is; callers usually just warn.
func (c *Checker) MissingEncoders(ctx context.Context, ffmpegPath string, p preset.Preset) ([]string, error) {
	have, err := c.Encoders(ctx, ffmpegPath)
	if err != nil {
		return nil, err
	}
	return missingFrom(have, p), nil
}

func missingFrom(have map[string]bool, p preset.Preset) []string {
	var missing []string
	for _, enc := range ffmpeg.Encoders(p) {
		if !have[enc] {
			missing = append(missing, enc)
		}
	}
	return missing
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output. The
// listing starts after the " ------" separator; each row is
// "<flags> <name> <description>".
func ParseEncoders(out []byte) map[string]bool {
	encs := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	listing := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !listing {
			listing = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			encs[fields[1]] = true
		}
	}
	return encs
}
