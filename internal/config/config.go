// Package config holds runtime configuration: defaults, the optional YAML
// config file, CLI flag parsing, and validation.
//
// Precedence, lowest to highest: DefaultConfig, the --config file, flags.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/backmassage/lomux/internal/preset"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [LoadFile] and [ParseFlags], and passed by pointer from main.
type Config struct {
	// Paths. Inputs come from positional args and may name files or
	// directories.
	Inputs    []string
	OutputDir string
	BinDir    string // Bundled engines root; empty means <exe dir>/bin.

	// Conversion. Params fields irrelevant to Preset are ignored.
	Preset preset.Preset
	Params preset.ParameterSet

	// Behavior.
	DryRun bool

	// Integrations.
	HistoryDB  string // SQLite path; empty disables history.
	EventsAddr string // host:port for the WebSocket event stream; empty disables it.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode
	LogFile   string

	// Utility modes.
	CheckOnly   bool
	ListHistory int    // >0 prints that many recent batches and exits.
	ShowBatch   string // Batch ID or 8+ character prefix to print, then exit.
	ConfigFile  string // Path given with --config, for messages only.
}

// DefaultConfig returns a Config with every default applied. The zero
// preset and parameter values already mean "default".
func DefaultConfig() Config {
	return Config{
		Preset:    preset.MP4,
		ColorMode: ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and that the settings needed by the selected
// mode are present.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.ListHistory < 0 {
		return errors.New("--list-history must be positive")
	}
	if c.ListHistory > 0 {
		if c.HistoryDB == "" {
			return errors.New("--list-history needs --history-db")
		}
		return nil
	}
	if c.ShowBatch != "" {
		if c.HistoryDB == "" {
			return errors.New("--show-batch needs --history-db")
		}
		return nil
	}
	if c.CheckOnly {
		return nil
	}

	if len(c.Inputs) == 0 {
		return errors.New("need at least one input file or directory")
	}
	if c.OutputDir == "" {
		return errors.New("need an output directory (-o)")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) a resolved input directory, so a later run over the same input does
// not rediscover its own outputs. Both arguments must be absolute,
// symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside an input directory")
	}
	return nil
}
