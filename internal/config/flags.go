package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, output, integrations, display, and
// utility. Flags and positional inputs may be interleaved.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/lomux/internal/preset"
)

// Version is shown in --version and help; override at build time with
// -ldflags "-X github.com/backmassage/lomux/internal/config.Version=...".
var Version = "0.1.0-dev"

// ErrExit is returned after --help or --version has been printed. The
// caller should exit with status 0.
var ErrExit = errors.New("exit requested")

// ParseFlags parses args (without the program name) into cfg. A --config
// file is loaded first so that flags override it.
func ParseFlags(cfg *Config, args []string) error {
	return parseFlags(cfg, args, os.Stdout, os.Stderr)
}

func parseFlags(cfg *Config, args []string, stdout, stderr io.Writer) error {
	if path, ok := findConfigArg(args); ok {
		if err := LoadFile(path, cfg); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet("lomux", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var u utilityFlags
	defineConversionFlags(fs, cfg)
	defineOutputFlags(fs, cfg)
	defineIntegrationFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &u)
	defineUtilityFlags(fs, cfg, &u)

	inputs, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}

	if u.noColor {
		cfg.ColorMode = ColorNever
	} else if u.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if u.extraSet {
		cfg.Params.Extra = preset.SplitExtra(u.extra)
	}

	if u.showHelp {
		printUsage(stdout)
		return ErrExit
	}
	if u.showVersion {
		fmt.Fprintln(stdout, "lomux v"+Version)
		return ErrExit
	}

	cfg.OutputDir = NormalizeDirArg(cfg.OutputDir)
	cfg.Inputs = append(cfg.Inputs, inputs...)
	return nil
}

// utilityFlags holds flags applied after Parse.
type utilityFlags struct {
	extra       string
	extraSet    bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers -p/--preset and the parameter flags.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&presetValue{&cfg.Preset}, "preset", "Output preset: mp4 | mkv | webm | mp3 | flac | gif")
	fs.Var(&presetValue{&cfg.Preset}, "p", "Same as --preset")
	fs.Var(&videoBitrateValue{&cfg.Params.VideoBitrate}, "video-bitrate", "Video bitrate in kbps")
	fs.Var(&audioBitrateValue{&cfg.Params.AudioBitrate}, "audio-bitrate", "Audio bitrate in kbps")
	fs.Var(&compressionLevelValue{&cfg.Params.CompressionLevel}, "compression-level", "FLAC compression level")
	fs.Var(&frameRateValue{&cfg.Params.FrameRate}, "fps", "GIF frame rate")
	fs.Var(&widthValue{&cfg.Params.Width}, "width", "GIF width in pixels")
}

// defineOutputFlags registers -o/--output, --bin-dir, -d/--dry-run.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Output directory")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "Same as --output")
	fs.StringVar(&cfg.BinDir, "bin-dir", cfg.BinDir, "Bundled engine root (default: <exe dir>/bin)")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Probe and print commands; run nothing")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
}

// defineIntegrationFlags registers --history-db, --list-history,
// --show-batch, --events-addr.
func defineIntegrationFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, "SQLite file recording batch history")
	fs.IntVar(&cfg.ListHistory, "list-history", 0, "Print the last N batches and exit")
	fs.StringVar(&cfg.ShowBatch, "show-batch", "", "Print one batch by ID and exit")
	fs.StringVar(&cfg.EventsAddr, "events-addr", cfg.EventsAddr, "Serve the event stream on host:port")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, u *utilityFlags) {
	fs.BoolVar(&u.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&u.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --extra, --config, --check, --version, --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, u *utilityFlags) {
	fs.Func("extra", "Raw engine arguments, whitespace separated", func(s string) error {
		u.extra, u.extraSet = s, true
		return nil
	})
	// Already applied by findConfigArg; registered so Parse accepts it.
	fs.String("config", "", "YAML config file")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&u.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&u.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&u.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&u.showHelp, "h", false, "Same as --help")
}

// parseInterleaved parses flags that may appear before, between, or after
// positional arguments. Everything after a bare "--" is positional.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		before, after, dashdash := cutDashDash(args)
		if err := fs.Parse(before); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			if dashdash {
				positional = append(positional, after...)
			}
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = append(rest[1:], dashdashTail(dashdash, after)...)
	}
}

func cutDashDash(args []string) (before, after []string, found bool) {
	for i, a := range args {
		if a == "--" {
			return args[:i:i], args[i+1:], true
		}
	}
	return args, nil, false
}

func dashdashTail(found bool, after []string) []string {
	if !found {
		return nil
	}
	return append([]string{"--"}, after...)
}

// findConfigArg returns the value of -config/--config if present.
func findConfigArg(args []string) (string, bool) {
	for i, a := range args {
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if len(a)-len(name) < 1 || len(a)-len(name) > 2 {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v, true
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "lomux v" + Version + " - batch media converter"},
		{"", ""},
		{"  lomux [OPTIONS] -o <output_dir> <input>...", ""},
		{"  Inputs are files or directories (searched for media files).", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -p, --preset <name>", "mp4 | mkv | webm | mp3 | flac | gif (default: mp4)"},
		{"  --video-bitrate <kbps>", "250 | 500 | 1000 | 2000 | 4000 (default: 1000)"},
		{"  --audio-bitrate <kbps>", "64 | 96 | 128 | 192 | 256 | 320 (default: 128)"},
		{"  --compression-level <n>", "FLAC level 0-8 (default: 5)"},
		{"  --fps <n>", "GIF frame rate 10 | 15 | 24 | 30 | 60 (default: 10)"},
		{"  --width <px>", "GIF width 320 | 480 | 640 | 800 | 1024 (default: 320)"},
		{"  --extra <args>", "Raw engine arguments, appended after the preset's"},
		{"", ""},
		{"Output & behavior", ""},
		{"  -o, --output <dir>", "Output directory (required)"},
		{"  --bin-dir <dir>", "Bundled ffmpeg/ffprobe root (default: <exe dir>/bin)"},
		{"  -d, --dry-run", "Probe and print commands; run nothing"},
		{"", ""},
		{"Integrations", ""},
		{"  --history-db <path>", "Record batches in a SQLite database"},
		{"  --list-history <n>", "Print the last n batches and exit"},
		{"  --show-batch <id>", "Print one batch (ID or 8+ char prefix) and exit"},
		{"  --events-addr <addr>", "Serve events on ws://<addr>/events"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Show engine output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "Load settings from a YAML file"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (engines, encoders per preset)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so the bounded preset types can be used with flag.Var.

type presetValue struct{ p *preset.Preset }

func (v *presetValue) String() string {
	if v.p == nil {
		return ""
	}
	return strings.ToLower(v.p.String())
}
func (v *presetValue) Set(s string) error {
	p, err := preset.Parse(s)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}

type videoBitrateValue struct{ p *preset.VideoBitrate }

func (v *videoBitrateValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(v.p.Kbps())
}
func (v *videoBitrateValue) Set(s string) error {
	n, err := parseKbps(s)
	if err != nil {
		return err
	}
	b, err := preset.ParseVideoBitrate(n)
	if err != nil {
		return err
	}
	*v.p = b
	return nil
}

type audioBitrateValue struct{ p *preset.AudioBitrate }

func (v *audioBitrateValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(v.p.Kbps())
}
func (v *audioBitrateValue) Set(s string) error {
	n, err := parseKbps(s)
	if err != nil {
		return err
	}
	b, err := preset.ParseAudioBitrate(n)
	if err != nil {
		return err
	}
	*v.p = b
	return nil
}

type compressionLevelValue struct{ p *preset.CompressionLevel }

func (v *compressionLevelValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(v.p.Level())
}
func (v *compressionLevelValue) Set(s string) error {
	n, err := parseInt(s, "compression level")
	if err != nil {
		return err
	}
	c, err := preset.ParseCompressionLevel(n)
	if err != nil {
		return err
	}
	*v.p = c
	return nil
}

type frameRateValue struct{ p *preset.FrameRate }

func (v *frameRateValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(v.p.FPS())
}
func (v *frameRateValue) Set(s string) error {
	n, err := parseInt(s, "frame rate")
	if err != nil {
		return err
	}
	f, err := preset.ParseFrameRate(n)
	if err != nil {
		return err
	}
	*v.p = f
	return nil
}

type widthValue struct{ p *preset.Width }

func (v *widthValue) String() string {
	if v.p == nil {
		return ""
	}
	return strconv.Itoa(v.p.Pixels())
}
func (v *widthValue) Set(s string) error {
	n, err := parseInt(s, "width")
	if err != nil {
		return err
	}
	w, err := preset.ParseWidth(n)
	if err != nil {
		return err
	}
	*v.p = w
	return nil
}

// parseKbps accepts "128", "128k", "128K" and "128kbps".
func parseKbps(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if trimmed, ok := strings.CutSuffix(s, "kbps"); ok {
		s = strings.TrimSpace(trimmed)
	} else if trimmed, ok := strings.CutSuffix(s, "k"); ok {
		s = strings.TrimSpace(trimmed)
	}
	return parseInt(s, "bitrate")
}

// parseInt parses a string as an integer; returns a clear error on failure.
func parseInt(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number (got %q)", name, s)
	}
	return n, nil
}

func parseColorMode(s string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
}
