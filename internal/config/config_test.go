package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/lomux/internal/preset"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/library", "/media/library"},
		{"single trailing slash", "/media/library/", "/media/library"},
		{"multiple trailing slashes", "/media/library///", "/media/library"},
		{"root path", "/", "/"},
		{"relative path", "output", "output"},
		{"relative with slash", "output/", "output"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"complete", func(c *Config) {}, false},
		{"no inputs", func(c *Config) { c.Inputs = nil }, true},
		{"no output", func(c *Config) { c.OutputDir = "" }, true},
		{"check needs nothing", func(c *Config) { c.Inputs, c.OutputDir, c.CheckOnly = nil, "", true }, false},
		{"bad color", func(c *Config) { c.ColorMode = "sometimes" }, true},
		{"list history without db", func(c *Config) { c.ListHistory = 5 }, true},
		{"list history with db", func(c *Config) {
			c.Inputs, c.OutputDir = nil, ""
			c.ListHistory, c.HistoryDB = 5, "h.db"
		}, false},
		{"negative list history", func(c *Config) { c.ListHistory = -1 }, true},
		{"show batch without db", func(c *Config) { c.ShowBatch = "0f8fad5b" }, true},
		{"show batch with db", func(c *Config) {
			c.Inputs, c.OutputDir = nil, ""
			c.ShowBatch, c.HistoryDB = "0f8fad5b", "h.db"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Inputs = []string{"a.mov"}
			cfg.OutputDir = "out"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		wantErr bool
	}{
		{"separate dirs", "/media/in", "/media/out", false},
		{"same dir", "/media/lib", "/media/lib", true},
		{"output inside input", "/media/lib", "/media/lib/converted", true},
		{"input inside output", "/media/lib/sub", "/media/lib", false},
		{"prefix but not nested", "/media/lib", "/media/library", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ValidatePaths(tt.input, tt.output)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaths(%q, %q) error = %v, wantErr %v", tt.input, tt.output, err, tt.wantErr)
			}
		})
	}
}

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	cfg := DefaultConfig()
	var out, errOut bytes.Buffer
	err := parseFlags(&cfg, args, &out, &errOut)
	return cfg, err
}

func TestParseFlags_Interleaved(t *testing.T) {
	cfg, err := parse(t, "a.mov", "-o", "out/", "b.mov", "--preset", "FLAC", "--compression-level", "0", "c dir")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(cfg.Inputs, "|") != "a.mov|b.mov|c dir" {
		t.Errorf("Inputs = %q", cfg.Inputs)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Preset != preset.FLAC {
		t.Errorf("Preset = %v", cfg.Preset)
	}
	if cfg.Params.CompressionLevel.Level() != 0 {
		t.Errorf("level = %d, want explicit 0", cfg.Params.CompressionLevel.Level())
	}
}

func TestParseFlags_DoubleDash(t *testing.T) {
	cfg, err := parse(t, "-o", "out", "--", "-weird.mov", "x.mov")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(cfg.Inputs, "|") != "-weird.mov|x.mov" {
		t.Errorf("Inputs = %q", cfg.Inputs)
	}
}

func TestParseFlags_Params(t *testing.T) {
	cfg, err := parse(t,
		"--video-bitrate", "4000", "--audio-bitrate", "320k",
		"--fps", "24", "--width", "640", "--extra", " -ss 5  -t 10 ", "in.mov", "-o", "out")
	if err != nil {
		t.Fatal(err)
	}
	ps := cfg.Params
	if ps.VideoBitrate.Kbps() != 4000 || ps.AudioBitrate.Kbps() != 320 {
		t.Errorf("bitrates = %d/%d", ps.VideoBitrate.Kbps(), ps.AudioBitrate.Kbps())
	}
	if ps.FrameRate.FPS() != 24 || ps.Width.Pixels() != 640 {
		t.Errorf("gif params = %d/%d", ps.FrameRate.FPS(), ps.Width.Pixels())
	}
	if strings.Join(ps.Extra, " ") != "-ss 5 -t 10" {
		t.Errorf("Extra = %q", ps.Extra)
	}
}

func TestParseFlags_RejectsOutOfSet(t *testing.T) {
	for _, args := range [][]string{
		{"--video-bitrate", "300"},
		{"--audio-bitrate", "abc"},
		{"--compression-level", "9"},
		{"--fps", "25"},
		{"--width", "1920"},
		{"--preset", "avi"},
	} {
		if _, err := parse(t, args...); err == nil {
			t.Errorf("parse(%q): expected error", args)
		}
	}
}

func TestParseFlags_ColorAndUtility(t *testing.T) {
	cfg, err := parse(t, "--no-color", "--color", "-c")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("ColorMode = %q, --no-color should win", cfg.ColorMode)
	}
	if !cfg.CheckOnly {
		t.Error("CheckOnly not set")
	}

	if _, err := parse(t, "--version"); !errors.Is(err, ErrExit) {
		t.Errorf("--version err = %v, want ErrExit", err)
	}
	if _, err := parse(t, "-h"); !errors.Is(err, ErrExit) {
		t.Errorf("-h err = %v, want ErrExit", err)
	}
}

func TestParseFlags_ShowBatch(t *testing.T) {
	cfg, err := parse(t, "--history-db", "h.db", "--show-batch", "0f8fad5b")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ShowBatch != "0f8fad5b" || cfg.HistoryDB != "h.db" {
		t.Errorf("ShowBatch = %q, HistoryDB = %q", cfg.ShowBatch, cfg.HistoryDB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lomux.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
preset: gif
frame_rate: 15
width: 800
extra_args: "-an"
output_dir: /srv/out/
color: never
history_db: /tmp/h.db
events_addr: 127.0.0.1:8765
dry_run: true
`)
	cfg := DefaultConfig()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != preset.GIF || cfg.Params.FrameRate.FPS() != 15 || cfg.Params.Width.Pixels() != 800 {
		t.Errorf("conversion = %v %d %d", cfg.Preset, cfg.Params.FrameRate.FPS(), cfg.Params.Width.Pixels())
	}
	if cfg.OutputDir != "/srv/out" || cfg.ColorMode != ColorNever || !cfg.DryRun {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HistoryDB != "/tmp/h.db" || cfg.EventsAddr != "127.0.0.1:8765" {
		t.Errorf("integrations = %q %q", cfg.HistoryDB, cfg.EventsAddr)
	}
	if len(cfg.Params.Extra) != 1 || cfg.Params.Extra[0] != "-an" {
		t.Errorf("Extra = %q", cfg.Params.Extra)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "presett: mp4\n"},
		{"bad preset", "preset: avi\n"},
		{"bad bitrate", "audio_bitrate: 100\n"},
		{"bad color", "color: rainbow\n"},
		{"bad yaml", "preset: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := LoadFile(writeConfig(t, tt.body), &cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFile_Empty(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadFile(writeConfig(t, ""), &cfg); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Preset != preset.MP4 {
		t.Errorf("Preset = %v", cfg.Preset)
	}
}

func TestParseFlags_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "preset: mp3\naudio_bitrate: 192\noutput_dir: from-file\n")
	cfg, err := parse(t, "--config", path, "--audio-bitrate", "256", "in.wav")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != preset.MP3 {
		t.Errorf("Preset = %v, want MP3 from file", cfg.Preset)
	}
	if cfg.Params.AudioBitrate.Kbps() != 256 {
		t.Errorf("audio = %d, want flag value 256", cfg.Params.AudioBitrate.Kbps())
	}
	if cfg.OutputDir != "from-file" {
		t.Errorf("OutputDir = %q, want file value", cfg.OutputDir)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "in.wav" {
		t.Errorf("Inputs = %q", cfg.Inputs)
	}
}

func TestParseFlags_MissingConfigFile(t *testing.T) {
	if _, err := parse(t, "--config=/nonexistent/lomux.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
