package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/lomux/internal/preset"
)

// fileConfig mirrors the YAML keys. Pointers distinguish "absent" from a
// zero value so only keys present in the file override defaults.
type fileConfig struct {
	Preset           *string `yaml:"preset"`
	VideoBitrate     *int    `yaml:"video_bitrate"`
	AudioBitrate     *int    `yaml:"audio_bitrate"`
	CompressionLevel *int    `yaml:"compression_level"`
	FrameRate        *int    `yaml:"frame_rate"`
	Width            *int    `yaml:"width"`
	ExtraArgs        *string `yaml:"extra_args"`

	OutputDir *string `yaml:"output_dir"`
	BinDir    *string `yaml:"bin_dir"`

	Color   *string `yaml:"color"`
	LogFile *string `yaml:"log_file"`
	Verbose *bool   `yaml:"verbose"`

	HistoryDB  *string `yaml:"history_db"`
	EventsAddr *string `yaml:"events_addr"`
	DryRun     *bool   `yaml:"dry_run"`
}

// LoadFile reads a YAML config file at path into cfg. Unknown keys and
// out-of-range values are errors.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := decode(f, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fc fileConfig
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Preset != nil {
		p, err := preset.Parse(*fc.Preset)
		if err != nil {
			return err
		}
		cfg.Preset = p
	}
	if fc.VideoBitrate != nil {
		v, err := preset.ParseVideoBitrate(*fc.VideoBitrate)
		if err != nil {
			return err
		}
		cfg.Params.VideoBitrate = v
	}
	if fc.AudioBitrate != nil {
		a, err := preset.ParseAudioBitrate(*fc.AudioBitrate)
		if err != nil {
			return err
		}
		cfg.Params.AudioBitrate = a
	}
	if fc.CompressionLevel != nil {
		c, err := preset.ParseCompressionLevel(*fc.CompressionLevel)
		if err != nil {
			return err
		}
		cfg.Params.CompressionLevel = c
	}
	if fc.FrameRate != nil {
		f, err := preset.ParseFrameRate(*fc.FrameRate)
		if err != nil {
			return err
		}
		cfg.Params.FrameRate = f
	}
	if fc.Width != nil {
		w, err := preset.ParseWidth(*fc.Width)
		if err != nil {
			return err
		}
		cfg.Params.Width = w
	}
	if fc.ExtraArgs != nil {
		cfg.Params.Extra = preset.SplitExtra(*fc.ExtraArgs)
	}

	if fc.OutputDir != nil {
		cfg.OutputDir = NormalizeDirArg(*fc.OutputDir)
	}
	if fc.BinDir != nil {
		cfg.BinDir = *fc.BinDir
	}
	if fc.Color != nil {
		m, err := parseColorMode(*fc.Color)
		if err != nil {
			return err
		}
		cfg.ColorMode = m
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.HistoryDB != nil {
		cfg.HistoryDB = *fc.HistoryDB
	}
	if fc.EventsAddr != nil {
		cfg.EventsAddr = *fc.EventsAddr
	}
	if fc.DryRun != nil {
		cfg.DryRun = *fc.DryRun
	}
	return nil
}
