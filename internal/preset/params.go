package preset

import (
	"fmt"
	"strconv"
	"strings"
)

// Default values, matching the original desktop UI.
const (
	DefaultVideoKbps        = 1000
	DefaultAudioKbps        = 128
	DefaultCompressionLevel = 5
	DefaultFrameRate        = 10
	DefaultWidth            = 320

	MinCompressionLevel = 0
	MaxCompressionLevel = 8
)

// Choice sets.
var (
	videoKbpsChoices = []int{250, 500, 1000, 2000, 4000}
	audioKbpsChoices = []int{64, 96, 128, 192, 256, 320}
	frameRateChoices = []int{10, 15, 24, 30, 60}
	widthChoices     = []int{320, 480, 640, 800, 1024}
)

// VideoBitrate is a video bitrate in kbps from a fixed set.
type VideoBitrate struct{ kbps int }

// ParseVideoBitrate accepts one of 250, 500, 1000, 2000, 4000.
func ParseVideoBitrate(kbps int) (VideoBitrate, error) {
	if err := choose("video bitrate", kbps, videoKbpsChoices); err != nil {
		return VideoBitrate{}, err
	}
	return VideoBitrate{kbps}, nil
}

// Kbps returns the bitrate, or the default for the zero value.
func (v VideoBitrate) Kbps() int {
	if v.kbps == 0 {
		return DefaultVideoKbps
	}
	return v.kbps
}

// Arg formats the bitrate for -b:v ("1000k").
func (v VideoBitrate) Arg() string { return strconv.Itoa(v.Kbps()) + "k" }

// AudioBitrate is an audio bitrate in kbps from a fixed set.
type AudioBitrate struct{ kbps int }

// ParseAudioBitrate accepts one of 64, 96, 128, 192, 256, 320.
func ParseAudioBitrate(kbps int) (AudioBitrate, error) {
	if err := choose("audio bitrate", kbps, audioKbpsChoices); err != nil {
		return AudioBitrate{}, err
	}
	return AudioBitrate{kbps}, nil
}

// Kbps returns the bitrate, or the default for the zero value.
func (a AudioBitrate) Kbps() int {
	if a.kbps == 0 {
		return DefaultAudioKbps
	}
	return a.kbps
}

// Arg formats the bitrate for -b:a ("128k").
func (a AudioBitrate) Arg() string { return strconv.Itoa(a.Kbps()) + "k" }

// CompressionLevel is a FLAC compression level in 0..8. Level 0 is valid,
// so an explicit set flag distinguishes it from the default.
type CompressionLevel struct {
	level int
	set   bool
}

// ParseCompressionLevel accepts 0 through 8.
func ParseCompressionLevel(level int) (CompressionLevel, error) {
	if level < MinCompressionLevel || level > MaxCompressionLevel {
		return CompressionLevel{}, fmt.Errorf("invalid compression level %d (use %d-%d)",
			level, MinCompressionLevel, MaxCompressionLevel)
	}
	return CompressionLevel{level: level, set: true}, nil
}

// Level returns the level, or the default for the zero value.
func (c CompressionLevel) Level() int {
	if !c.set {
		return DefaultCompressionLevel
	}
	return c.level
}

// FrameRate is a GIF frame rate from a fixed set.
type FrameRate struct{ fps int }

// ParseFrameRate accepts one of 10, 15, 24, 30, 60.
func ParseFrameRate(fps int) (FrameRate, error) {
	if err := choose("frame rate", fps, frameRateChoices); err != nil {
		return FrameRate{}, err
	}
	return FrameRate{fps}, nil
}

// FPS returns the frame rate, or the default for the zero value.
func (f FrameRate) FPS() int {
	if f.fps == 0 {
		return DefaultFrameRate
	}
	return f.fps
}

// Width is a GIF output width in pixels from a fixed set.
type Width struct{ px int }

// ParseWidth accepts one of 320, 480, 640, 800, 1024.
func ParseWidth(px int) (Width, error) {
	if err := choose("width", px, widthChoices); err != nil {
		return Width{}, err
	}
	return Width{px}, nil
}

// Pixels returns the width, or the default for the zero value.
func (w Width) Pixels() int {
	if w.px == 0 {
		return DefaultWidth
	}
	return w.px
}

// ParameterSet bundles every tunable for a job. Only the fields named by
// the active preset's Params are read; the rest are ignored.
type ParameterSet struct {
	VideoBitrate     VideoBitrate
	AudioBitrate     AudioBitrate
	CompressionLevel CompressionLevel
	FrameRate        FrameRate
	Width            Width

	// Extra holds raw engine arguments appended after the preset's own.
	Extra []string
}

// SplitExtra tokenizes a raw extra-arguments string on whitespace. No
// quoting or shell expansion is applied.
func SplitExtra(raw string) []string {
	return strings.Fields(raw)
}

// Describe renders the relevant parameters of p as a short label for logs,
// e.g. "video 1000k, audio 128k".
func (ps ParameterSet) Describe(p Preset) string {
	parts := make([]string, 0, 3)
	for _, param := range p.Params() {
		switch param {
		case ParamVideoBitrate:
			parts = append(parts, "video "+ps.VideoBitrate.Arg())
		case ParamAudioBitrate:
			parts = append(parts, "audio "+ps.AudioBitrate.Arg())
		case ParamCompressionLevel:
			parts = append(parts, fmt.Sprintf("level %d", ps.CompressionLevel.Level()))
		case ParamFrameRate:
			parts = append(parts, fmt.Sprintf("%d fps", ps.FrameRate.FPS()))
		case ParamWidth:
			parts = append(parts, fmt.Sprintf("width %dpx", ps.Width.Pixels()))
		}
	}
	return strings.Join(parts, ", ")
}

func choose(name string, v int, set []int) error {
	for _, c := range set {
		if c == v {
			return nil
		}
	}
	opts := make([]string, len(set))
	for i, c := range set {
		opts[i] = strconv.Itoa(c)
	}
	return fmt.Errorf("invalid %s %d (use one of %s)", name, v, strings.Join(opts, ", "))
}
