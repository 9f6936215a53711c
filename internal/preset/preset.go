// Package preset defines the closed set of output presets and the bounded
// parameter types they consume.
//
// Every exported value type in this package can only hold a member of its
// choice set: the fields are unexported, the zero value means "default", and
// the only constructors are the enumerated variables or a checked Parse
// function. Callers therefore never validate parameters at run time.
package preset

import (
	"fmt"
	"strings"
)

type kind uint8

const (
	kindMP4 kind = iota
	kindMKV
	kindWEBM
	kindMP3
	kindFLAC
	kindGIF
)

// Preset selects the output container/codec bundle for a job. The zero
// value is MP4.
type Preset struct{ k kind }

// The six supported presets.
var (
	MP4  = Preset{kindMP4}  // H.264 + AAC.
	MKV  = Preset{kindMKV}  // H.265 + Opus.
	WEBM = Preset{kindWEBM} // VP9 + Opus.
	MP3  = Preset{kindMP3}  // Audio only, lossy.
	FLAC = Preset{kindFLAC} // Audio only, lossless.
	GIF  = Preset{kindGIF}  // Animated image.
)

// Param names one user-adjustable parameter.
type Param string

const (
	ParamVideoBitrate     Param = "video-bitrate"
	ParamAudioBitrate     Param = "audio-bitrate"
	ParamCompressionLevel Param = "compression-level"
	ParamFrameRate        Param = "frame-rate"
	ParamWidth            Param = "width"
)

type presetInfo struct {
	label  string
	ext    string
	params []Param
}

var infos = [...]presetInfo{
	kindMP4:  {"MP4", "mp4", []Param{ParamVideoBitrate, ParamAudioBitrate}},
	kindMKV:  {"MKV", "mkv", []Param{ParamVideoBitrate, ParamAudioBitrate}},
	kindWEBM: {"WEBM", "webm", []Param{ParamVideoBitrate, ParamAudioBitrate}},
	kindMP3:  {"MP3", "mp3", []Param{ParamAudioBitrate}},
	kindFLAC: {"FLAC", "flac", []Param{ParamCompressionLevel}},
	kindGIF:  {"GIF", "gif", []Param{ParamFrameRate, ParamWidth}},
}

// All returns every preset in display order.
func All() []Preset {
	return []Preset{MP4, MKV, WEBM, MP3, FLAC, GIF}
}

// Parse resolves a case-insensitive preset label ("mp4", "FLAC", ...).
func Parse(s string) (Preset, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range All() {
		if p.String() == want {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("invalid preset %q (use %s)", s, strings.Join(labels(), ", "))
}

func labels() []string {
	out := make([]string, 0, len(infos))
	for _, p := range All() {
		out = append(out, strings.ToLower(p.String()))
	}
	return out
}

// String returns the upper-case display label, e.g. "WEBM".
func (p Preset) String() string { return infos[p.k].label }

// Extension returns the output file extension without a dot.
func (p Preset) Extension() string { return infos[p.k].ext }

// Params lists the parameters this preset reads. Everything else in a
// ParameterSet is ignored for it.
func (p Preset) Params() []Param {
	return append([]Param(nil), infos[p.k].params...)
}

// Uses reports whether param is relevant to p.
func (p Preset) Uses(param Param) bool {
	for _, q := range infos[p.k].params {
		if q == param {
			return true
		}
	}
	return false
}

// AudioOnly reports whether the preset drops the video stream.
func (p Preset) AudioOnly() bool { return p == MP3 || p == FLAC }

// MarshalText implements encoding.TextMarshaler.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(p.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so presets can be read
// from YAML and JSON.
func (p *Preset) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
