package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/lomux/internal/planner"
	"github.com/backmassage/lomux/internal/preset"
)

// Threads is the fixed -threads value. The batch runs one job at a time and
// the encoders parallelize internally.
const Threads = 2

// Build returns the complete argument vector for job, with enginePath as
// argv[0]. Layout:
//
//	engine -hide_banner -threads 2 -progress pipe:1 -nostats -i <input>
//	       <preset args> <extra args> -y <output>
//
// The result is passed to exec directly and never through a shell.
func Build(enginePath string, job planner.Job) []string {
	args := make([]string, 0, 24+len(job.Params.Extra))

	// --- Preamble ---
	args = append(args,
		enginePath,
		"-hide_banner",
		"-threads", strconv.Itoa(Threads),
		"-progress", "pipe:1",
		"-nostats",
	)

	// --- Input ---
	args = append(args, "-i", job.InputPath)

	// --- Codecs / filters ---
	args = appendPreset(args, job.Preset, job.Params)

	// --- Raw passthrough ---
	args = append(args, job.Params.Extra...)

	// --- Output ---
	args = append(args, "-y", job.OutputPath)
	return args
}

// appendPreset adds the codec arguments for p. Only the parameters p
// declares are read.
func appendPreset(args []string, p preset.Preset, ps preset.ParameterSet) []string {
	if p.AudioOnly() {
		args = append(args, "-vn")
	}
	switch p {
	case preset.MP4:
		return append(args,
			"-c:v", "libx264", "-b:v", ps.VideoBitrate.Arg(),
			"-c:a", "aac", "-b:a", ps.AudioBitrate.Arg(),
		)
	case preset.MKV:
		return append(args,
			"-c:v", "libx265", "-b:v", ps.VideoBitrate.Arg(),
			"-c:a", "libopus", "-b:a", ps.AudioBitrate.Arg(),
		)
	case preset.WEBM:
		return append(args,
			"-c:v", "libvpx-vp9", "-b:v", ps.VideoBitrate.Arg(),
			"-c:a", "libopus", "-b:a", ps.AudioBitrate.Arg(),
		)
	case preset.MP3:
		return append(args,
			"-c:a", "libmp3lame", "-b:a", ps.AudioBitrate.Arg(),
		)
	case preset.FLAC:
		return append(args,
			"-c:a", "flac", "-compression_level", strconv.Itoa(ps.CompressionLevel.Level()),
		)
	case preset.GIF:
		return append(args, "-vf", GIFFilter(ps.FrameRate, ps.Width))
	default:
		panic(fmt.Sprintf("ffmpeg: unhandled preset %v", p))
	}
}

// GIFFilter returns the -vf chain for the GIF preset. Height is derived
// from width keeping the aspect ratio; lanczos gives the sharpest scale.
func GIFFilter(fps preset.FrameRate, width preset.Width) string {
	return fmt.Sprintf("fps=%d,scale=%d:-1:flags=lanczos", fps.FPS(), width.Pixels())
}

// Encoders lists the encoder names each preset needs from the engine.
// Used by --check to report which presets this ffmpeg build supports.
func Encoders(p preset.Preset) []string {
	switch p {
	case preset.MP4:
		return []string{"libx264", "aac"}
	case preset.MKV:
		return []string{"libx265", "libopus"}
	case preset.WEBM:
		return []string{"libvpx-vp9", "libopus"}
	case preset.MP3:
		return []string{"libmp3lame"}
	case preset.FLAC:
		return []string{"flac"}
	case preset.GIF:
		return []string{"gif"}
	default:
		return nil
	}
}
