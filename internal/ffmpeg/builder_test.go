package ffmpeg

import (
	"slices"
	"testing"

	"github.com/backmassage/lomux/internal/planner"
	"github.com/backmassage/lomux/internal/preset"
)

func testJob(p preset.Preset, ps preset.ParameterSet) planner.Job {
	return planner.Job{
		Index: 1, Total: 1,
		InputPath:  "/in/clip.mov",
		OutputPath: "/out/clip_" + p.String() + "." + p.Extension(),
		Preset:     p,
		Params:     ps,
	}
}

func TestBuild_Layout(t *testing.T) {
	ps := preset.ParameterSet{Extra: []string{"-ss", "5"}}
	job := testJob(preset.MP4, ps)
	args := Build("/usr/bin/ffmpeg", job)

	wantPrefix := []string{
		"/usr/bin/ffmpeg", "-hide_banner", "-threads", "2",
		"-progress", "pipe:1", "-nostats", "-i", "/in/clip.mov",
	}
	if !slices.Equal(args[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("prefix = %q, want %q", args[:len(wantPrefix)], wantPrefix)
	}
	if args[len(args)-1] != job.OutputPath || args[len(args)-2] != "-y" {
		t.Errorf("tail = %q, want -y %s", args[len(args)-2:], job.OutputPath)
	}
	n := len(args)
	if args[n-4] != "-ss" || args[n-3] != "5" {
		t.Errorf("extras not directly before -y: %q", args)
	}
}

func TestBuild_PresetArgs(t *testing.T) {
	var ps preset.ParameterSet
	tests := []struct {
		p    preset.Preset
		want []string
	}{
		{preset.MP4, []string{"-c:v", "libx264", "-b:v", "1000k", "-c:a", "aac", "-b:a", "128k"}},
		{preset.MKV, []string{"-c:v", "libx265", "-b:v", "1000k", "-c:a", "libopus", "-b:a", "128k"}},
		{preset.WEBM, []string{"-c:v", "libvpx-vp9", "-b:v", "1000k", "-c:a", "libopus", "-b:a", "128k"}},
		{preset.MP3, []string{"-vn", "-c:a", "libmp3lame", "-b:a", "128k"}},
		{preset.FLAC, []string{"-vn", "-c:a", "flac", "-compression_level", "5"}},
		{preset.GIF, []string{"-vf", "fps=10,scale=320:-1:flags=lanczos"}},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			args := Build("ffmpeg", testJob(tt.p, ps))
			// Between "-i <input>" and "-y <output>".
			got := args[9 : len(args)-2]
			if !slices.Equal(got, tt.want) {
				t.Errorf("preset args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_IgnoresIrrelevantParams(t *testing.T) {
	lvl, _ := preset.ParseCompressionLevel(8)
	fps, _ := preset.ParseFrameRate(30)
	vb, _ := preset.ParseVideoBitrate(4000)
	ps := preset.ParameterSet{CompressionLevel: lvl, FrameRate: fps, VideoBitrate: vb}

	args := Build("ffmpeg", testJob(preset.MP3, ps))
	for _, a := range args {
		if a == "-compression_level" || a == "4000k" || a == "-vf" {
			t.Errorf("MP3 argv contains unrelated %q: %q", a, args)
		}
	}

	args = Build("ffmpeg", testJob(preset.FLAC, ps))
	if !slices.Contains(args, "8") {
		t.Errorf("FLAC argv missing level 8: %q", args)
	}
}

func TestBuild_CustomGIF(t *testing.T) {
	fps, _ := preset.ParseFrameRate(24)
	w, _ := preset.ParseWidth(640)
	args := Build("ffmpeg", testJob(preset.GIF, preset.ParameterSet{FrameRate: fps, Width: w}))
	if !slices.Contains(args, "fps=24,scale=640:-1:flags=lanczos") {
		t.Errorf("missing custom filter: %q", args)
	}
}

func TestBuild_DoesNotAliasExtra(t *testing.T) {
	ps := preset.ParameterSet{Extra: []string{"-an"}}
	job := testJob(preset.MP4, ps)
	args := Build("ffmpeg", job)
	args[len(args)-3] = "mutated"
	if job.Params.Extra[0] != "-an" {
		t.Error("Build result aliases job.Params.Extra")
	}
}

func TestEncoders(t *testing.T) {
	for _, p := range preset.All() {
		if len(Encoders(p)) == 0 {
			t.Errorf("no encoders listed for %v", p)
		}
	}
}
