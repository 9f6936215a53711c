package planner

import (
	"path/filepath"
	"testing"

	"github.com/backmassage/lomux/internal/preset"
)

func TestPlan_OutputNaming(t *testing.T) {
	p := New(Batch{OutputDir: "/out", Preset: preset.WEBM})
	job := p.Plan("/media/My Clip.final.mov", 2, 5)

	want := filepath.Join("/out", "My Clip.final_webm.webm")
	if job.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", job.OutputPath, want)
	}
	if job.Index != 2 || job.Total != 5 {
		t.Errorf("Index/Total = %d/%d, want 2/5", job.Index, job.Total)
	}
	if job.Preset != preset.WEBM {
		t.Errorf("Preset = %v, want WEBM", job.Preset)
	}
	if job.ID == "" {
		t.Error("expected a job ID")
	}
	if job.Name() != "My Clip.final.mov" {
		t.Errorf("Name() = %q", job.Name())
	}
	if job.Duration != 0 {
		t.Errorf("Duration = %v, want 0 before probing", job.Duration)
	}
}

func TestPlan_SameInputSamePath(t *testing.T) {
	a := New(Batch{OutputDir: "/out", Preset: preset.MP3}).Plan("/in/song.wav", 1, 1)
	b := New(Batch{OutputDir: "/out", Preset: preset.MP3}).Plan("/in/song.wav", 1, 1)
	if a.OutputPath != b.OutputPath {
		t.Errorf("repeat batch produced %q then %q", a.OutputPath, b.OutputPath)
	}
	if a.ID == b.ID {
		t.Error("job IDs should be unique per run")
	}
}

func TestPlan_CollidingStemsInOneBatch(t *testing.T) {
	p := New(Batch{OutputDir: "/out", Preset: preset.MP4})
	first := p.Plan("/a/clip.mkv", 1, 2)
	second := p.Plan("/b/clip.avi", 2, 2)

	if first.OutputPath != filepath.Join("/out", "clip_mp4.mp4") {
		t.Errorf("first = %q", first.OutputPath)
	}
	if second.OutputPath != filepath.Join("/out", "clip_mp4 - dup1.mp4") {
		t.Errorf("second = %q", second.OutputPath)
	}
}

func TestPlan_ExtraIsCopied(t *testing.T) {
	params := preset.ParameterSet{Extra: []string{"-ss", "5"}}
	p := New(Batch{OutputDir: "/out", Params: params})
	job := p.Plan("/in/x.mp4", 1, 1)

	params.Extra[1] = "99"
	if job.Params.Extra[1] != "5" {
		t.Errorf("job extra args aliased caller slice: %q", job.Params.Extra)
	}
}

func TestWithDuration(t *testing.T) {
	j := Job{InputPath: "a.mp4"}
	if got := j.WithDuration(12.5).Duration; got != 12.5 {
		t.Errorf("Duration = %v, want 12.5", got)
	}
	if got := j.WithDuration(-1).Duration; got != 0 {
		t.Errorf("negative duration = %v, want 0", got)
	}
	if j.Duration != 0 {
		t.Error("WithDuration mutated the receiver")
	}
}
