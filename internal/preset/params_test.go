package preset

import (
	"reflect"
	"testing"
)

func TestZeroValuesAreDefaults(t *testing.T) {
	var ps ParameterSet
	if got := ps.VideoBitrate.Kbps(); got != DefaultVideoKbps {
		t.Errorf("video kbps = %d, want %d", got, DefaultVideoKbps)
	}
	if got := ps.AudioBitrate.Kbps(); got != DefaultAudioKbps {
		t.Errorf("audio kbps = %d, want %d", got, DefaultAudioKbps)
	}
	if got := ps.CompressionLevel.Level(); got != DefaultCompressionLevel {
		t.Errorf("level = %d, want %d", got, DefaultCompressionLevel)
	}
	if got := ps.FrameRate.FPS(); got != DefaultFrameRate {
		t.Errorf("fps = %d, want %d", got, DefaultFrameRate)
	}
	if got := ps.Width.Pixels(); got != DefaultWidth {
		t.Errorf("width = %d, want %d", got, DefaultWidth)
	}
}

func TestParseVideoBitrate(t *testing.T) {
	for _, kbps := range []int{250, 500, 1000, 2000, 4000} {
		v, err := ParseVideoBitrate(kbps)
		if err != nil {
			t.Fatalf("ParseVideoBitrate(%d): %v", kbps, err)
		}
		if v.Kbps() != kbps {
			t.Errorf("Kbps() = %d, want %d", v.Kbps(), kbps)
		}
	}
	for _, kbps := range []int{0, -1, 300, 8000} {
		if _, err := ParseVideoBitrate(kbps); err == nil {
			t.Errorf("ParseVideoBitrate(%d): expected error", kbps)
		}
	}
}

func TestParseAudioBitrate(t *testing.T) {
	a, err := ParseAudioBitrate(320)
	if err != nil {
		t.Fatal(err)
	}
	if a.Arg() != "320k" {
		t.Errorf("Arg() = %q, want 320k", a.Arg())
	}
	if _, err := ParseAudioBitrate(100); err == nil {
		t.Error("expected error for 100 kbps")
	}
}

func TestParseCompressionLevel(t *testing.T) {
	zero, err := ParseCompressionLevel(0)
	if err != nil {
		t.Fatal(err)
	}
	if zero.Level() != 0 {
		t.Errorf("explicit level 0 = %d, want 0", zero.Level())
	}
	eight, err := ParseCompressionLevel(8)
	if err != nil {
		t.Fatal(err)
	}
	if eight.Level() != 8 {
		t.Errorf("level = %d, want 8", eight.Level())
	}
	for _, lvl := range []int{-1, 9, 12} {
		if _, err := ParseCompressionLevel(lvl); err == nil {
			t.Errorf("ParseCompressionLevel(%d): expected error", lvl)
		}
	}
}

func TestParseFrameRateAndWidth(t *testing.T) {
	f, err := ParseFrameRate(24)
	if err != nil || f.FPS() != 24 {
		t.Errorf("ParseFrameRate(24) = %v, %v", f.FPS(), err)
	}
	if _, err := ParseFrameRate(25); err == nil {
		t.Error("expected error for 25 fps")
	}
	w, err := ParseWidth(800)
	if err != nil || w.Pixels() != 800 {
		t.Errorf("ParseWidth(800) = %v, %v", w.Pixels(), err)
	}
	if _, err := ParseWidth(1920); err == nil {
		t.Error("expected error for width 1920")
	}
}

func TestSplitExtra(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"-ss 5", []string{"-ss", "5"}},
		{"  -t\t10   -an ", []string{"-t", "10", "-an"}},
		{"-metadata title='a b'", []string{"-metadata", "title='a", "b'"}},
	}
	for _, tt := range tests {
		got := SplitExtra(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitExtra(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	var ps ParameterSet
	tests := []struct {
		p    Preset
		want string
	}{
		{MP4, "video 1000k, audio 128k"},
		{MP3, "audio 128k"},
		{FLAC, "level 5"},
		{GIF, "10 fps, width 320px"},
	}
	for _, tt := range tests {
		if got := ps.Describe(tt.p); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}
