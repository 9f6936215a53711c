package preset

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{"mp4", MP4, false},
		{"MKV", MKV, false},
		{" webm ", WEBM, false},
		{"Mp3", MP3, false},
		{"flac", FLAC, false},
		{"gif", GIF, false},
		{"avi", Preset{}, true},
		{"", Preset{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestZeroPresetIsMP4(t *testing.T) {
	var p Preset
	if p != MP4 {
		t.Errorf("zero preset = %v, want MP4", p)
	}
}

func TestExtensions(t *testing.T) {
	want := map[Preset]string{
		MP4: "mp4", MKV: "mkv", WEBM: "webm", MP3: "mp3", FLAC: "flac", GIF: "gif",
	}
	for p, ext := range want {
		if got := p.Extension(); got != ext {
			t.Errorf("%v.Extension() = %q, want %q", p, got, ext)
		}
	}
}

func TestUses(t *testing.T) {
	if !MP4.Uses(ParamVideoBitrate) || !MP4.Uses(ParamAudioBitrate) {
		t.Error("MP4 should use video and audio bitrate")
	}
	if MP4.Uses(ParamCompressionLevel) {
		t.Error("MP4 should not use compression level")
	}
	if MP3.Uses(ParamVideoBitrate) {
		t.Error("MP3 should not use video bitrate")
	}
	if !FLAC.Uses(ParamCompressionLevel) || FLAC.Uses(ParamAudioBitrate) {
		t.Error("FLAC should use only compression level")
	}
	if !GIF.Uses(ParamFrameRate) || !GIF.Uses(ParamWidth) || GIF.Uses(ParamAudioBitrate) {
		t.Error("GIF should use only frame rate and width")
	}
}

func TestAudioOnly(t *testing.T) {
	for _, p := range All() {
		want := p == MP3 || p == FLAC
		if got := p.AudioOnly(); got != want {
			t.Errorf("%v.AudioOnly() = %v, want %v", p, got, want)
		}
	}
}

func TestParamsReturnsCopy(t *testing.T) {
	ps := GIF.Params()
	ps[0] = ParamAudioBitrate
	if GIF.Uses(ParamAudioBitrate) {
		t.Error("mutating Params() result leaked into preset table")
	}
}

func TestUnmarshalText(t *testing.T) {
	var p Preset
	if err := p.UnmarshalText([]byte("webm")); err != nil {
		t.Fatal(err)
	}
	if p != WEBM {
		t.Errorf("got %v, want WEBM", p)
	}
	if err := p.UnmarshalText([]byte("wav")); err == nil {
		t.Error("expected error for unknown preset")
	}
	b, _ := FLAC.MarshalText()
	if string(b) != "flac" {
		t.Errorf("MarshalText = %q, want flac", b)
	}
}
