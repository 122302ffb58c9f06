package main

import "testing"

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		flag    string
		want    CaptionFormat
		wantErr bool
	}{
		{"srt extension", "video.en.srt", "", FormatSRT, false},
		{"vtt extension", "video.en.vtt", "", FormatVTT, false},
		{"uppercase extension", "VIDEO.SRT", "", FormatSRT, false},
		{"flag overrides extension", "video.srt", "vtt", FormatVTT, false},
		{"flag alone", "captions.txt", "srt", FormatSRT, false},
		{"unknown extension without flag", "captions.txt", "", "", true},
		{"bad flag value", "video.srt", "ass", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.path, tt.flag)
			if (err != nil) != tt.wantErr {
				t.Errorf("resolveFormat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("resolveFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
