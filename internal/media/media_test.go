package media

import (
	"strings"
	"testing"
)

// mp4Header is the start of an ISO base media file: an ftyp box with the isom brand
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

var wavHeader = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)

func TestDetectVideoType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared string
		want     string
		wantErr  bool
	}{
		{"declared mp4", []byte("anything"), "video/mp4", "video/mp4", false},
		{"declared with params", []byte("anything"), "video/webm; codecs=vp9", "video/webm", false},
		{"declared quicktime", []byte("anything"), "video/quicktime", "video/quicktime", false},
		{"octet-stream sniffed", mp4Header, "application/octet-stream", "video/", false},
		{"undeclared sniffed", mp4Header, "", "video/", false},
		{"plain text rejected", []byte("hello world, this is not a video"), "text/plain", "", true},
		{"audio rejected", wavHeader, "", "", true},
		{"empty rejected", nil, "video/mp4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectVideoType(tt.data, tt.declared)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got type %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Expected type with prefix %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetectAudioType(t *testing.T) {
	if got := DetectAudioType(wavHeader); !strings.HasPrefix(got, "audio/") {
		t.Errorf("Expected an audio type for WAV data, got %q", got)
	}
	if got := DetectAudioType([]byte("ID3\x04\x00\x00\x00\x00\x00\x00")); !strings.HasPrefix(got, "audio/") {
		t.Errorf("Expected an audio type for MP3 data, got %q", got)
	}
	if got := DetectAudioType(nil); got != "" {
		t.Errorf("Expected empty type for no data, got %q", got)
	}
}

func TestVideoPayload_Size(t *testing.T) {
	var nilPayload *VideoPayload
	if nilPayload.Size() != 0 {
		t.Error("Expected nil payload size 0")
	}
	p := &VideoPayload{Data: mp4Header}
	if p.Size() != len(mp4Header) {
		t.Errorf("Expected size %d, got %d", len(mp4Header), p.Size())
	}
}
