package mediainfo

import (
	"strings"
	"testing"
)

const probeJSON = `{
  "format": {
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "format_long_name": "QuickTime / MOV",
    "duration": "12.480000",
    "size": "1048576",
    "bit_rate": "672000",
    "tags": {"title": "demo", "encoder": "Lavf60.3.100"}
  },
  "streams": [
    {
      "codec_type": "video",
      "codec_name": "h264",
      "codec_long_name": "H.264 / AVC / MPEG-4 AVC",
      "width": 1280,
      "height": 720,
      "r_frame_rate": "30/1",
      "bit_rate": "600000"
    },
    {
      "codec_type": "audio",
      "codec_name": "aac",
      "codec_long_name": "AAC (Advanced Audio Coding)",
      "sample_rate": "48000",
      "channels": 2
    }
  ]
}`

func TestParseAndRenderText(t *testing.T) {
	rep, err := Parse([]byte(probeJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := RenderText(rep)

	wantLines := []string{
		"Format name: mov,mp4,m4a,3gp,3g2,mj2",
		"Duration: 12.480000 seconds",
		"--- Metadata Tags ---",
		"encoder: Lavf60.3.100",
		"title: demo",
		"--- Stream Information ---",
		"Stream #0 (video):",
		"  Resolution: 1280x720",
		"  Frame rate: 30/1",
		"Stream #1 (audio):",
		"  Sample rate: 48000 Hz",
		"  Channels: 2",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Fatalf("report missing line %q:\n%s", line, got)
		}
	}

	// Tags must be sorted.
	if strings.Index(got, "encoder:") > strings.Index(got, "title:") {
		t.Fatalf("tags not sorted:\n%s", got)
	}
	// Audio stream has no bit_rate in the fixture.
	if !strings.Contains(got, "  Bitrate: N/A bps") {
		t.Fatalf("missing N/A placeholder for absent audio bitrate:\n%s", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestRenderText_EmptyReport(t *testing.T) {
	rep, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := RenderText(rep)
	if !strings.Contains(got, "Format name: N/A") {
		t.Fatalf("empty report should still render placeholders:\n%s", got)
	}
	if strings.Contains(got, "--- Stream Information ---") {
		t.Fatalf("no streams section expected for empty input:\n%s", got)
	}
}
