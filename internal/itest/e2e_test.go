//go:build integration

package itest

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidspect/vidspect/internal/pipeline"
)

// TestE2E_WatermarkDetection renders a short clip with a constant drawtext
// overlay and expects the detector to report it as a consistent watermark.
// Requires ffmpeg plus at least one OCR engine on the host.
func TestE2E_WatermarkDetection(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")

	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=black:s=1280x720:d=10:r=30",
		"-vf", "drawtext=text='VIDSPECT':fontcolor=white:fontsize=72:x=40:y=40",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	frames, err := probeFrameCount(in)
	if err != nil {
		t.Fatalf("probe fixture: %v", err)
	}
	if frames < 100 {
		t.Fatalf("fixture too short: %d frames", frames)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := pipeline.DetectConfig{
		Input:         in,
		SampleCount:   5,
		MinConfidence: 0.4,
		PaddingRatio:  pipeline.DefaultPaddingRatio,
		Engine:        "auto",
	}
	cfg.Tools.FFmpeg.FFmpegPath = "ffmpeg"
	cfg.Tools.FFmpeg.FFprobePath = "ffprobe"
	cfg.Tools.OCR.Languages = []string{"en"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	rep, err := pipeline.Detect(ctx, cfg)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if !rep.WatermarkFound {
		t.Fatalf("expected a watermark, report: %+v", rep)
	}
	found := false
	for _, c := range rep.Candidates {
		if c.Text == "VIDSPECT" {
			found = true
			if !c.AppearsConsistently {
				t.Fatalf("overlay present on every frame must be consistent: %+v", c)
			}
			if c.Region == nil {
				t.Fatalf("expected a suggested region for %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("VIDSPECT not among candidates: %+v", rep.Candidates)
	}
}
