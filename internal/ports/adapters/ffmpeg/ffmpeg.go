package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Adapter drives ffmpeg/ffprobe binaries for frame extraction and
// container probing.
type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Probe returns the raw ffprobe JSON for path.
func (a *Adapter) Probe(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	b, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w\n%s", path, err, stderr.String())
	}
	return b, nil
}

// Video is an opened video handle backed by repeated ffmpeg invocations.
// Frame metadata is probed lazily and cached for the handle's lifetime.
type Video struct {
	adapter *Adapter
	path    string

	frameCount int
	fps        float64
	probed     bool
}

func (a *Adapter) Open(ctx context.Context, path string) (*Video, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	// Fail fast on unreadable containers rather than on the first frame read.
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w\n%s", path, err, string(b))
	}
	if strings.TrimSpace(string(b)) == "" {
		return nil, fmt.Errorf("open video %s: no video stream", path)
	}
	return &Video{adapter: a, path: path}, nil
}

func (v *Video) FrameCount(ctx context.Context) (int, error) {
	if err := v.probeStream(ctx); err != nil {
		return 0, err
	}
	return v.frameCount, nil
}

func (v *Video) FPS(ctx context.Context) (float64, error) {
	if err := v.probeStream(ctx); err != nil {
		return 0, err
	}
	return v.fps, nil
}

// ReadFrame extracts frame index as a PNG via the select filter and decodes
// it. An index past the end produces no output and is reported as an error;
// callers treat that as a skippable frame, not a fatal condition.
func (v *Video) ReadFrame(ctx context.Context, index int) (image.Image, error) {
	if index < 0 {
		return nil, fmt.Errorf("read frame: negative index %d", index)
	}
	cmd := exec.CommandContext(ctx, v.adapter.ffmpeg,
		"-v", "error",
		"-i", v.path,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg read frame %d: %w\n%s", index, err, stderr.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg read frame %d: no frame produced (past end?)", index)
	}
	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", index, err)
	}
	return img, nil
}

func (v *Video) Close() error { return nil }

func (v *Video) probeStream(ctx context.Context) error {
	if v.probed {
		return nil
	}
	cmd := exec.CommandContext(ctx, v.adapter.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=nb_read_packets,r_frame_rate",
		"-of", "default=noprint_wrappers=1",
		v.path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffprobe stream info: %w\n%s", err, string(b))
	}
	count, fps, err := parseStreamInfo(string(b))
	if err != nil {
		return err
	}
	v.frameCount = count
	v.fps = fps
	v.probed = true
	return nil
}

// parseStreamInfo reads "key=value" lines from ffprobe's default writer.
func parseStreamInfo(out string) (count int, fps float64, err error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		k, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch k {
		case "nb_read_packets":
			n, perr := strconv.Atoi(val)
			if perr != nil {
				return 0, 0, fmt.Errorf("parse frame count %q: %w", val, perr)
			}
			count = n
		case "r_frame_rate":
			f, perr := parseRational(val)
			if perr != nil {
				return 0, 0, perr
			}
			fps = f
		}
	}
	return count, fps, nil
}

// parseRational reduces a frame rate like "30000/1001" to its float value.
func parseRational(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		return f, nil
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("parse frame rate %q: bad denominator", s)
	}
	return n / d, nil
}
