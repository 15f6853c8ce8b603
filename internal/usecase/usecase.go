package usecase

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/vidspect/vidspect/internal/domain/mediainfo"
	"github.com/vidspect/vidspect/internal/domain/transcript"
	"github.com/vidspect/vidspect/internal/domain/watermark"
	"github.com/vidspect/vidspect/internal/ports"
	"github.com/vidspect/vidspect/internal/types"
)

type Deps struct {
	Decoder ports.Decoder
	OCR     ports.OCREngine
	ASR     ports.ASR
	Prober  ports.Prober
	Log     *zap.SugaredLogger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	return Usecase{d: d}
}

type DetectInput struct {
	VideoPath     string
	SampleCount   int
	Region        *types.Rect
	MinConfidence float64
	PaddingRatio  float64
}

// DetectWatermarks samples frames from the video, collects OCR observations
// and aggregates them into ranked watermark candidates. Per-frame decode and
// OCR failures are skipped; only an unopenable video is fatal.
func (u Usecase) DetectWatermarks(ctx context.Context, in DetectInput) (types.DetectionReport, error) {
	if in.SampleCount <= 0 {
		in.SampleCount = watermark.DefaultSampleCount
	}

	vid, err := u.d.Decoder.Open(ctx, in.VideoPath)
	if err != nil {
		return types.DetectionReport{}, fmt.Errorf("open video: %w", err)
	}
	defer vid.Close()

	total, err := vid.FrameCount(ctx)
	if err != nil {
		return types.DetectionReport{}, fmt.Errorf("frame count: %w", err)
	}
	indices := watermark.SampleIndices(total, in.SampleCount)
	u.d.Log.Debugw("sampling frames", "total", total, "indices", indices, "engine", u.d.OCR.Name())

	var obs []types.Observation
	decoded := 0
	for _, idx := range indices {
		frame, err := vid.ReadFrame(ctx, idx)
		if err != nil {
			u.d.Log.Debugw("frame skipped", "index", idx, "error", err)
			continue
		}
		decoded++

		gray := cropGrayscale(frame, in.Region)
		if gray == nil {
			u.d.Log.Debugw("region outside frame bounds", "index", idx)
			continue
		}

		dets, err := u.d.OCR.Detect(ctx, gray)
		if err != nil {
			u.d.Log.Warnw("ocr failed on frame", "index", idx, "engine", u.d.OCR.Name(), "error", err)
			continue
		}
		obs = append(obs, collectObservations(dets, idx, in.Region, in.MinConfidence)...)
	}

	rep := watermark.Aggregate(obs, in.SampleCount, in.PaddingRatio)
	rep.FramesAnalyzed = decoded
	return rep, nil
}

// collectObservations filters raw detections by confidence and non-empty
// text, and translates boxes back into full-frame coordinates.
func collectObservations(dets []ports.Detection, frameIndex int, region *types.Rect, minConfidence float64) []types.Observation {
	offX, offY := 0, 0
	if region != nil {
		offX, offY = region.X, region.Y
	}
	var out []types.Observation
	for _, d := range dets {
		text := strings.TrimSpace(d.Text)
		if text == "" || d.Confidence < minConfidence {
			continue
		}
		o := types.Observation{
			Text:       text,
			Confidence: d.Confidence,
			FrameIndex: frameIndex,
		}
		if d.HasBox {
			o.Box = types.Rect{X: d.Box.X + offX, Y: d.Box.Y + offY, W: d.Box.W, H: d.Box.H}
			o.HasBox = true
		}
		out = append(out, o)
	}
	return out
}

// cropGrayscale renders the frame (or the requested region of it) into a
// zero-origin grayscale image ready for OCR. Returns nil when the region does
// not intersect the frame.
func cropGrayscale(frame image.Image, region *types.Rect) *image.Gray {
	b := frame.Bounds()
	r := b
	if region != nil {
		r = image.Rect(
			b.Min.X+region.X,
			b.Min.Y+region.Y,
			b.Min.X+region.X+region.W,
			b.Min.Y+region.Y+region.H,
		).Intersect(b)
		if r.Empty() {
			return nil
		}
	}
	g := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(g, g.Bounds(), frame, r.Min, draw.Src)
	return g
}

type TranscribeInput struct {
	AudioPath  string
	OutputPath string
	Language   string
	Format     transcript.Format
	CacheDir   string
}

// Transcribe runs ASR on the audio file and writes the rendered transcript
// to the output path.
func (u Usecase) Transcribe(ctx context.Context, in TranscribeInput) error {
	tr, err := u.d.ASR.Transcribe(ctx, in.AudioPath, in.Language, in.CacheDir)
	if err != nil {
		return err
	}
	out, err := transcript.Render(tr, in.Format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(in.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(in.OutputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	u.d.Log.Infow("transcription saved", "path", in.OutputPath, "segments", len(tr.Segments))
	return nil
}

// Probe returns the metadata report for a media file: human-readable text,
// or the raw ffprobe JSON when rawJSON is set.
func (u Usecase) Probe(ctx context.Context, path string, rawJSON bool) (string, error) {
	raw, err := u.d.Prober.Probe(ctx, path)
	if err != nil {
		return "", err
	}
	if rawJSON {
		return string(raw), nil
	}
	rep, err := mediainfo.Parse(raw)
	if err != nil {
		return "", err
	}
	return mediainfo.RenderText(rep), nil
}
