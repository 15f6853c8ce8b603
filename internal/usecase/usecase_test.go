package usecase

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vidspect/vidspect/internal/domain/transcript"
	"github.com/vidspect/vidspect/internal/ports"
	"github.com/vidspect/vidspect/internal/types"
)

type fakeDecoder struct {
	openErr error
	video   *fakeVideo
}

func (f fakeDecoder) Open(_ context.Context, _ string) (ports.DecodedVideo, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.video, nil
}

type fakeVideo struct {
	total      int
	failFrames map[int]bool
	readFrames []int
	closed     bool
}

func (f *fakeVideo) FrameCount(context.Context) (int, error) { return f.total, nil }
func (f *fakeVideo) FPS(context.Context) (float64, error)    { return 30, nil }
func (f *fakeVideo) Close() error                            { f.closed = true; return nil }

func (f *fakeVideo) ReadFrame(_ context.Context, index int) (image.Image, error) {
	f.readFrames = append(f.readFrames, index)
	if f.failFrames[index] {
		return nil, errors.New("decode failed")
	}
	return image.NewNRGBA(image.Rect(0, 0, 640, 360)), nil
}

// fakeOCR returns one canned response per successfully decoded frame, in
// call order.
type fakeOCR struct {
	responses [][]ports.Detection
	errs      []error
	calls     int
}

func (f *fakeOCR) Name() string { return "fake" }

func (f *fakeOCR) Detect(context.Context, image.Image) ([]ports.Detection, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, nil
}

func det(text string, conf float64, box types.Rect) ports.Detection {
	return ports.Detection{Text: text, Confidence: conf, Box: box, HasBox: true}
}

func TestDetectWatermarks_EndToEnd(t *testing.T) {
	t.Parallel()

	logo := types.Rect{X: 10, Y: 10, W: 50, H: 20}
	video := &fakeVideo{total: 600, failFrames: map[int]bool{300: true}}
	ocr := &fakeOCR{responses: [][]ports.Detection{
		{det("LOGO", 0.8, logo), det("noise", 0.3, logo)},
		{det(" LOGO ", 0.85, logo)},
		// frame 300 fails to decode; no response consumed
		{det("LOGO", 0.9, logo)},
		{},
	}}

	uc := New(Deps{Decoder: fakeDecoder{video: video}, OCR: ocr})
	rep, err := uc.DetectWatermarks(context.Background(), DetectInput{
		VideoPath:     "in.mp4",
		SampleCount:   5,
		MinConfidence: 0.5,
		PaddingRatio:  0.08,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !video.closed {
		t.Fatalf("video handle not closed")
	}
	if len(video.readFrames) != 5 {
		t.Fatalf("expected 5 frame reads, got %v", video.readFrames)
	}
	if rep.FramesAnalyzed != 4 {
		t.Fatalf("frames_analyzed = %d, want 4 (one decode failure)", rep.FramesAnalyzed)
	}
	if !rep.WatermarkFound || len(rep.Candidates) != 1 {
		t.Fatalf("expected exactly the LOGO candidate, got %+v", rep.Candidates)
	}
	c := rep.Candidates[0]
	if c.Text != "LOGO" || c.Frequency != 3 {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if !c.AppearsConsistently {
		t.Fatalf("3 of 5 requested frames should be consistent")
	}
	if c.Region == nil {
		t.Fatalf("expected a suggested region")
	}
}

func TestDetectWatermarks_OpenFailureIsFatal(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Decoder: fakeDecoder{openErr: errors.New("no such file")}, OCR: &fakeOCR{}})
	if _, err := uc.DetectWatermarks(context.Background(), DetectInput{VideoPath: "missing.mp4"}); err == nil {
		t.Fatalf("expected error for unopenable video")
	}
}

func TestDetectWatermarks_AllFramesFailDecodes(t *testing.T) {
	t.Parallel()

	video := &fakeVideo{total: 100, failFrames: map[int]bool{16: true, 32: true, 48: true, 64: true, 80: true}}
	uc := New(Deps{Decoder: fakeDecoder{video: video}, OCR: &fakeOCR{}})
	rep, err := uc.DetectWatermarks(context.Background(), DetectInput{VideoPath: "in.mp4", SampleCount: 5})
	if err != nil {
		t.Fatalf("lost frames must not fail the run: %v", err)
	}
	if rep.WatermarkFound || rep.FramesAnalyzed != 0 {
		t.Fatalf("expected empty no-watermark report, got %+v", rep)
	}
}

func TestDetectWatermarks_EngineErrorSkipsFrame(t *testing.T) {
	t.Parallel()

	video := &fakeVideo{total: 600}
	logo := types.Rect{X: 10, Y: 10, W: 50, H: 20}
	ocr := &fakeOCR{
		errs: []error{errors.New("engine crashed"), nil, nil, nil, nil},
		responses: [][]ports.Detection{
			nil,
			{det("LOGO", 0.8, logo)},
			{det("LOGO", 0.8, logo)},
			{},
			{},
		},
	}
	uc := New(Deps{Decoder: fakeDecoder{video: video}, OCR: ocr})
	rep, err := uc.DetectWatermarks(context.Background(), DetectInput{VideoPath: "in.mp4", SampleCount: 5, MinConfidence: 0.5})
	if err != nil {
		t.Fatalf("engine error on one frame must not fail the run: %v", err)
	}
	if len(rep.Candidates) != 1 || rep.Candidates[0].Frequency != 2 {
		t.Fatalf("expected LOGO with frequency 2, got %+v", rep.Candidates)
	}
	// The failing frame still decoded.
	if rep.FramesAnalyzed != 5 {
		t.Fatalf("frames_analyzed = %d, want 5", rep.FramesAnalyzed)
	}
}

func TestDetectWatermarks_RegionOffsetsBoxes(t *testing.T) {
	t.Parallel()

	video := &fakeVideo{total: 600}
	// Detections in crop-local coordinates.
	local := types.Rect{X: 1, Y: 2, W: 30, H: 10}
	ocr := &fakeOCR{responses: [][]ports.Detection{
		{det("MARK", 0.9, local)},
		{det("MARK", 0.9, local)},
		{}, {}, {},
	}}
	uc := New(Deps{Decoder: fakeDecoder{video: video}, OCR: ocr})
	rep, err := uc.DetectWatermarks(context.Background(), DetectInput{
		VideoPath:     "in.mp4",
		SampleCount:   5,
		Region:        &types.Rect{X: 100, Y: 200, W: 200, H: 100},
		MinConfidence: 0.5,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(rep.Candidates) != 1 || rep.Candidates[0].Region == nil {
		t.Fatalf("expected one candidate with region, got %+v", rep.Candidates)
	}
	r := *rep.Candidates[0].Region
	if r.X != 101 || r.Y != 202 {
		t.Fatalf("boxes not translated to full-frame coordinates: %+v", r)
	}
}

func TestCropGrayscale(t *testing.T) {
	t.Parallel()

	frame := image.NewNRGBA(image.Rect(0, 0, 100, 50))

	full := cropGrayscale(frame, nil)
	if full.Bounds().Dx() != 100 || full.Bounds().Dy() != 50 {
		t.Fatalf("full-frame grayscale has wrong bounds: %v", full.Bounds())
	}

	crop := cropGrayscale(frame, &types.Rect{X: 90, Y: 40, W: 50, H: 50})
	if crop == nil {
		t.Fatalf("partially overlapping region should crop, not skip")
	}
	if crop.Bounds().Dx() != 10 || crop.Bounds().Dy() != 10 {
		t.Fatalf("crop not clipped to frame bounds: %v", crop.Bounds())
	}

	if out := cropGrayscale(frame, &types.Rect{X: 500, Y: 500, W: 10, H: 10}); out != nil {
		t.Fatalf("disjoint region must return nil")
	}
}

type fakeASR struct{ tr types.Transcript }

func (f fakeASR) Transcribe(_ context.Context, _, _, _ string) (types.Transcript, error) {
	return f.tr, nil
}

func TestTranscribe_WritesRenderedOutput(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	out := filepath.Join(tmp, "sub", "out.srt")
	uc := New(Deps{ASR: fakeASR{tr: types.Transcript{
		Segments: []types.Segment{{Start: 0, End: 1.5, Text: "hello"}},
	}}})

	err := uc.Transcribe(context.Background(), TranscribeInput{
		AudioPath:  "in.wav",
		OutputPath: out,
		Format:     transcript.FormatSRT,
		CacheDir:   tmp,
	})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), "00:00:00,000 --> 00:00:01,500") {
		t.Fatalf("unexpected srt output: %q", string(b))
	}
}

type fakeProber struct{ raw []byte }

func (f fakeProber) Probe(context.Context, string) ([]byte, error) { return f.raw, nil }

func TestProbe_TextAndJSONModes(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"format":{"format_name":"wav","duration":"3.2"}}`)
	uc := New(Deps{Prober: fakeProber{raw: raw}})

	text, err := uc.Probe(context.Background(), "in.wav", false)
	if err != nil {
		t.Fatalf("probe text: %v", err)
	}
	if !strings.Contains(text, "Format name: wav") {
		t.Fatalf("unexpected text report: %q", text)
	}

	js, err := uc.Probe(context.Background(), "in.wav", true)
	if err != nil {
		t.Fatalf("probe json: %v", err)
	}
	if js != string(raw) {
		t.Fatalf("json mode must pass through raw probe output")
	}
}
