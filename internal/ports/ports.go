package ports

import (
	"context"
	"image"

	"github.com/vidspect/vidspect/internal/types"
)

// Decoder opens video files for frame-level access.
type Decoder interface {
	Open(ctx context.Context, path string) (DecodedVideo, error)
}

// DecodedVideo is a scoped handle on an opened video. ReadFrame failures are
// per-frame and recoverable; callers skip the frame and continue.
type DecodedVideo interface {
	FrameCount(ctx context.Context) (int, error)
	FPS(ctx context.Context) (float64, error)
	ReadFrame(ctx context.Context, index int) (image.Image, error)
	Close() error
}

// Detection is one raw OCR hit in the coordinates of the submitted image.
type Detection struct {
	Text       string
	Confidence float64
	Box        types.Rect
	HasBox     bool
}

// OCREngine recognizes text in a single grayscale image.
type OCREngine interface {
	Name() string
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// ASR transcribes an audio file. language may be empty for auto-detection.
type ASR interface {
	Transcribe(ctx context.Context, audioPath, language, cacheDir string) (types.Transcript, error)
}

// Prober returns raw container/stream metadata JSON for a media file.
type Prober interface {
	Probe(ctx context.Context, path string) ([]byte, error)
}
