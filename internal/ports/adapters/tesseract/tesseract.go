package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/vidspect/vidspect/internal/ports"
	"github.com/vidspect/vidspect/internal/types"
)

// Engine recognizes text with a local Tesseract installation through the
// gosseract client. A fresh client is created per call; gosseract clients are
// not safe for reuse across images with different settings.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

func New(languages []string) *Engine {
	return &Engine{languages: languages, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Available reports whether the Tesseract library can be initialized at all.
// Used by engine selection before committing to this engine for a run.
func (e *Engine) Available() error {
	c := e.clientFactory()
	defer c.Close()
	if _, err := c.GetAvailableLanguages(); err != nil {
		return fmt.Errorf("tesseract not available: %w", err)
	}
	return nil
}

func (e *Engine) Detect(ctx context.Context, img image.Image) ([]ports.Detection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract detect: %w", err)
	}

	out := make([]ports.Detection, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		// Tesseract reports confidence on a 0-100 scale. Negative values mean
		// the engine could not score the word; drop those outright.
		if b.Confidence < 0 {
			continue
		}
		out = append(out, ports.Detection{
			Text:       text,
			Confidence: b.Confidence / 100.0,
			Box: types.Rect{
				X: b.Box.Min.X,
				Y: b.Box.Min.Y,
				W: b.Box.Dx(),
				H: b.Box.Dy(),
			},
			HasBox: true,
		})
	}
	return out, nil
}
