package easyocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"

	"github.com/vidspect/vidspect/internal/ports"
	"github.com/vidspect/vidspect/internal/types"
)

// Engine wraps the easyocr command-line tool. Each detect call writes the
// frame to a temp PNG and parses the tool's line-delimited JSON output.
type Engine struct {
	bin       string
	languages []string
}

func New(binPath string, languages []string) *Engine {
	if binPath == "" {
		binPath = "easyocr"
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Engine{bin: binPath, languages: languages}
}

func (e *Engine) Name() string { return "easyocr" }

// Available reports whether the easyocr binary can be found.
func (e *Engine) Available() error {
	if _, err := exec.LookPath(e.bin); err != nil {
		return fmt.Errorf("easyocr not available: %w", err)
	}
	return nil
}

// detection mirrors one line of `easyocr --output_format json`: a four-point
// polygon, the text and a confidence already on a 0-1 scale. Confident stays
// raw so a malformed value degrades to -1 instead of discarding the line.
type detection struct {
	Boxes     [][]json.Number `json:"boxes"`
	Text      string          `json:"text"`
	Confident json.RawMessage `json:"confident"`
}

func (e *Engine) Detect(ctx context.Context, img image.Image) ([]ports.Detection, error) {
	tmp, err := os.CreateTemp("", "vidspect-frame-*.png")
	if err != nil {
		return nil, fmt.Errorf("temp frame: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.bin,
		"-l", strings.Join(e.languages, ","),
		"-f", tmp.Name(),
		"--detail", "1",
		"--gpu", "False",
		"--output_format", "json",
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("easyocr: %w\n%s", err, stderr.String())
	}
	return parseOutput(out.Bytes()), nil
}

// parseOutput decodes easyocr's one-JSON-object-per-line output. Lines that
// do not decode are ignored; detections whose confidence does not parse get
// confidence -1, which the collector's threshold then drops.
func parseOutput(raw []byte) []ports.Detection {
	var dets []ports.Detection
	for _, line := range bytes.Split(raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var d detection
		if err := json.Unmarshal(line, &d); err != nil {
			continue
		}
		conf := parseConfidence(d.Confident)
		det := ports.Detection{Text: d.Text, Confidence: conf}
		if box, ok := polygonBounds(d.Boxes); ok {
			det.Box = box
			det.HasBox = true
		}
		dets = append(dets, det)
	}
	return dets
}

// parseConfidence reads the confidence value, which easyocr emits as a
// number but can degrade to other JSON shapes. Unparsable confidences map
// to -1, below any threshold.
func parseConfidence(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return -1
	}
	return f
}

// polygonBounds converts a four-point polygon into its axis-aligned
// bounding rectangle.
func polygonBounds(poly [][]json.Number) (types.Rect, bool) {
	if len(poly) == 0 {
		return types.Rect{}, false
	}
	first := true
	var minX, minY, maxX, maxY int
	for _, pt := range poly {
		if len(pt) != 2 {
			return types.Rect{}, false
		}
		xf, errX := pt[0].Float64()
		yf, errY := pt[1].Float64()
		if errX != nil || errY != nil {
			return types.Rect{}, false
		}
		x, y := int(xf), int(yf)
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			continue
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return types.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}
