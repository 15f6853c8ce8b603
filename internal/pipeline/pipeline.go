package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vidspect/vidspect/internal/config"
	"github.com/vidspect/vidspect/internal/domain/transcript"
	"github.com/vidspect/vidspect/internal/domain/watermark"
	"github.com/vidspect/vidspect/internal/ports"
	"github.com/vidspect/vidspect/internal/ports/adapters/easyocr"
	"github.com/vidspect/vidspect/internal/ports/adapters/ffmpeg"
	"github.com/vidspect/vidspect/internal/ports/adapters/tesseract"
	"github.com/vidspect/vidspect/internal/ports/adapters/whispercpp"
	"github.com/vidspect/vidspect/internal/types"
	"github.com/vidspect/vidspect/internal/usecase"
)

// DetectConfig aggregates everything one watermark-detection run needs.
type DetectConfig struct {
	Input         string
	SampleCount   int
	Region        *types.Rect
	MinConfidence float64
	PaddingRatio  float64
	Engine        string

	Tools config.Config
	Log   *zap.SugaredLogger
}

func (c DetectConfig) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.SampleCount <= 0 {
		return errors.New("frames must be > 0")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("confidence must be within [0, 1]")
	}
	if c.PaddingRatio < 0 {
		return errors.New("padding must be >= 0")
	}
	if c.Region != nil && c.Region.Empty() {
		return errors.New("region must have positive width and height")
	}
	return nil
}

// Detect wires the adapters and runs one watermark detection.
func Detect(ctx context.Context, cfg DetectConfig) (types.DetectionReport, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ranked := []Provider{
		easyocr.New(cfg.Tools.OCR.EasyOCRPath, cfg.Tools.OCR.Languages),
		tesseract.New(cfg.Tools.OCR.Languages),
	}
	engine, attempts, err := SelectEngine(cfg.Engine, ranked)
	if err != nil {
		return types.DetectionReport{}, err
	}
	for _, a := range attempts {
		if a.Err != nil {
			log.Debugw("ocr engine unavailable", "engine", a.Name, "error", a.Err)
		}
	}
	log.Infow("ocr engine selected", "engine", engine.Name())

	uc := usecase.New(usecase.Deps{
		Decoder: decoder{ffmpeg.New(cfg.Tools.FFmpeg.FFmpegPath, cfg.Tools.FFmpeg.FFprobePath)},
		OCR:     engine,
		Log:     log,
	})
	return uc.DetectWatermarks(ctx, usecase.DetectInput{
		VideoPath:     cfg.Input,
		SampleCount:   cfg.SampleCount,
		Region:        cfg.Region,
		MinConfidence: cfg.MinConfidence,
		PaddingRatio:  cfg.PaddingRatio,
	})
}

// TranscribeConfig aggregates one transcription run.
type TranscribeConfig struct {
	Input    string
	Output   string
	Language string
	Format   transcript.Format
	CacheDir string

	Tools config.Config
	Log   *zap.SugaredLogger
}

func (c TranscribeConfig) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.Output == "" {
		return errors.New("output path is empty")
	}
	if c.Tools.Whisper.ModelPath == "" {
		return errors.New("whisper model path is required")
	}
	return nil
}

func Transcribe(ctx context.Context, cfg TranscribeConfig) error {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	runCache := filepath.Join(baseCache, "runs", hash(cfg.Input))
	if err := os.MkdirAll(runCache, 0o755); err != nil {
		return err
	}
	log.Debugw("cache prepared", "dir", runCache)

	uc := usecase.New(usecase.Deps{
		ASR: whispercpp.New(cfg.Tools.Whisper.BinaryPath, cfg.Tools.Whisper.ModelPath),
		Log: log,
	})
	return uc.Transcribe(ctx, usecase.TranscribeInput{
		AudioPath:  cfg.Input,
		OutputPath: cfg.Output,
		Language:   cfg.Language,
		Format:     cfg.Format,
		CacheDir:   runCache,
	})
}

// Probe returns the metadata report for one media file.
func Probe(ctx context.Context, input string, rawJSON bool, tools config.Config, log *zap.SugaredLogger) (string, error) {
	if input == "" {
		return "", errors.New("input is empty")
	}
	if _, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}
	uc := usecase.New(usecase.Deps{
		Prober: ffmpeg.New(tools.FFmpeg.FFmpegPath, tools.FFmpeg.FFprobePath),
		Log:    log,
	})
	return uc.Probe(ctx, input, rawJSON)
}

// decoder adapts the concrete ffmpeg adapter to the Decoder port; the
// adapter returns *ffmpeg.Video, the port an interface.
type decoder struct{ a *ffmpeg.Adapter }

func (d decoder) Open(ctx context.Context, path string) (ports.DecodedVideo, error) {
	return d.a.Open(ctx, path)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// defaults re-exported for the CLI layer.
const (
	DefaultSampleCount   = watermark.DefaultSampleCount
	DefaultMinConfidence = watermark.DefaultMinConfidence
	DefaultPaddingRatio  = watermark.DefaultPaddingRatio
)

// ensure adapters implement ports
var _ ports.Prober = (*ffmpeg.Adapter)(nil)
var _ ports.DecodedVideo = (*ffmpeg.Video)(nil)
var _ ports.OCREngine = (*tesseract.Engine)(nil)
var _ ports.OCREngine = (*easyocr.Engine)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ Provider = (*tesseract.Engine)(nil)
var _ Provider = (*easyocr.Engine)(nil)
