package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vidspect/vidspect/internal/pipeline"
	"github.com/vidspect/vidspect/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and detect watermarks in new videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0])
		},
	}
	cmd.Flags().Int("frames", pipeline.DefaultSampleCount, "Number of frames to sample per video")
	cmd.Flags().Float64("confidence", pipeline.DefaultMinConfidence, "Minimum OCR confidence (0..1)")
	cmd.Flags().String("engine", "auto", "OCR engine: auto, easyocr or tesseract")
	return cmd
}

func runWatch(cmd *cobra.Command, dir string) error {
	frames, _ := cmd.Flags().GetInt("frames")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	engine, _ := cmd.Flags().GetString("engine")

	cfgTools, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(absDir); err != nil || !fi.IsDir() {
		return fmt.Errorf("watch target %s is not a directory", absDir)
	}

	handler := func(ctx context.Context, path string) error {
		cfg := pipeline.DetectConfig{
			Input:         path,
			SampleCount:   frames,
			MinConfidence: confidence,
			PaddingRatio:  pipeline.DefaultPaddingRatio,
			Engine:        engine,
			Tools:         cfgTools,
			Log:           log,
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		rep, err := pipeline.Detect(ctx, cfg)
		if err != nil {
			return err
		}
		out := strings.TrimSuffix(path, filepath.Ext(path)) + ".watermarks.json"
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, b, 0o644); err != nil {
			return err
		}
		log.Infow("detection report written", "path", out, "watermark_found", rep.WatermarkFound)
		return nil
	}

	w, err := watcher.New(absDir, cfgTools.Watch.Extensions, handler, log)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
