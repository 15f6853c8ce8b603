package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidspect/vidspect/internal/pipeline"
	"github.com/vidspect/vidspect/internal/types"
)

func newWatermarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watermark <video>",
		Short: "Detect recurring watermark text across sampled frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatermark(cmd, args[0])
		},
	}
	cmd.Flags().Int("frames", pipeline.DefaultSampleCount, "Number of frames to sample")
	cmd.Flags().String("region", "", "Restrict detection to x,y,w,h")
	cmd.Flags().Float64("confidence", pipeline.DefaultMinConfidence, "Minimum OCR confidence (0..1)")
	cmd.Flags().String("engine", "auto", "OCR engine: auto, easyocr or tesseract")
	cmd.Flags().Float64("padding", pipeline.DefaultPaddingRatio, "Suggested-region padding ratio")
	cmd.Flags().String("format", "text", "Output format: text or json")
	return cmd
}

func runWatermark(cmd *cobra.Command, input string) error {
	frames, _ := cmd.Flags().GetInt("frames")
	regionStr, _ := cmd.Flags().GetString("region")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	engine, _ := cmd.Flags().GetString("engine")
	padding, _ := cmd.Flags().GetFloat64("padding")
	format, _ := cmd.Flags().GetString("format")

	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
	region, err := parseRegion(regionStr)
	if err != nil {
		return err
	}

	cfgTools, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	cfg := pipeline.DetectConfig{
		Input:         absIn,
		SampleCount:   frames,
		Region:        region,
		MinConfidence: confidence,
		PaddingRatio:  padding,
		Engine:        engine,
		Tools:         cfgTools,
		Log:           log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	rep, err := pipeline.Detect(ctx, cfg)
	if err != nil {
		return err
	}

	if format == "json" {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), formatReport(rep))
	return nil
}

// parseRegion parses "x,y,w,h" into a rectangle. Empty input means no
// region; anything else must be exactly four integers.
func parseRegion(s string) (*types.Rect, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region must be x,y,w,h (got %q)", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region must be x,y,w,h (got %q): %w", s, err)
		}
		vals[i] = v
	}
	return &types.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}

func formatReport(rep types.DetectionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames analyzed: %d\n", rep.FramesAnalyzed)
	if !rep.WatermarkFound {
		fmt.Fprintf(&b, "No watermark found: %s\n", rep.Message)
		return b.String()
	}
	fmt.Fprintf(&b, "Watermark candidates (%d):\n", len(rep.Candidates))
	for i, c := range rep.Candidates {
		consistency := "inconsistent"
		if c.AppearsConsistently {
			consistency = "consistent"
		}
		fmt.Fprintf(&b, "%d. %q  frequency=%d  confidence=%.2f  %s\n", i+1, c.Text, c.Frequency, c.Confidence, consistency)
		fmt.Fprintf(&b, "   frames: %s\n", joinInts(c.Frames))
		if c.Region != nil {
			fmt.Fprintf(&b, "   suggested region: %d,%d,%d,%d\n", c.Region.X, c.Region.Y, c.Region.W, c.Region.H)
		}
	}
	return b.String()
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
