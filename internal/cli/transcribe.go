package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidspect/vidspect/internal/domain/transcript"
	"github.com/vidspect/vidspect/internal/pipeline"
)

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <audio> <output>",
		Short: "Transcribe an audio file with whisper.cpp",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, args[0], args[1])
		},
	}
	cmd.Flags().String("model", "", "Whisper model path (overrides config)")
	cmd.Flags().String("language", "auto", "Language code, or auto")
	cmd.Flags().String("format", "txt", "Output format: txt, srt, vtt or json")
	return cmd
}

func runTranscribe(cmd *cobra.Command, input, output string) error {
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	formatStr, _ := cmd.Flags().GetString("format")

	format, err := transcript.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if language == "auto" {
		language = ""
	}

	cfgTools, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	if model != "" {
		cfgTools.Whisper.ModelPath = model
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	cfg := pipeline.TranscribeConfig{
		Input:    absIn,
		Output:   output,
		Language: language,
		Format:   format,
		Tools:    cfgTools,
		Log:      log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	if err := pipeline.Transcribe(ctx, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Transcription saved to: %s\n", output)
	return nil
}
