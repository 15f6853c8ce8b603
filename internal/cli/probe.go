package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidspect/vidspect/internal/domain/mediainfo"
	"github.com/vidspect/vidspect/internal/pipeline"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [media]",
		Short: "Report container and stream metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runProbe(cmd, input)
		},
	}
	cmd.Flags().String("format", "text", "Output format: text or json")
	cmd.Flags().String("json-input", "", "Format an existing ffprobe JSON document instead of probing (- for stdin)")
	return cmd
}

func runProbe(cmd *cobra.Command, input string) error {
	format, _ := cmd.Flags().GetString("format")
	jsonInput, _ := cmd.Flags().GetString("json-input")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}

	// Pre-produced ffprobe JSON skips the probing step entirely.
	if jsonInput != "" {
		raw, err := readJSONInput(jsonInput)
		if err != nil {
			return err
		}
		rep, err := mediainfo.Parse(raw)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), mediainfo.RenderText(rep))
		return nil
	}
	if input == "" {
		return fmt.Errorf("media path is required unless --json-input is given")
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

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	out, err := pipeline.Probe(ctx, absIn, format == "json", cfgTools, log)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func readJSONInput(src string) ([]byte, error) {
	if src == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read json input: %w", err)
	}
	return b, nil
}
