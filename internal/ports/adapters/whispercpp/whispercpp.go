package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/vidspect/vidspect/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// Transcribe runs whisper.cpp on audioPath and parses its JSON output.
// language may be empty or "auto" for language auto-detection.
func (a *Adapter) Transcribe(ctx context.Context, audioPath, language, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
	}
	if language != "" && language != "auto" {
		args = append(args, "-l", language)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}

	var tr types.Transcript
	if err := json.Unmarshal(jb, &tr); err != nil {
		return types.Transcript{}, err
	}
	var parts []string
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
		if tr.Segments[i].Text != "" {
			parts = append(parts, tr.Segments[i].Text)
		}
	}
	if tr.Text == "" {
		tr.Text = strings.Join(parts, " ")
	}
	if tr.Language == "" && language != "" && language != "auto" {
		tr.Language = language
	}
	return tr, nil
}
