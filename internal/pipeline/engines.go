package pipeline

import (
	"fmt"
	"strings"

	"github.com/vidspect/vidspect/internal/ports"
)

// Provider is an OCR engine that can report up front whether its backing
// installation is usable.
type Provider interface {
	ports.OCREngine
	Available() error
}

// EngineAttempt records one engine-selection probe so failures can be
// reported with remediation hints.
type EngineAttempt struct {
	Name string
	Err  error
}

// SelectEngine picks the first available engine from the ranked provider
// list, filtered by choice ("auto" keeps the full order). Engine selection
// happens once per run, never per frame.
func SelectEngine(choice string, ranked []Provider) (ports.OCREngine, []EngineAttempt, error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice == "" {
		choice = "auto"
	}

	var candidates []Provider
	if choice == "auto" {
		candidates = ranked
	} else {
		for _, p := range ranked {
			if p.Name() == choice {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return nil, nil, fmt.Errorf("unknown OCR engine %q (want auto, easyocr or tesseract)", choice)
		}
	}

	attempts := make([]EngineAttempt, 0, len(candidates))
	for _, p := range candidates {
		err := p.Available()
		attempts = append(attempts, EngineAttempt{Name: p.Name(), Err: err})
		if err == nil {
			return p, attempts, nil
		}
	}

	var tried []string
	for _, a := range attempts {
		tried = append(tried, fmt.Sprintf("%s (%v)", a.Name, a.Err))
	}
	return nil, attempts, fmt.Errorf(
		"no OCR engine available, tried: %s. Install easyocr (pip install easyocr) or tesseract (apt install tesseract-ocr)",
		strings.Join(tried, "; "))
}
