package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vidspect/vidspect/internal/types"
)

type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatSRT:
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown transcript format %q (want txt, srt, vtt or json)", s)
}

// Render serializes a transcript in the requested subtitle or text format.
func Render(tr types.Transcript, f Format) (string, error) {
	switch f {
	case FormatText:
		return renderText(tr), nil
	case FormatSRT:
		return renderSRT(tr), nil
	case FormatVTT:
		return renderVTT(tr), nil
	case FormatJSON:
		b, err := json.MarshalIndent(tr, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal transcript: %w", err)
		}
		return string(b) + "\n", nil
	}
	return "", fmt.Errorf("unknown transcript format %q", f)
}

func renderText(tr types.Transcript) string {
	if tr.Text != "" {
		return tr.Text
	}
	var parts []string
	for _, s := range tr.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func renderSRT(tr types.Transcript) string {
	var b strings.Builder
	for i, s := range tr.Segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimestamp(s.Start), srtTimestamp(s.End))
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderVTT(tr types.Transcript) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range tr.Segments {
		fmt.Fprintf(&b, "%s --> %s\n", vttTimestamp(s.Start), vttTimestamp(s.End))
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// srtTimestamp renders seconds as HH:MM:SS,mmm. Components are truncated, not
// rounded, matching the common ffmpeg/whisper convention.
func srtTimestamp(sec float64) string {
	h, m, s, ms := splitSeconds(sec)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// vttTimestamp renders seconds as HH:MM:SS.mmm (WebVTT uses a dot separator).
func vttTimestamp(sec float64) string {
	h, m, s, ms := splitSeconds(sec)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func splitSeconds(sec float64) (h, m, s, ms int) {
	if sec < 0 {
		sec = 0
	}
	whole := int(sec)
	return whole / 3600, (whole % 3600) / 60, whole % 60, int((sec - float64(whole)) * 1000)
}
