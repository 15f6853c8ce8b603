package mediainfo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vidspect/vidspect/internal/types"
)

// Parse decodes raw ffprobe JSON into a ProbeReport.
func Parse(raw []byte) (types.ProbeReport, error) {
	var rep types.ProbeReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return types.ProbeReport{}, fmt.Errorf("parse ffprobe json: %w", err)
	}
	return rep, nil
}

// RenderText formats a probe report as a human-readable block: container
// summary, sorted metadata tags, then one block per stream.
func RenderText(rep types.ProbeReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Format name: %s\n", orNA(rep.Format.FormatName))
	fmt.Fprintf(&b, "Format long name: %s\n", orNA(rep.Format.FormatLongName))
	fmt.Fprintf(&b, "Duration: %s seconds\n", orNA(rep.Format.Duration))
	fmt.Fprintf(&b, "Size: %s bytes\n", orNA(rep.Format.Size))
	fmt.Fprintf(&b, "Bitrate: %s bps\n", orNA(rep.Format.BitRate))
	b.WriteString("\n")

	if len(rep.Format.Tags) > 0 {
		b.WriteString("--- Metadata Tags ---\n")
		keys := make([]string, 0, len(rep.Format.Tags))
		for k := range rep.Format.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, rep.Format.Tags[k])
		}
		b.WriteString("\n")
	}

	if len(rep.Streams) > 0 {
		b.WriteString("--- Stream Information ---\n")
		for i, s := range rep.Streams {
			codecType := s.CodecType
			if codecType == "" {
				codecType = "unknown"
			}
			fmt.Fprintf(&b, "Stream #%d (%s):\n", i, codecType)
			fmt.Fprintf(&b, "  Codec: %s (%s)\n", orNA(s.CodecName), orNA(s.CodecLongName))
			switch codecType {
			case "video":
				fmt.Fprintf(&b, "  Resolution: %sx%s\n", orNAInt(s.Width), orNAInt(s.Height))
				fmt.Fprintf(&b, "  Frame rate: %s\n", orNA(s.RFrameRate))
				fmt.Fprintf(&b, "  Bitrate: %s bps\n", orNA(s.BitRate))
			case "audio":
				fmt.Fprintf(&b, "  Sample rate: %s Hz\n", orNA(s.SampleRate))
				fmt.Fprintf(&b, "  Channels: %s\n", orNAInt(s.Channels))
				fmt.Fprintf(&b, "  Bitrate: %s bps\n", orNA(s.BitRate))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNAInt(v int) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", v)
}
