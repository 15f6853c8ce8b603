package watermark

import (
	"math"
	"sort"
	"strings"

	"github.com/vidspect/vidspect/internal/types"
)

const (
	DefaultSampleCount   = 5
	DefaultPaddingRatio  = 0.08
	DefaultMinConfidence = 0.5

	// A text must recur in at least this share of the requested sample to be
	// flagged as consistent.
	consistencyShare = 0.6

	// A text seen in a single frame is indistinguishable from incidental
	// on-screen content (captions, UI chrome) and is discarded.
	minFrequency = 2
)

// textStats accumulates per-frame evidence for one distinct text value.
type textStats struct {
	// best confidence seen per frame; multiple hits of the same text within
	// one frame keep the max instead of inflating the frame count.
	confByFrame map[int]float64
	// box recorded for the winning confidence of each frame.
	boxByFrame map[int]types.Rect
}

// Aggregate folds per-frame OCR observations into ranked watermark
// candidates. requestedCount is the number of frames the sampler targeted,
// not the number actually decoded: a run that lost frames to decode failures
// must not get a lower consistency bar. paddingRatio expands each suggested
// region around the median box.
func Aggregate(obs []types.Observation, requestedCount int, paddingRatio float64) types.DetectionReport {
	if requestedCount <= 0 {
		requestedCount = DefaultSampleCount
	}
	if paddingRatio < 0 {
		paddingRatio = 0
	}

	frames := map[int]struct{}{}
	stats := map[string]*textStats{}
	for _, o := range obs {
		frames[o.FrameIndex] = struct{}{}
		text := strings.TrimSpace(o.Text)
		if text == "" {
			continue
		}
		st := stats[text]
		if st == nil {
			st = &textStats{confByFrame: map[int]float64{}, boxByFrame: map[int]types.Rect{}}
			stats[text] = st
		}
		prev, seen := st.confByFrame[o.FrameIndex]
		if seen && prev >= o.Confidence {
			continue
		}
		st.confByFrame[o.FrameIndex] = o.Confidence
		if o.HasBox {
			st.boxByFrame[o.FrameIndex] = o.Box
		} else if seen {
			// The winning confidence carries no box; drop the stale one.
			delete(st.boxByFrame, o.FrameIndex)
		}
	}

	threshold := int(math.Ceil(float64(requestedCount) * consistencyShare))
	if threshold < minFrequency {
		threshold = minFrequency
	}

	var cands []types.WatermarkCandidate
	for text, st := range stats {
		freq := len(st.confByFrame)
		if freq < minFrequency {
			continue
		}
		seen := make([]int, 0, freq)
		var sum float64
		for f, c := range st.confByFrame {
			seen = append(seen, f)
			sum += c
		}
		sort.Ints(seen)

		cands = append(cands, types.WatermarkCandidate{
			Text:                text,
			Frequency:           freq,
			Confidence:          sum / float64(freq),
			Frames:              seen,
			AppearsConsistently: freq >= threshold,
			Region:              suggestRegion(st.boxByFrame, paddingRatio),
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.AppearsConsistently != b.AppearsConsistently {
			return a.AppearsConsistently
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		// Stable output under input permutation.
		return a.Text < b.Text
	})

	rep := types.DetectionReport{
		FramesAnalyzed: len(frames),
		Candidates:     cands,
	}
	if len(cands) == 0 {
		rep.Message = "no recurring text found across sampled frames"
		return rep
	}
	rep.WatermarkFound = true
	return rep
}

// suggestRegion aggregates the recorded per-frame boxes into one padded crop
// rectangle. Each coordinate takes the lower median independently, which
// keeps a single outlier detection from dragging the box off the watermark.
func suggestRegion(boxes map[int]types.Rect, paddingRatio float64) *types.Rect {
	if len(boxes) == 0 {
		return nil
	}
	xs := make([]int, 0, len(boxes))
	ys := make([]int, 0, len(boxes))
	ws := make([]int, 0, len(boxes))
	hs := make([]int, 0, len(boxes))
	for _, b := range boxes {
		xs = append(xs, b.X)
		ys = append(ys, b.Y)
		ws = append(ws, b.W)
		hs = append(hs, b.H)
	}
	x, y := lowerMedian(xs), lowerMedian(ys)
	w, h := lowerMedian(ws), lowerMedian(hs)

	padX := int(math.Floor(float64(w) * paddingRatio))
	padY := int(math.Floor(float64(h) * paddingRatio))
	r := types.Rect{
		X: max(0, x-padX),
		Y: max(0, y-padY),
		W: w + 2*padX,
		H: h + 2*padY,
	}
	return &r
}

// lowerMedian sorts ascending and takes the element at the midpoint index;
// even counts keep a real observed value instead of interpolating.
func lowerMedian(v []int) int {
	sort.Ints(v)
	return v[len(v)/2]
}
