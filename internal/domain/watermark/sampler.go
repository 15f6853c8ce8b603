package watermark

// SampleIndices picks the frame indices to inspect for a video with
// totalFrames frames. Indices are evenly spaced multiples of a step that
// skips frame 0, so title cards and black lead-in frames do not dominate
// the sample.
//
// Later indices may exceed totalFrames; reads past the end fail per frame
// and are skipped by the collector, not clamped here.
func SampleIndices(totalFrames, requestedCount int) []int {
	if requestedCount <= 0 {
		requestedCount = DefaultSampleCount
	}
	if totalFrames == 0 {
		// Unseekable or zero-length sources still get a best-effort probe of
		// the first frame.
		return []int{0}
	}
	step := totalFrames / (requestedCount + 1)
	if step < 1 {
		step = 1
	}
	out := make([]int, 0, requestedCount)
	for i := 1; i <= requestedCount; i++ {
		out = append(out, i*step)
	}
	return out
}
