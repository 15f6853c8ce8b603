package types

type Transcript struct {
	Language string    `json:"language,omitempty"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Rect is an axis-aligned rectangle in pixel coordinates with the origin in
// the upper-left corner of the frame.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Observation is a single OCR hit on a single sampled frame. Boxes are always
// expressed in full-frame coordinates; region offsets are applied before an
// Observation is constructed.
type Observation struct {
	Text       string
	Confidence float64
	FrameIndex int
	Box        Rect
	HasBox     bool
}

type WatermarkCandidate struct {
	Text                string  `json:"text"`
	Frequency           int     `json:"frequency"`
	Confidence          float64 `json:"confidence"`
	Frames              []int   `json:"frames"`
	AppearsConsistently bool    `json:"appears_consistently"`
	Region              *Rect   `json:"suggested_region,omitempty"`
}

type DetectionReport struct {
	WatermarkFound bool                 `json:"watermark_found"`
	FramesAnalyzed int                  `json:"frames_analyzed"`
	Candidates     []WatermarkCandidate `json:"candidates"`
	Message        string               `json:"message,omitempty"`
}

// ProbeReport mirrors the subset of ffprobe's JSON output that the metadata
// report renders.
type ProbeReport struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type ProbeFormat struct {
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags"`
}

type ProbeStream struct {
	CodecType     string `json:"codec_type"`
	CodecName     string `json:"codec_name"`
	CodecLongName string `json:"codec_long_name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	RFrameRate    string `json:"r_frame_rate"`
	BitRate       string `json:"bit_rate"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
}
