package types

// DefaultDim is the length of a face-api.js descriptor.
const DefaultDim = 128

// Descriptor is a face embedding as produced by the browser-side extractor.
type Descriptor []float32

// Face is a stored descriptor with the metadata it was labeled with.
type Face struct {
	ID         int64      `json:"id,omitempty" yaml:"-"`
	Label      string     `json:"label" yaml:"label"`
	Section    string     `json:"section" yaml:"section"`
	Descriptor Descriptor `json:"descriptor" yaml:"descriptor"`
}

// FaceMatch is one ranked gallery face.
type FaceMatch struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Section    string  `json:"section"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// SkippedFace is a gallery face that could not be compared with the probe.
type SkippedFace struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// ErrorResult is the JSON body returned on failure.
type ErrorResult struct {
	Error string `json:"error"`
}
