package types

// ModelSpec describes a loadable inference model in the catalog.
type ModelSpec struct {
	// Stable identifier for the model.
	// example: disease-classifier
	Name string `json:"name" yaml:"name" toml:"name" example:"disease-classifier"`
	// Artifact location: a local file path or an http(s) URL. Empty means the
	// model is always synthesized.
	// example: /var/lib/servecore/models/disease-classifier.bin
	Path string `json:"path,omitempty" yaml:"path" toml:"path" example:"/var/lib/servecore/models/disease-classifier.bin"`
	// Input tensor shape; the flattened size is the model input width.
	// example: [224,224,3]
	InputShape []int `json:"input_shape" yaml:"input_shape" toml:"input_shape" example:"224,224,3"`
	// Number of output values.
	// example: 38
	OutputSize int `json:"output_size" yaml:"output_size" toml:"output_size" example:"38"`
	// Retention priority; lower values are kept longer under memory pressure.
	// example: 1
	Priority int `json:"priority" yaml:"priority" toml:"priority" example:"1"`
	// Apply weight quantization after loading.
	// example: true
	Quantized bool `json:"quantized,omitempty" yaml:"quantized" toml:"quantized" example:"true"`
}

// InputSize returns the flattened input width of the model.
func (s ModelSpec) InputSize() int {
	if len(s.InputShape) == 0 {
		return 0
	}
	n := 1
	for _, d := range s.InputShape {
		if d <= 0 {
			return 0
		}
		n *= d
	}
	return n
}
