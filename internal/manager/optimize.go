package manager

import (
	"errors"
	"fmt"
	"math"
)

// Optimizer transforms a freshly loaded model, e.g. by quantizing weights.
// Implementations return the handle to keep; on error the caller keeps the
// original.
type Optimizer interface {
	Optimize(Model) (Model, error)
}

// ErrNotOptimizable is returned when an optimizer does not support a model type.
var ErrNotOptimizable = errors.New("model type not optimizable")

// Int8Quantizer converts dense float32 weights to symmetric int8 with one
// scale per output row. Biases stay in float32.
type Int8Quantizer struct{}

func (Int8Quantizer) Optimize(m Model) (Model, error) {
	d, ok := m.(*denseModel)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotOptimizable, m)
	}
	if d.quantized() {
		return d, nil
	}
	q := make([]int8, len(d.weights))
	scale := make([]float32, d.out)
	for o := 0; o < d.out; o++ {
		row := d.weights[o*d.in : (o+1)*d.in]
		var amax float32
		for _, w := range row {
			if a := float32(math.Abs(float64(w))); a > amax {
				amax = a
			}
		}
		if amax == 0 {
			continue
		}
		s := amax / 127
		scale[o] = s
		for i, w := range row {
			q[o*d.in+i] = int8(math.Round(float64(w / s)))
		}
	}
	return &denseModel{
		name:  d.name,
		in:    d.in,
		out:   d.out,
		bias:  d.bias,
		q8:    q,
		scale: scale,
	}, nil
}
