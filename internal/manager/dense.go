package manager

import (
	"context"
	"fmt"
	"math"
)

// denseModel is a single fully connected layer followed by softmax. Weights
// are row-major, one row of inputs per output. Once quantized the float
// weights are dropped in favour of int8 rows with a per-row scale.
type denseModel struct {
	name    string
	in, out int
	weights []float32
	bias    []float32

	q8    []int8
	scale []float32
}

func newDenseModel(name string, in, out int, weights, bias []float32) (*denseModel, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("model %s: invalid shape %dx%d", name, in, out)
	}
	if len(weights) != in*out || len(bias) != out {
		return nil, fmt.Errorf("model %s: want %d weights and %d biases, got %d and %d",
			name, in*out, out, len(weights), len(bias))
	}
	return &denseModel{name: name, in: in, out: out, weights: weights, bias: bias}, nil
}

func (d *denseModel) Name() string      { return d.name }
func (d *denseModel) InputSize() int    { return d.in }
func (d *denseModel) OutputSize() int   { return d.out }
func (d *denseModel) ParamCount() int64 { return int64(d.in*d.out + d.out) }
func (d *denseModel) Close() error      { return nil }

// MemoryBytes accounts for the weight representation actually held.
func (d *denseModel) MemoryBytes() int64 {
	if d.q8 != nil {
		return int64(len(d.q8)) + int64(len(d.scale)+len(d.bias))*4
	}
	return int64(len(d.weights)+len(d.bias)) * 4
}

func (d *denseModel) quantized() bool { return d.q8 != nil }

func (d *denseModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if len(input) != d.in {
		return nil, fmt.Errorf("model %s: expected %d inputs, got %d", d.name, d.in, len(input))
	}
	logits := make([]float32, d.out)
	for o := 0; o < d.out; o++ {
		// rows can be large; honour cancellation between them
		if o%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var acc float32
		row := o * d.in
		if d.q8 != nil {
			s := d.scale[o]
			for i, x := range input {
				acc += float32(d.q8[row+i]) * s * x
			}
		} else {
			for i, x := range input {
				acc += d.weights[row+i] * x
			}
		}
		logits[o] = acc + d.bias[o]
	}
	softmax(logits)
	return logits, nil
}

func softmax(v []float32) {
	if len(v) == 0 {
		return
	}
	hi := v[0]
	for _, x := range v[1:] {
		if x > hi {
			hi = x
		}
	}
	var sum float64
	for i, x := range v {
		e := math.Exp(float64(x - hi))
		v[i] = float32(e)
		sum += e
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / sum)
	}
}
