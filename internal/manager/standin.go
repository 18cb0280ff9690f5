package manager

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"servecore/pkg/types"
)

// synthesizeStandIn builds a dense model whose weights depend only on the
// model name and shape, so repeated loads behave identically.
func synthesizeStandIn(spec types.ModelSpec) (Model, error) {
	in, out := spec.InputSize(), spec.OutputSize
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("cannot synthesize %s: input shape %v, output size %d", spec.Name, spec.InputShape, out)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(spec.Name))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, uint64(in)<<32|uint64(out)))

	// Xavier-style range keeps logits bounded for wide inputs.
	limit := float32(math.Sqrt(6 / float64(in+out)))
	w := make([]float32, in*out)
	for i := range w {
		w[i] = (rng.Float32()*2 - 1) * limit
	}
	b := make([]float32, out)
	for i := range b {
		b[i] = (rng.Float32()*2 - 1) * 0.01
	}
	return newDenseModel(spec.Name, in, out, w, b)
}
