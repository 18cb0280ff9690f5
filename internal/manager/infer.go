package manager

import "context"

// Infer loads name if needed and runs one forward pass over input.
func (m *Manager) Infer(ctx context.Context, name string, input []float32) ([]float32, error) {
	h, err := m.LoadModel(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if want := h.InputSize(); want > 0 && len(input) != want {
		return nil, InputSizeError{Name: name, Want: want, Got: len(input)}
	}
	return h.Predict(ctx, input)
}
