package embedding

import "context"

// Mock allows tests to run without a real embedding model. When Vectors has
// an entry for the exact text it wins, otherwise Vector is returned.
type Mock struct {
	Vectors map[string][]float32
	Vector  []float32
	Err     error
}

func (m *Mock) Embed(_ context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}
	return m.Vector, nil
}
