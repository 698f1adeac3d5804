package ports

// NumericSource supplies sampled values in [0,1] for a named signal, such as the
// position inside a tier's boost range. Implementations must not block.
type NumericSource interface {
	Sample(key string) float64
}

// ConstantSource returns the same value for every key.
type ConstantSource float64

func (c ConstantSource) Sample(string) float64 {
	return float64(c)
}

// MapSource returns a per-key value and Fallback for unknown keys.
type MapSource struct {
	Values   map[string]float64
	Fallback float64
}

func (m MapSource) Sample(key string) float64 {
	if v, ok := m.Values[key]; ok {
		return v
	}
	return m.Fallback
}
