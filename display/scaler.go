package display

import "fmt"

// Unit names understood by the note display
const (
	UnitBeat  = "beat"
	UnitPitch = "pitch"
)

// Axis is the affine transform for one unit: output = Zero + Scaling*input
type Axis struct {
	Zero    float64 `json:"zero"`
	Scaling float64 `json:"scaling"`
}

// Values maps unit names to a value in either semantic or pixel space
type Values map[string]float64

// LinearScaler converts between semantic units (beat, pitch) and pixel offsets.
// Units it has no axis for are dropped from the result rather than rejected.
type LinearScaler struct {
	axes map[string]Axis
}

// NewLinearScaler validates the configuration. Every axis needs a nonzero
// scaling or the inverse transform would divide by zero.
func NewLinearScaler(cfg map[string]Axis) (*LinearScaler, error) {
	axes := make(map[string]Axis, len(cfg))
	for unit, a := range cfg {
		if a.Scaling == 0 {
			return nil, fmt.Errorf("%w: unit %q has zero scaling", ErrInvalidScalerConfig, unit)
		}
		axes[unit] = a
	}
	return &LinearScaler{axes: axes}, nil
}

// OutputValuesFor maps semantic values to pixel values
func (s *LinearScaler) OutputValuesFor(in Values) Values {
	out := make(Values, len(in))
	for unit, v := range in {
		if a, ok := s.axes[unit]; ok {
			out[unit] = a.Zero + a.Scaling*v
		}
	}
	return out
}

// InputValuesFor maps pixel values back to semantic values
func (s *LinearScaler) InputValuesFor(out Values) Values {
	in := make(Values, len(out))
	for unit, v := range out {
		if a, ok := s.axes[unit]; ok {
			in[unit] = (v - a.Zero) / a.Scaling
		}
	}
	return in
}

// Axis returns the configured transform for unit
func (s *LinearScaler) Axis(unit string) (Axis, bool) {
	a, ok := s.axes[unit]
	return a, ok
}
