// Package neural provides the fixed-topology feedforward controllers that drive agents.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrShape is matched by every ShapeError via errors.Is.
var ErrShape = errors.New("shape mismatch")

// ShapeError reports a vector or controller whose dimensions do not fit.
type ShapeError struct {
	Op   string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("neural: %s: want %d, got %d", e.Op, e.Want, e.Got)
}

// Is lets errors.Is(err, ErrShape) match.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// CrossoverMode selects how bias vectors are inherited.
// Weight matrices are always inherited elementwise.
type CrossoverMode uint8

const (
	CrossoverElementwise CrossoverMode = iota // one coin per bias element
	CrossoverBiasVector                       // one coin per whole bias vector
)

// ParseCrossoverMode maps the config spelling to a mode.
func ParseCrossoverMode(s string) (CrossoverMode, error) {
	switch s {
	case "", "element":
		return CrossoverElementwise, nil
	case "vector":
		return CrossoverBiasVector, nil
	}
	return 0, fmt.Errorf("neural: unknown crossover mode %q", s)
}

// DefaultClipLimit bounds every parameter after mutation.
const DefaultClipLimit = 2.0

// Controller is a 3-layer feedforward network: input -> tanh hidden -> tanh output.
// Shapes are fixed at construction.
type Controller struct {
	w1 *mat.Dense    // inputs x hidden
	b1 *mat.VecDense // hidden
	w2 *mat.Dense    // hidden x outputs
	b2 *mat.VecDense // outputs

	// ClipLimit bounds parameters after Mutate. Zero means DefaultClipLimit.
	ClipLimit float64
}

// NewController creates a network with every weight and bias drawn from N(0, 1) * scale.
func NewController(rng *rand.Rand, inputs, hidden, outputs int, scale float64) (*Controller, error) {
	if inputs <= 0 || hidden <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("neural: layer sizes must be positive, got %d/%d/%d", inputs, hidden, outputs)
	}
	c := newZero(inputs, hidden, outputs)
	fillNormal(rng, c.w1.RawMatrix().Data, scale)
	fillNormal(rng, c.b1.RawVector().Data, scale)
	fillNormal(rng, c.w2.RawMatrix().Data, scale)
	fillNormal(rng, c.b2.RawVector().Data, scale)
	return c, nil
}

func newZero(inputs, hidden, outputs int) *Controller {
	return &Controller{
		w1: mat.NewDense(inputs, hidden, nil),
		b1: mat.NewVecDense(hidden, nil),
		w2: mat.NewDense(hidden, outputs, nil),
		b2: mat.NewVecDense(outputs, nil),
	}
}

func fillNormal(rng *rand.Rand, data []float64, scale float64) {
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
}

// Sizes returns the input, hidden and output layer widths.
func (c *Controller) Sizes() (inputs, hidden, outputs int) {
	inputs, hidden = c.w1.Dims()
	_, outputs = c.w2.Dims()
	return inputs, hidden, outputs
}

// Forward computes tanh(tanh(x·W1 + b1)·W2 + b2).
// Every output component lies in [-1, 1].
func (c *Controller) Forward(input []float64) ([]float64, error) {
	inputs, hidden, outputs := c.Sizes()
	if len(input) != inputs {
		return nil, &ShapeError{Op: "forward", Want: inputs, Got: len(input)}
	}

	// x·W1 is W1ᵀ·x for a column vector x.
	x := mat.NewVecDense(inputs, append([]float64(nil), input...))
	h := mat.NewVecDense(hidden, nil)
	h.MulVec(c.w1.T(), x)
	h.AddVec(h, c.b1)
	tanhInPlace(h.RawVector().Data)

	out := mat.NewVecDense(outputs, nil)
	out.MulVec(c.w2.T(), h)
	out.AddVec(out, c.b2)
	data := out.RawVector().Data
	tanhInPlace(data)
	return data, nil
}

func tanhInPlace(v []float64) {
	for i, x := range v {
		v[i] = math.Tanh(x)
	}
}

// Mutate adds N(0, sigma²) noise to each weight and bias with probability rate,
// then clips every parameter to [-ClipLimit, ClipLimit].
// Returns the number of perturbed parameters.
func (c *Controller) Mutate(rng *rand.Rand, rate, sigma float64) int {
	limit := c.clipLimit()
	count := 0
	for _, data := range c.tensors() {
		for i := range data {
			if rng.Float64() < rate {
				data[i] += rng.NormFloat64() * sigma
				count++
			}
			data[i] = clip(data[i], limit)
		}
	}
	return count
}

func (c *Controller) clipLimit() float64 {
	if c.ClipLimit > 0 {
		return c.ClipLimit
	}
	return DefaultClipLimit
}

func clip(x, limit float64) float64 {
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}

// tensors returns the backing slices in a fixed order: W1, B1, W2, B2.
func (c *Controller) tensors() [4][]float64 {
	return [4][]float64{
		c.w1.RawMatrix().Data,
		c.b1.RawVector().Data,
		c.w2.RawMatrix().Data,
		c.b2.RawVector().Data,
	}
}

// Crossover builds a child whose weight entries each come from c or other by a
// fair coin flip. Biases follow mode. Neither parent is modified.
func (c *Controller) Crossover(rng *rand.Rand, other *Controller, mode CrossoverMode) (*Controller, error) {
	in, hid, out := c.Sizes()
	oin, ohid, oout := other.Sizes()
	if in != oin || hid != ohid || out != oout {
		return nil, &ShapeError{Op: "crossover", Want: in*hid + hid*out, Got: oin*ohid + ohid*oout}
	}

	child := newZero(in, hid, out)
	child.ClipLimit = c.ClipLimit

	mine, theirs, dst := c.tensors(), other.tensors(), child.tensors()
	for t := range dst {
		isBias := t == 1 || t == 3
		if isBias && mode == CrossoverBiasVector {
			src := theirs[t]
			if rng.Float64() < 0.5 {
				src = mine[t]
			}
			copy(dst[t], src)
			continue
		}
		for i := range dst[t] {
			if rng.Float64() < 0.5 {
				dst[t][i] = mine[t][i]
			} else {
				dst[t][i] = theirs[t][i]
			}
		}
	}
	return child, nil
}

// Clone creates a deep copy of the network.
func (c *Controller) Clone() *Controller {
	in, hid, out := c.Sizes()
	clone := newZero(in, hid, out)
	clone.ClipLimit = c.ClipLimit
	clone.w1.Copy(c.w1)
	clone.b1.CopyVec(c.b1)
	clone.w2.Copy(c.w2)
	clone.b2.CopyVec(c.b2)
	return clone
}

// Equal reports whether both networks have identical shapes and parameters.
func (c *Controller) Equal(other *Controller) bool {
	if other == nil {
		return false
	}
	in, hid, out := c.Sizes()
	oin, ohid, oout := other.Sizes()
	if in != oin || hid != ohid || out != oout {
		return false
	}
	return mat.Equal(c.w1, other.w1) && mat.Equal(c.b1, other.b1) &&
		mat.Equal(c.w2, other.w2) && mat.Equal(c.b2, other.b2)
}

// Params holds flattened row-major copies of the network parameters.
type Params struct {
	W1 []float64 `json:"w1"` // [inputs * hidden]
	B1 []float64 `json:"b1"` // [hidden]
	W2 []float64 `json:"w2"` // [hidden * outputs]
	B2 []float64 `json:"b2"` // [outputs]
}

// Params returns a copy of the parameters.
func (c *Controller) Params() Params {
	t := c.tensors()
	return Params{
		W1: append([]float64(nil), t[0]...),
		B1: append([]float64(nil), t[1]...),
		W2: append([]float64(nil), t[2]...),
		B2: append([]float64(nil), t[3]...),
	}
}

// NewControllerFromParams restores a network from flattened parameters.
func NewControllerFromParams(inputs, hidden, outputs int, p Params) (*Controller, error) {
	if inputs <= 0 || hidden <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("neural: layer sizes must be positive, got %d/%d/%d", inputs, hidden, outputs)
	}
	c := newZero(inputs, hidden, outputs)
	for i, src := range [4][]float64{p.W1, p.B1, p.W2, p.B2} {
		dst := c.tensors()[i]
		if len(src) != len(dst) {
			return nil, &ShapeError{Op: "params", Want: len(dst), Got: len(src)}
		}
		copy(dst, src)
	}
	return c, nil
}
