package components

// Energy tracks an agent's metabolic state.
// Alive -> Dead is terminal; Value is not touched after death.
type Energy struct {
	Value float64
	Max   float64
	Alive bool
}

// Gain adds amount and caps the result at Max.
func (e *Energy) Gain(amount float64) {
	e.Value += amount
	if e.Value > e.Max {
		e.Value = e.Max
	}
}
