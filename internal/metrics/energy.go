package metrics

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/problems"
)

// EnergyDrift is the largest relative change of a conserved energy from its
// initial value.
type EnergyDrift struct {
	name          string
	h             problems.Hamiltonian
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(h problems.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		h:    h,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(_ float64, y dynamo.State) {
	energy := e.h.Energy(y)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
