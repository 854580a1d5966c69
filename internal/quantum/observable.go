package quantum

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"
)

// Pauli identifies a single-wire Pauli operator.
type Pauli int

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

func (p Pauli) String() string {
	switch p {
	case PauliI:
		return "I"
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	}
	return fmt.Sprintf("Pauli(%d)", int(p))
}

// PauliTerm is a coefficient-weighted tensor product of Paulis, keyed by
// wire. Wires absent from the map carry identity.
type PauliTerm struct {
	Coefficient float64
	Factors     map[int]Pauli
}

// Observable is a Hermitian operator expressed as a sum of Pauli terms,
// the representation used for molecular Hamiltonians and measurement
// observables alike.
type Observable struct {
	Name  string
	Terms []PauliTerm
}

// Z returns the single-wire PauliZ observable, the default measurement
// basis of the demonstration circuits.
func Z(wire int) Observable {
	return Observable{
		Name:  fmt.Sprintf("Z(%d)", wire),
		Terms: []PauliTerm{{Coefficient: 1, Factors: map[int]Pauli{wire: PauliZ}}},
	}
}

// X returns the single-wire PauliX observable.
func X(wire int) Observable {
	return Observable{
		Name:  fmt.Sprintf("X(%d)", wire),
		Terms: []PauliTerm{{Coefficient: 1, Factors: map[int]Pauli{wire: PauliX}}},
	}
}

// Y returns the single-wire PauliY observable.
func Y(wire int) Observable {
	return Observable{
		Name:  fmt.Sprintf("Y(%d)", wire),
		Terms: []PauliTerm{{Coefficient: 1, Factors: map[int]Pauli{wire: PauliY}}},
	}
}

// TensorZ returns the product Z(w0) ⊗ Z(w1) ⊗ ... over the given wires.
func TensorZ(wires ...int) Observable {
	factors := make(map[int]Pauli, len(wires))
	labels := make([]string, 0, len(wires))
	for _, w := range wires {
		factors[w] = PauliZ
		labels = append(labels, fmt.Sprintf("Z(%d)", w))
	}
	return Observable{
		Name:  strings.Join(labels, "@"),
		Terms: []PauliTerm{{Coefficient: 1, Factors: factors}},
	}
}

// Hamiltonian builds a named sum of Pauli terms.
func Hamiltonian(name string, terms ...PauliTerm) Observable {
	return Observable{Name: name, Terms: terms}
}

// Validate checks every term's wires against a register size.
func (o Observable) Validate(wires int) error {
	for i, term := range o.Terms {
		for w, p := range term.Factors {
			if w < 0 || w >= wires {
				return fmt.Errorf("term %d: wire %d out of range for %d-wire register", i, w, wires)
			}
			if p < PauliI || p > PauliZ {
				return fmt.Errorf("term %d: invalid Pauli %d on wire %d", i, int(p), w)
			}
		}
	}
	return nil
}

// ExpectationValue computes <psi|O|psi> analytically. Pauli strings act on
// basis states by bit flips (X, Y) and phases (Y, Z), so each term costs a
// single pass over the amplitudes with no operator matrix.
func (o Observable) ExpectationValue(s *StateVector) (float64, error) {
	if err := o.Validate(s.Wires); err != nil {
		return 0, fmt.Errorf("observable %s: %w", o.Name, err)
	}

	total := 0.0
	for _, term := range o.Terms {
		if term.Coefficient == 0 {
			continue
		}

		// Precompute the flip mask (X and Y wires) and collect Y/Z wires
		// for the phase of each basis state.
		flipMask := 0
		var yWires, zWires []int
		for w, p := range term.Factors {
			switch p {
			case PauliX:
				flipMask |= 1 << w
			case PauliY:
				flipMask |= 1 << w
				yWires = append(yWires, w)
			case PauliZ:
				zWires = append(zWires, w)
			}
		}
		sort.Ints(yWires)

		var sum complex128
		for i, a := range s.Amplitudes {
			if a == 0 {
				continue
			}
			j := i ^ flipMask
			phase := complex(1, 0)
			// Y|0> = i|1>, Y|1> = -i|0>; phases accumulate per Y wire
			// from the source state's bit.
			for _, w := range yWires {
				if i&(1<<w) != 0 {
					phase *= -1i
				} else {
					phase *= 1i
				}
			}
			for _, w := range zWires {
				if i&(1<<w) != 0 {
					phase = -phase
				}
			}
			// Contribution to <psi|P|psi> from column i: P maps |i> to
			// phase|j>, so the bra picks out conj(psi[j]).
			sum += cmplx.Conj(s.Amplitudes[j]) * phase * a
		}
		total += term.Coefficient * real(sum)
	}
	return total, nil
}

// EigenvalueForOutcome maps a computational-basis measurement outcome on
// the term's Z wires to the observable eigenvalue ±1. Only meaningful for
// single Pauli-Z strings; used to convert shot samples into estimates.
func EigenvalueForOutcome(term PauliTerm, basisState int) float64 {
	v := 1.0
	for w, p := range term.Factors {
		if p == PauliZ && basisState&(1<<w) != 0 {
			v = -v
		}
	}
	return v
}
