// Package quantum implements a dense state-vector simulator for small
// qubit registers: gate kernels, an operation/tape representation, and
// Pauli observables with analytic expectation values.
//
// Wires are little-endian: wire 0 is the least significant bit of the
// basis-state index, so |q1 q0> = |10> is index 2 on a two-wire register.
package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
)

// StateVector holds the 2^n complex amplitudes of an n-wire register.
type StateVector struct {
	Amplitudes []complex128
	Wires      int
}

// NewStateVector returns a register of the given wire count initialized
// to the all-zeros basis state |0...0>.
func NewStateVector(wires int) (*StateVector, error) {
	if wires < 1 || wires > MaxWires {
		return nil, fmt.Errorf("wire count must be between 1 and %d, got %d", MaxWires, wires)
	}
	amps := make([]complex128, 1<<wires)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, Wires: wires}, nil
}

// MaxWires caps register size. 2^24 amplitudes is already 256MB; anything
// larger needs a sparse or tensor-network representation this package does
// not provide.
const MaxWires = 24

// Clone returns a deep copy of the state.
func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, Wires: s.Wires}
}

// Norm returns the L2 norm of the amplitude vector. Unitary evolution
// keeps this at 1 up to float rounding.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, a := range s.Amplitudes {
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(total)
}

// Normalize rescales amplitudes to unit norm. A zero state is left alone.
func (s *StateVector) Normalize() {
	n := s.Norm()
	if n == 0 {
		return
	}
	inv := complex(1/n, 0)
	for i := range s.Amplitudes {
		s.Amplitudes[i] *= inv
	}
}

// Probs returns the probability of each computational basis state,
// indexed by the basis-state integer.
func (s *StateVector) Probs() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// MarginalProbs returns the joint probability distribution over the given
// wires, tracing out all others. The result is indexed by the bits of the
// requested wires in the order given: for wires [a, b], outcome index
// (vb<<1 | va) where va, vb are the measured bits of a and b.
func (s *StateVector) MarginalProbs(wires []int) ([]float64, error) {
	if len(wires) == 0 {
		return nil, fmt.Errorf("no wires requested")
	}
	seen := make(map[int]bool, len(wires))
	for _, w := range wires {
		if w < 0 || w >= s.Wires {
			return nil, fmt.Errorf("wire %d out of range for %d-wire register", w, s.Wires)
		}
		if seen[w] {
			return nil, fmt.Errorf("duplicate wire %d", w)
		}
		seen[w] = true
	}

	out := make([]float64, 1<<len(wires))
	for i, a := range s.Amplitudes {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p == 0 {
			continue
		}
		idx := 0
		for k, w := range wires {
			if i&(1<<w) != 0 {
				idx |= 1 << k
			}
		}
		out[idx] += p
	}
	return out, nil
}

// Amplitude returns the amplitude of basis state |index>.
func (s *StateVector) Amplitude(index int) (complex128, error) {
	if index < 0 || index >= len(s.Amplitudes) {
		return 0, fmt.Errorf("basis index %d out of range [0, %d)", index, len(s.Amplitudes))
	}
	return s.Amplitudes[index], nil
}

// FormatKet renders the state in ket notation, skipping amplitudes with
// probability below the cutoff. Intended for CLI output and debugging.
func (s *StateVector) FormatKet(cutoff float64) string {
	out := ""
	for i, a := range s.Amplitudes {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p < cutoff {
			continue
		}
		if out != "" {
			out += " + "
		}
		out += fmt.Sprintf("(%.4f%+.4fi)|%0*b>", real(a), imag(a), s.Wires, i)
	}
	if out == "" {
		out = "0"
	}
	return out
}

// InnerProduct returns <s|other>.
func (s *StateVector) InnerProduct(other *StateVector) (complex128, error) {
	if s.Wires != other.Wires {
		return 0, fmt.Errorf("wire count mismatch: %d vs %d", s.Wires, other.Wires)
	}
	var sum complex128
	for i, a := range s.Amplitudes {
		sum += cmplx.Conj(a) * other.Amplitudes[i]
	}
	return sum, nil
}
