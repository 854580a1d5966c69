package qnode

import "github.com/helioq-labs/varq/internal/quantum"

// Bell returns the fixed two-wire entangling circuit used throughout the
// demonstration: Hadamard on wire 0 followed by CNOT(0,1), preparing
// (|00> + |11>)/sqrt(2). Ignores params.
func Bell() CircuitFunc {
	return func(t *quantum.Tape, _ []float64) {
		t.Hadamard(0)
		t.CNOT(0, 1)
	}
}

// AnsatzParamCount returns the parameter count of Ansatz for a register:
// one Rot (3 angles) per wire per layer.
func AnsatzParamCount(wires, layers int) int {
	return 3 * wires * layers
}

// Ansatz returns a layered variational circuit: each layer applies one
// general rotation per wire, then entangles neighboring wires with a CNOT
// ladder. Parameters are consumed in wire order within each layer; extra
// parameters are ignored and missing ones default to zero rotations.
func Ansatz(layers int) CircuitFunc {
	return func(t *quantum.Tape, params []float64) {
		wires := t.Wires()
		idx := 0
		for l := 0; l < layers; l++ {
			for w := 0; w < wires; w++ {
				phi, theta, omega := 0.0, 0.0, 0.0
				if idx < len(params) {
					phi = params[idx]
				}
				if idx+1 < len(params) {
					theta = params[idx+1]
				}
				if idx+2 < len(params) {
					omega = params[idx+2]
				}
				t.Rot(phi, theta, omega, w)
				idx += 3
			}
			for w := 0; w+1 < wires; w++ {
				t.CNOT(w, w+1)
			}
		}
	}
}

// Embedded prefixes inner with an angle embedding: RX(x) on every wire.
// This is how classical inputs enter the variational classifier.
func Embedded(x float64, inner CircuitFunc) CircuitFunc {
	return func(t *quantum.Tape, params []float64) {
		for w := 0; w < t.Wires(); w++ {
			t.RX(x, w)
		}
		inner(t, params)
	}
}
