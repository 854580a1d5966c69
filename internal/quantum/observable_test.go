package quantum

import (
	"math"
	"testing"
)

func TestZExpectationOnBasisStates(t *testing.T) {
	s, _ := NewStateVector(1)
	ev, err := Z(0).ExpectationValue(s)
	if err != nil {
		t.Fatalf("ExpectationValue failed: %v", err)
	}
	if !approx(ev, 1) {
		t.Errorf("<Z> on |0> = %f, want 1", ev)
	}

	s.Apply(Op{Gate: GatePauliX, Wires: []int{0}})
	ev, _ = Z(0).ExpectationValue(s)
	if !approx(ev, -1) {
		t.Errorf("<Z> on |1> = %f, want -1", ev)
	}
}

func TestXExpectationOnPlusState(t *testing.T) {
	s, _ := NewStateVector(1)
	s.Apply(Op{Gate: GateHadamard, Wires: []int{0}})
	ev, err := X(0).ExpectationValue(s)
	if err != nil {
		t.Fatalf("ExpectationValue failed: %v", err)
	}
	if !approx(ev, 1) {
		t.Errorf("<X> on |+> = %f, want 1", ev)
	}
}

func TestYExpectation(t *testing.T) {
	// RX(-π/2)|0> = (|0> + i|1>)/√2, the +1 eigenstate of Y.
	s, _ := NewStateVector(1)
	s.Apply(Op{Gate: GateRX, Wires: []int{0}, Params: []float64{-math.Pi / 2}})
	ev, err := Y(0).ExpectationValue(s)
	if err != nil {
		t.Fatalf("ExpectationValue failed: %v", err)
	}
	if !approx(ev, 1) {
		t.Errorf("<Y> on +i eigenstate = %f, want 1", ev)
	}
}

func TestZExpectationFollowsRY(t *testing.T) {
	theta := 1.1
	s, _ := NewStateVector(1)
	s.Apply(Op{Gate: GateRY, Wires: []int{0}, Params: []float64{theta}})
	ev, _ := Z(0).ExpectationValue(s)
	if !approx(ev, math.Cos(theta)) {
		t.Errorf("<Z> after RY(%.1f) = %f, want cos(theta) = %f", theta, ev, math.Cos(theta))
	}
}

func TestBellCorrelator(t *testing.T) {
	s, _ := NewStateVector(2)
	s.ApplyAll([]Op{
		{Gate: GateHadamard, Wires: []int{0}},
		{Gate: GateCNOT, Wires: []int{0, 1}},
	})

	// Individual Z expectations vanish; the ZZ correlator is 1.
	for wire := 0; wire < 2; wire++ {
		ev, _ := Z(wire).ExpectationValue(s)
		if !approx(ev, 0) {
			t.Errorf("<Z(%d)> on Bell state = %f, want 0", wire, ev)
		}
	}
	zz, _ := TensorZ(0, 1).ExpectationValue(s)
	if !approx(zz, 1) {
		t.Errorf("<Z@Z> on Bell state = %f, want 1", zz)
	}
}

func TestHamiltonianExpectation(t *testing.T) {
	h := Hamiltonian("test",
		PauliTerm{Coefficient: 0.5, Factors: map[int]Pauli{0: PauliZ}},
		PauliTerm{Coefficient: -0.25, Factors: map[int]Pauli{1: PauliZ}},
		PauliTerm{Coefficient: 2.0, Factors: nil}, // identity term
	)
	s, _ := NewStateVector(2)
	ev, err := h.ExpectationValue(s)
	if err != nil {
		t.Fatalf("ExpectationValue failed: %v", err)
	}
	// On |00>: 0.5*1 - 0.25*1 + 2.0 = 2.25
	if !approx(ev, 2.25) {
		t.Errorf("Hamiltonian expectation = %f, want 2.25", ev)
	}
}

func TestObservableValidate(t *testing.T) {
	bad := Observable{Name: "bad", Terms: []PauliTerm{
		{Coefficient: 1, Factors: map[int]Pauli{5: PauliZ}},
	}}
	s, _ := NewStateVector(2)
	if _, err := bad.ExpectationValue(s); err == nil {
		t.Error("Expected error for out-of-range observable wire")
	}
}

func TestEigenvalueForOutcome(t *testing.T) {
	term := PauliTerm{Coefficient: 1, Factors: map[int]Pauli{0: PauliZ, 1: PauliZ}}
	cases := []struct {
		state int
		want  float64
	}{
		{0b00, 1},
		{0b01, -1},
		{0b10, -1},
		{0b11, 1},
	}
	for _, tc := range cases {
		if got := EigenvalueForOutcome(term, tc.state); got != tc.want {
			t.Errorf("EigenvalueForOutcome(%02b) = %f, want %f", tc.state, got, tc.want)
		}
	}
}
