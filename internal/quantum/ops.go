package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Gate names accepted by Apply. Adjoint variants carry a "dg" suffix.
const (
	GateHadamard   = "Hadamard"
	GatePauliX     = "PauliX"
	GatePauliY     = "PauliY"
	GatePauliZ     = "PauliZ"
	GateS          = "S"
	GateSdg        = "Sdg"
	GateT          = "T"
	GateTdg        = "Tdg"
	GateRX         = "RX"
	GateRY         = "RY"
	GateRZ         = "RZ"
	GatePhaseShift = "PhaseShift"
	GateRot        = "Rot"
	GateCNOT       = "CNOT"
	GateCZ         = "CZ"
	GateSWAP       = "SWAP"
	GateCRX        = "CRX"
	GateCRY        = "CRY"
	GateCRZ        = "CRZ"
)

// Op is one gate application: a named gate, the wires it acts on, and any
// rotation angles. Two-wire gates list the control first.
type Op struct {
	Gate   string    `json:"gate"`
	Wires  []int     `json:"wires"`
	Params []float64 `json:"params,omitempty"`
}

// gateArity maps each gate to its required wire and parameter counts.
var gateArity = map[string]struct{ wires, params int }{
	GateHadamard:   {1, 0},
	GatePauliX:     {1, 0},
	GatePauliY:     {1, 0},
	GatePauliZ:     {1, 0},
	GateS:          {1, 0},
	GateSdg:        {1, 0},
	GateT:          {1, 0},
	GateTdg:        {1, 0},
	GateRX:         {1, 1},
	GateRY:         {1, 1},
	GateRZ:         {1, 1},
	GatePhaseShift: {1, 1},
	GateRot:        {1, 3},
	GateCNOT:       {2, 0},
	GateCZ:         {2, 0},
	GateSWAP:       {2, 0},
	GateCRX:        {2, 1},
	GateCRY:        {2, 1},
	GateCRZ:        {2, 1},
}

// Validate checks the op against the gate table and a register size.
func (op Op) Validate(wires int) error {
	arity, ok := gateArity[op.Gate]
	if !ok {
		return fmt.Errorf("unknown gate %q", op.Gate)
	}
	if len(op.Wires) != arity.wires {
		return fmt.Errorf("gate %s needs %d wire(s), got %d", op.Gate, arity.wires, len(op.Wires))
	}
	if len(op.Params) != arity.params {
		return fmt.Errorf("gate %s needs %d parameter(s), got %d", op.Gate, arity.params, len(op.Params))
	}
	for _, w := range op.Wires {
		if w < 0 || w >= wires {
			return fmt.Errorf("gate %s: wire %d out of range for %d-wire register", op.Gate, w, wires)
		}
	}
	if arity.wires == 2 && op.Wires[0] == op.Wires[1] {
		return fmt.Errorf("gate %s: control and target must differ, both are wire %d", op.Gate, op.Wires[0])
	}
	return nil
}

// NumParams reports the rotation-angle count of the named gate, or -1 for
// an unknown gate.
func NumParams(gate string) int {
	arity, ok := gateArity[gate]
	if !ok {
		return -1
	}
	return arity.params
}

// Apply validates and applies a single operation to the state.
func (s *StateVector) Apply(op Op) error {
	if err := op.Validate(s.Wires); err != nil {
		return err
	}
	switch op.Gate {
	case GateHadamard:
		s.applyHadamard(op.Wires[0])
	case GatePauliX:
		s.applyPauliX(op.Wires[0])
	case GatePauliY:
		s.applyPauliY(op.Wires[0])
	case GatePauliZ:
		s.applyPauliZ(op.Wires[0])
	case GateS:
		s.applyPhase(op.Wires[0], 1i)
	case GateSdg:
		s.applyPhase(op.Wires[0], -1i)
	case GateT:
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, math.Pi/4)))
	case GateTdg:
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, -math.Pi/4)))
	case GateRX:
		s.applyRX(op.Wires[0], op.Params[0])
	case GateRY:
		s.applyRY(op.Wires[0], op.Params[0])
	case GateRZ:
		s.applyRZ(op.Wires[0], op.Params[0])
	case GatePhaseShift:
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, op.Params[0])))
	case GateRot:
		s.applyRot(op.Wires[0], op.Params[0], op.Params[1], op.Params[2])
	case GateCNOT:
		s.applyCNOT(op.Wires[0], op.Wires[1])
	case GateCZ:
		s.applyCZ(op.Wires[0], op.Wires[1])
	case GateSWAP:
		s.applySWAP(op.Wires[0], op.Wires[1])
	case GateCRX:
		s.applyCRX(op.Wires[0], op.Wires[1], op.Params[0])
	case GateCRY:
		s.applyCRY(op.Wires[0], op.Wires[1], op.Params[0])
	case GateCRZ:
		s.applyCRZ(op.Wires[0], op.Wires[1], op.Params[0])
	default:
		return fmt.Errorf("unknown gate %q", op.Gate)
	}
	return nil
}

// ApplyAll applies a sequence of operations in order, stopping at the
// first invalid op.
func (s *StateVector) ApplyAll(ops []Op) error {
	for i, op := range ops {
		if err := s.Apply(op); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// Tape records gate applications made by a circuit function. It is the
// recording half of a quantum node: the circuit function pushes ops onto
// the tape and a device later replays them.
type Tape struct {
	wires int
	ops   []Op
	err   error
}

// NewTape returns an empty tape for a register of the given wire count.
func NewTape(wires int) *Tape {
	return &Tape{wires: wires}
}

// Wires returns the register size the tape records against.
func (t *Tape) Wires() int { return t.wires }

// Ops returns the recorded operations in application order.
func (t *Tape) Ops() []Op { return t.ops }

// Err returns the first recording error, if any. Recording stops after the
// first failure so circuit functions do not need per-call error checks.
func (t *Tape) Err() error { return t.err }

func (t *Tape) record(op Op) {
	if t.err != nil {
		return
	}
	if err := op.Validate(t.wires); err != nil {
		t.err = fmt.Errorf("op %d: %w", len(t.ops), err)
		return
	}
	t.ops = append(t.ops, op)
}

// Recording helpers, one per gate. Circuit functions call these the way
// the original workflow called its gate primitives.

func (t *Tape) Hadamard(wire int) { t.record(Op{Gate: GateHadamard, Wires: []int{wire}}) }
func (t *Tape) PauliX(wire int)   { t.record(Op{Gate: GatePauliX, Wires: []int{wire}}) }
func (t *Tape) PauliY(wire int)   { t.record(Op{Gate: GatePauliY, Wires: []int{wire}}) }
func (t *Tape) PauliZ(wire int)   { t.record(Op{Gate: GatePauliZ, Wires: []int{wire}}) }
func (t *Tape) S(wire int)        { t.record(Op{Gate: GateS, Wires: []int{wire}}) }
func (t *Tape) T(wire int)        { t.record(Op{Gate: GateT, Wires: []int{wire}}) }

func (t *Tape) RX(theta float64, wire int) {
	t.record(Op{Gate: GateRX, Wires: []int{wire}, Params: []float64{theta}})
}

func (t *Tape) RY(theta float64, wire int) {
	t.record(Op{Gate: GateRY, Wires: []int{wire}, Params: []float64{theta}})
}

func (t *Tape) RZ(theta float64, wire int) {
	t.record(Op{Gate: GateRZ, Wires: []int{wire}, Params: []float64{theta}})
}

func (t *Tape) PhaseShift(phi float64, wire int) {
	t.record(Op{Gate: GatePhaseShift, Wires: []int{wire}, Params: []float64{phi}})
}

func (t *Tape) Rot(phi, theta, omega float64, wire int) {
	t.record(Op{Gate: GateRot, Wires: []int{wire}, Params: []float64{phi, theta, omega}})
}

func (t *Tape) CNOT(control, target int) {
	t.record(Op{Gate: GateCNOT, Wires: []int{control, target}})
}

func (t *Tape) CZ(control, target int) {
	t.record(Op{Gate: GateCZ, Wires: []int{control, target}})
}

func (t *Tape) SWAP(a, b int) {
	t.record(Op{Gate: GateSWAP, Wires: []int{a, b}})
}

func (t *Tape) CRX(theta float64, control, target int) {
	t.record(Op{Gate: GateCRX, Wires: []int{control, target}, Params: []float64{theta}})
}

func (t *Tape) CRY(theta float64, control, target int) {
	t.record(Op{Gate: GateCRY, Wires: []int{control, target}, Params: []float64{theta}})
}

func (t *Tape) CRZ(theta float64, control, target int) {
	t.record(Op{Gate: GateCRZ, Wires: []int{control, target}, Params: []float64{theta}})
}
