// Package qnode binds circuit-defining functions to a device, forming the
// executable unit of the workflow: call a method with parameters, get a
// state, a distribution, samples, or an expectation value back.
package qnode

import (
	"fmt"

	"github.com/helioq-labs/varq/internal/device"
	"github.com/helioq-labs/varq/internal/quantum"
)

// CircuitFunc defines a circuit by recording gate applications onto the
// tape. The params slice carries the trainable angles; fixed circuits
// ignore it.
type CircuitFunc func(t *quantum.Tape, params []float64)

// QNode couples a circuit function to a simulator. Every call records a
// fresh tape, so circuit functions may branch on their parameters.
type QNode struct {
	Name    string
	dev     *device.Simulator
	circuit CircuitFunc
}

// New binds circuit to dev.
func New(name string, dev *device.Simulator, circuit CircuitFunc) (*QNode, error) {
	if dev == nil {
		return nil, fmt.Errorf("qnode %q: nil device", name)
	}
	if circuit == nil {
		return nil, fmt.Errorf("qnode %q: nil circuit function", name)
	}
	return &QNode{Name: name, dev: dev, circuit: circuit}, nil
}

// Device returns the bound simulator.
func (q *QNode) Device() *device.Simulator { return q.dev }

// Record runs the circuit function and returns the recorded operations.
func (q *QNode) Record(params []float64) ([]quantum.Op, error) {
	tape := quantum.NewTape(q.dev.Wires())
	q.circuit(tape, params)
	if err := tape.Err(); err != nil {
		return nil, fmt.Errorf("qnode %q: %w", q.Name, err)
	}
	return tape.Ops(), nil
}

// State returns the final state vector for the given parameters.
func (q *QNode) State(params []float64) (*quantum.StateVector, error) {
	ops, err := q.Record(params)
	if err != nil {
		return nil, err
	}
	return q.dev.Run(ops)
}

// Probs returns the basis-state probability distribution.
func (q *QNode) Probs(params []float64) ([]float64, error) {
	ops, err := q.Record(params)
	if err != nil {
		return nil, err
	}
	return q.dev.Probs(ops)
}

// Sample draws shot samples of basis-state outcomes.
func (q *QNode) Sample(params []float64) ([]int, error) {
	ops, err := q.Record(params)
	if err != nil {
		return nil, err
	}
	return q.dev.Sample(ops)
}

// ExpVal returns the expectation value of obs after the circuit.
func (q *QNode) ExpVal(obs quantum.Observable, params []float64) (float64, error) {
	ops, err := q.Record(params)
	if err != nil {
		return 0, err
	}
	return q.dev.ExpVal(ops, obs)
}
