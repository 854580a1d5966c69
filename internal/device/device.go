// Package device provides execution backends for recorded circuits. The
// only backend is an in-process state-vector simulator; it owns the RNG
// used for shot sampling so runs are reproducible under a fixed seed.
package device

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/helioq-labs/varq/internal/quantum"
)

// Simulator executes operation lists on a dense state vector.
type Simulator struct {
	wires int
	shots int
	rng   *rand.Rand
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithShots sets the sample count for Sample and sampled estimates.
// Zero (the default) selects analytic mode.
func WithShots(shots int) Option {
	return func(s *Simulator) { s.shots = shots }
}

// WithSeed fixes the sampling RNG seed.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// New returns a simulator for the given wire count.
func New(wires int, opts ...Option) (*Simulator, error) {
	if wires < 1 || wires > quantum.MaxWires {
		return nil, fmt.Errorf("wire count must be between 1 and %d, got %d", quantum.MaxWires, wires)
	}
	s := &Simulator{
		wires: wires,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shots < 0 {
		return nil, fmt.Errorf("shots must be non-negative, got %d", s.shots)
	}
	return s, nil
}

// Wires returns the register size.
func (s *Simulator) Wires() int { return s.wires }

// Shots returns the configured shot count; zero means analytic mode.
func (s *Simulator) Shots() int { return s.shots }

// Run applies the operations to a fresh |0..0> register and returns the
// final state. An empty list is valid and returns the initial state.
func (s *Simulator) Run(ops []quantum.Op) (*quantum.StateVector, error) {
	state, err := quantum.NewStateVector(s.wires)
	if err != nil {
		return nil, err
	}
	if err := state.ApplyAll(ops); err != nil {
		return nil, fmt.Errorf("execute circuit: %w", err)
	}
	return state, nil
}

// Probs runs the circuit and returns the basis-state distribution.
func (s *Simulator) Probs(ops []quantum.Op) ([]float64, error) {
	state, err := s.Run(ops)
	if err != nil {
		return nil, err
	}
	return state.Probs(), nil
}

// Sample runs the circuit and draws shot samples from the basis-state
// distribution. Each sample is a basis-state index. Requires shots > 0.
func (s *Simulator) Sample(ops []quantum.Op) ([]int, error) {
	if s.shots <= 0 {
		return nil, fmt.Errorf("sampling requires shots > 0 (device has %d)", s.shots)
	}
	probs, err := s.Probs(ops)
	if err != nil {
		return nil, err
	}

	// Inverse-CDF draw per shot.
	cdf := make([]float64, len(probs))
	acc := 0.0
	for i, p := range probs {
		acc += p
		cdf[i] = acc
	}
	samples := make([]int, s.shots)
	for k := range samples {
		r := s.rng.Float64() * acc
		lo, hi := 0, len(cdf)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if cdf[mid] < r {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		samples[k] = lo
	}
	return samples, nil
}

// ExpVal runs the circuit and returns the expectation value of the
// observable. With shots configured, the value is estimated from samples
// (valid for Pauli-Z observables, which are diagonal in the measurement
// basis); otherwise it is computed analytically from the state.
func (s *Simulator) ExpVal(ops []quantum.Op, obs quantum.Observable) (float64, error) {
	state, err := s.Run(ops)
	if err != nil {
		return 0, err
	}
	if s.shots == 0 {
		return obs.ExpectationValue(state)
	}

	if err := obs.Validate(s.wires); err != nil {
		return 0, fmt.Errorf("observable %s: %w", obs.Name, err)
	}
	for _, term := range obs.Terms {
		for _, p := range term.Factors {
			if p != quantum.PauliZ && p != quantum.PauliI {
				return 0, fmt.Errorf("sampled expectation of %s requires a Z-basis observable", obs.Name)
			}
		}
	}

	probs := state.Probs()
	cdf := make([]float64, len(probs))
	acc := 0.0
	for i, p := range probs {
		acc += p
		cdf[i] = acc
	}

	total := 0.0
	for _, term := range obs.Terms {
		eigs := make([]float64, s.shots)
		for k := range eigs {
			r := s.rng.Float64() * acc
			lo, hi := 0, len(cdf)-1
			for lo < hi {
				mid := (lo + hi) / 2
				if cdf[mid] < r {
					lo = mid + 1
				} else {
					hi = mid
				}
			}
			eigs[k] = quantum.EigenvalueForOutcome(term, lo)
		}
		total += term.Coefficient * stat.Mean(eigs, nil)
	}
	return total, nil
}

// SampleStats summarizes a sample run: per-outcome counts plus mean and
// standard deviation of the sampled basis indices.
type SampleStats struct {
	Counts map[int]int `json:"counts"`
	Mean   float64     `json:"mean"`
	StdDev float64     `json:"std_dev"`
}

// Summarize computes counts and moments for a set of samples.
func Summarize(samples []int) SampleStats {
	if len(samples) == 0 {
		return SampleStats{Counts: map[int]int{}}
	}
	counts := make(map[int]int, 4)
	vals := make([]float64, len(samples))
	for i, s := range samples {
		counts[s]++
		vals[i] = float64(s)
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if len(samples) < 2 {
		std = 0
	}
	return SampleStats{Counts: counts, Mean: mean, StdDev: std}
}
