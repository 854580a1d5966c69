package train

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Optimizer mutates a parameter vector given its gradient.
type Optimizer interface {
	// Step applies one update in place. params and grad have equal length.
	Step(params, grad []float64) error
	// Name identifies the optimizer for run records.
	Name() string
}

// GradientDescent is plain steepest descent with a fixed learning rate.
type GradientDescent struct {
	LearningRate float64
}

// NewGradientDescent returns a descent optimizer; rate must be positive.
func NewGradientDescent(rate float64) (*GradientDescent, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", rate)
	}
	return &GradientDescent{LearningRate: rate}, nil
}

func (g *GradientDescent) Name() string { return "gradient-descent" }

func (g *GradientDescent) Step(params, grad []float64) error {
	if len(params) != len(grad) {
		return fmt.Errorf("parameter/gradient length mismatch: %d vs %d", len(params), len(grad))
	}
	floats.AddScaled(params, -g.LearningRate, grad)
	return nil
}

// Adam implements the Adam optimizer with the standard defaults.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t int
	m []float64
	v []float64
}

// NewAdam returns an Adam optimizer with β1=0.9, β2=0.999, ε=1e-8.
func NewAdam(rate float64) (*Adam, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", rate)
	}
	return &Adam{LearningRate: rate, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}, nil
}

func (a *Adam) Name() string { return "adam" }

func (a *Adam) Step(params, grad []float64) error {
	if len(params) != len(grad) {
		return fmt.Errorf("parameter/gradient length mismatch: %d vs %d", len(params), len(grad))
	}
	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	}
	if len(a.m) != len(params) {
		return fmt.Errorf("parameter count changed mid-run: %d vs %d", len(params), len(a.m))
	}
	a.t++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for i := range params {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*grad[i]
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*grad[i]*grad[i]
		mHat := a.m[i] / bc1
		vHat := a.v[i] / bc2
		params[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
	return nil
}

// NewOptimizer builds an optimizer by name ("gradient-descent" or "adam").
func NewOptimizer(name string, rate float64) (Optimizer, error) {
	switch name {
	case "gradient-descent", "gd", "":
		return NewGradientDescent(rate)
	case "adam":
		return NewAdam(rate)
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want gradient-descent or adam)", name)
	}
}
