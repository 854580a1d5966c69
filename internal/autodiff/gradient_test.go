package autodiff

import (
	"fmt"
	"math"
	"testing"

	"github.com/helioq-labs/varq/internal/device"
	"github.com/helioq-labs/varq/internal/qnode"
	"github.com/helioq-labs/varq/internal/quantum"
)

func TestParameterShiftOnRY(t *testing.T) {
	// For f(θ) = <Z> after RY(θ), f = cos(θ) and f' = -sin(θ).
	dev, _ := device.New(1)
	qn, _ := qnode.New("ry", dev, func(tape *quantum.Tape, params []float64) {
		tape.RY(params[0], 0)
	})
	f := func(params []float64) (float64, error) {
		return qn.ExpVal(quantum.Z(0), params)
	}

	for _, theta := range []float64{0, 0.4, 1.2, -2.0} {
		grad, err := Gradient(f, []float64{theta}, Config{Method: ParameterShift})
		if err != nil {
			t.Fatalf("Gradient failed at theta=%g: %v", theta, err)
		}
		want := -math.Sin(theta)
		if math.Abs(grad[0]-want) > 1e-9 {
			t.Errorf("Parameter-shift at theta=%g: %f, want %f", theta, grad[0], want)
		}
	}
}

func TestFiniteDiffMatchesParameterShift(t *testing.T) {
	dev, _ := device.New(2)
	qn, _ := qnode.New("ansatz", dev, qnode.Ansatz(1))
	f := func(params []float64) (float64, error) {
		return qn.ExpVal(quantum.Z(0), params)
	}
	params := []float64{0.3, 0.8, -0.2, 0.5, 0.1, 0.9}

	ps, err := Gradient(f, params, Config{Method: ParameterShift})
	if err != nil {
		t.Fatalf("ParameterShift failed: %v", err)
	}
	fd, err := Gradient(f, params, Config{Method: FiniteDiff, Step: 1e-6})
	if err != nil {
		t.Fatalf("FiniteDiff failed: %v", err)
	}
	for i := range ps {
		if math.Abs(ps[i]-fd[i]) > 1e-5 {
			t.Errorf("Gradient %d: parameter-shift %f vs finite-diff %f", i, ps[i], fd[i])
		}
	}
}

func TestGradientDoesNotMutateParams(t *testing.T) {
	f := func(p []float64) (float64, error) { return p[0] * p[0], nil }
	params := []float64{3}
	if _, err := Gradient(f, params, Config{Method: FiniteDiff}); err != nil {
		t.Fatalf("Gradient failed: %v", err)
	}
	if params[0] != 3 {
		t.Errorf("Gradient mutated params: %v", params)
	}
}

func TestGradientErrors(t *testing.T) {
	if _, err := Gradient(nil, []float64{1}, Config{}); err == nil {
		t.Error("Expected error for nil function")
	}

	failing := func(p []float64) (float64, error) { return 0, fmt.Errorf("boom") }
	if _, err := Gradient(failing, []float64{1}, Config{Method: ParameterShift}); err == nil {
		t.Error("Expected propagated evaluation error")
	}

	f := func(p []float64) (float64, error) { return p[0], nil }
	if _, err := Gradient(f, []float64{1}, Config{Method: Method(99)}); err == nil {
		t.Error("Expected error for unknown method")
	}
	if _, err := Gradient(f, []float64{1}, Config{Method: FiniteDiff, Step: -1}); err == nil {
		t.Error("Expected error for negative step")
	}
}

func TestMethodString(t *testing.T) {
	if ParameterShift.String() != "parameter-shift" {
		t.Errorf("Unexpected name: %s", ParameterShift)
	}
	if FiniteDiff.String() != "finite-diff" {
		t.Errorf("Unexpected name: %s", FiniteDiff)
	}
}
