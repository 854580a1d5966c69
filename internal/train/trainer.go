// Package train fits variational circuit parameters to labeled data with
// gradient descent: a classifier model built on a qnode, a mean-squared-
// error loss, and optimizers.
package train

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/helioq-labs/varq/internal/autodiff"
	"github.com/helioq-labs/varq/internal/dataset"
	"github.com/helioq-labs/varq/internal/device"
	"github.com/helioq-labs/varq/internal/monitoring"
	"github.com/helioq-labs/varq/internal/qnode"
	"github.com/helioq-labs/varq/internal/quantum"
)

// Classifier predicts a value in [-1, 1] for a scalar input by angle-
// embedding the input into a layered ansatz and measuring PauliZ on
// wire 0.
type Classifier struct {
	dev    *device.Simulator
	layers int
	obs    quantum.Observable
}

// NewClassifier builds a classifier on the given simulator.
func NewClassifier(dev *device.Simulator, layers int) (*Classifier, error) {
	if dev == nil {
		return nil, fmt.Errorf("nil device")
	}
	if layers < 1 {
		return nil, fmt.Errorf("layers must be at least 1, got %d", layers)
	}
	return &Classifier{dev: dev, layers: layers, obs: quantum.Z(0)}, nil
}

// ParamCount returns the trainable parameter count.
func (c *Classifier) ParamCount() int {
	return qnode.AnsatzParamCount(c.dev.Wires(), c.layers)
}

// Predict evaluates the model output for one input.
func (c *Classifier) Predict(x float64, params []float64) (float64, error) {
	qn, err := qnode.New("classifier", c.dev, qnode.Embedded(x, qnode.Ansatz(c.layers)))
	if err != nil {
		return 0, err
	}
	return qn.ExpVal(c.obs, params)
}

// MSELoss returns the mean squared error of the model over the dataset.
func (c *Classifier) MSELoss(ds dataset.Dataset, params []float64) (float64, error) {
	if len(ds.Samples) == 0 {
		return 0, fmt.Errorf("empty dataset")
	}
	total := 0.0
	for _, s := range ds.Samples {
		pred, err := c.Predict(s.Input, params)
		if err != nil {
			return 0, fmt.Errorf("predict input %g: %w", s.Input, err)
		}
		diff := pred - s.Label
		total += diff * diff
	}
	return total / float64(len(ds.Samples)), nil
}

// LossGradient computes the gradient of the MSE loss by chaining the
// parameter-shift gradient of each prediction through the squared-error
// derivative. Exact for the rotation-gate ansatz.
func (c *Classifier) LossGradient(ds dataset.Dataset, params []float64) ([]float64, error) {
	if len(ds.Samples) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	grad := make([]float64, len(params))
	cfg := autodiff.Config{Method: autodiff.ParameterShift}
	for _, s := range ds.Samples {
		x := s.Input
		pred, err := c.Predict(x, params)
		if err != nil {
			return nil, fmt.Errorf("predict input %g: %w", x, err)
		}
		predGrad, err := autodiff.Gradient(func(p []float64) (float64, error) {
			return c.Predict(x, p)
		}, params, cfg)
		if err != nil {
			return nil, fmt.Errorf("gradient at input %g: %w", x, err)
		}
		scale := 2 * (pred - s.Label) / float64(len(ds.Samples))
		for i := range grad {
			grad[i] += scale * predGrad[i]
		}
	}
	return grad, nil
}

// Accuracy reports the fraction of samples whose prediction sign matches
// the label.
func (c *Classifier) Accuracy(ds dataset.Dataset, params []float64) (float64, error) {
	if len(ds.Samples) == 0 {
		return 0, fmt.Errorf("empty dataset")
	}
	hits := 0
	for _, s := range ds.Samples {
		pred, err := c.Predict(s.Input, params)
		if err != nil {
			return 0, err
		}
		if (pred >= 0) == (s.Label > 0) {
			hits++
		}
	}
	return float64(hits) / float64(len(ds.Samples)), nil
}

// StepRecord captures one optimization step.
type StepRecord struct {
	Step   int       `json:"step"`
	Loss   float64   `json:"loss"`
	Params []float64 `json:"params"`
}

// History is the full trace of a training run.
type History struct {
	Steps     []StepRecord `json:"steps"`
	FinalLoss float64      `json:"final_loss"`
	Accuracy  float64      `json:"accuracy"`
}

// Losses returns the loss at each recorded step.
func (h History) Losses() []float64 {
	out := make([]float64, len(h.Steps))
	for i, s := range h.Steps {
		out[i] = s.Loss
	}
	return out
}

// LossImprovement returns initial minus final loss, and the mean loss
// over the run.
func (h History) LossImprovement() (improvement, mean float64) {
	losses := h.Losses()
	if len(losses) == 0 {
		return 0, 0
	}
	return losses[0] - losses[len(losses)-1], stat.Mean(losses, nil)
}

// Run performs steps optimization iterations starting from initial,
// recording the loss before each update and once more after the last.
// The initial slice is not mutated; the returned history owns parameter
// snapshots. The context is checked between steps so long runs can be
// cancelled.
func Run(ctx context.Context, c *Classifier, ds dataset.Dataset, opt Optimizer, initial []float64, steps int) (History, error) {
	if steps < 1 {
		return History{}, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if err := ds.Validate(); err != nil {
		return History{}, err
	}
	params := make([]float64, len(initial))
	copy(params, initial)

	var hist History
	for step := 0; step <= steps; step++ {
		if err := ctx.Err(); err != nil {
			return hist, fmt.Errorf("training cancelled at step %d: %w", step, err)
		}
		loss, err := c.MSELoss(ds, params)
		if err != nil {
			return hist, fmt.Errorf("step %d loss: %w", step, err)
		}
		snapshot := make([]float64, len(params))
		copy(snapshot, params)
		hist.Steps = append(hist.Steps, StepRecord{Step: step, Loss: loss, Params: snapshot})
		monitoring.Logf("train: step %d loss %.6f", step, loss)

		if step == steps {
			break
		}
		grad, err := c.LossGradient(ds, params)
		if err != nil {
			return hist, fmt.Errorf("step %d gradient: %w", step, err)
		}
		if err := opt.Step(params, grad); err != nil {
			return hist, fmt.Errorf("step %d update: %w", step, err)
		}
	}

	hist.FinalLoss = hist.Steps[len(hist.Steps)-1].Loss
	acc, err := c.Accuracy(ds, params)
	if err != nil {
		return hist, fmt.Errorf("final accuracy: %w", err)
	}
	hist.Accuracy = acc
	return hist, nil
}
