package train

import (
	"context"
	"math"
	"testing"

	"github.com/helioq-labs/varq/internal/dataset"
	"github.com/helioq-labs/varq/internal/device"
	"github.com/helioq-labs/varq/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	dev, err := device.New(2, device.WithSeed(1))
	if err != nil {
		t.Fatalf("device.New failed: %v", err)
	}
	c, err := NewClassifier(dev, 1)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	return c
}

func TestClassifierParamCount(t *testing.T) {
	c := newTestClassifier(t)
	if c.ParamCount() != 6 {
		t.Errorf("ParamCount = %d, want 6", c.ParamCount())
	}
}

func TestPredictBounded(t *testing.T) {
	c := newTestClassifier(t)
	params := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	for _, x := range []float64{0, 1, math.Pi} {
		pred, err := c.Predict(x, params)
		if err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
		if pred < -1-1e-9 || pred > 1+1e-9 {
			t.Errorf("Predict(%g) = %f outside [-1, 1]", x, pred)
		}
	}
}

func TestMSELossOnDefaultSet(t *testing.T) {
	c := newTestClassifier(t)
	// With zero parameters the model output is cos(x); the default set's
	// labels are sign(cos(x))-aligned but not exactly cos(x), so the loss
	// is positive yet below the worst case of 4.
	loss, err := c.MSELoss(dataset.Default(), make([]float64, 6))
	if err != nil {
		t.Fatalf("MSELoss failed: %v", err)
	}
	if loss <= 0 || loss >= 4 {
		t.Errorf("Loss = %f, want in (0, 4)", loss)
	}
}

func TestLossGradientMatchesFiniteDiff(t *testing.T) {
	c := newTestClassifier(t)
	ds := dataset.Default()
	params := []float64{0.3, -0.2, 0.5, 0.1, 0.4, -0.6}

	grad, err := c.LossGradient(ds, params)
	if err != nil {
		t.Fatalf("LossGradient failed: %v", err)
	}

	const h = 1e-6
	for i := range params {
		shifted := make([]float64, len(params))
		copy(shifted, params)
		shifted[i] = params[i] + h
		plus, _ := c.MSELoss(ds, shifted)
		shifted[i] = params[i] - h
		minus, _ := c.MSELoss(ds, shifted)
		want := (plus - minus) / (2 * h)
		if math.Abs(grad[i]-want) > 1e-4 {
			t.Errorf("Gradient %d: %f, want %f", i, grad[i], want)
		}
	}
}

func TestRunReducesLoss(t *testing.T) {
	c := newTestClassifier(t)
	opt, err := NewGradientDescent(0.4)
	if err != nil {
		t.Fatalf("NewGradientDescent failed: %v", err)
	}
	initial := []float64{0.1, 0.2, 0.3, 0.1, 0.2, 0.3}

	hist, err := Run(context.Background(), c, dataset.Default(), opt, initial, 15)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(hist.Steps) != 16 { // initial loss plus one per step
		t.Fatalf("Expected 16 records, got %d", len(hist.Steps))
	}
	first := hist.Steps[0].Loss
	if hist.FinalLoss >= first {
		t.Errorf("Loss did not improve: %f -> %f", first, hist.FinalLoss)
	}
	if hist.Accuracy < 0.5 {
		t.Errorf("Accuracy = %f, want at least 0.5", hist.Accuracy)
	}
	if initial[0] != 0.1 {
		t.Error("Run mutated the initial parameters")
	}
}

func TestRunAdamReducesLoss(t *testing.T) {
	c := newTestClassifier(t)
	opt, err := NewAdam(0.1)
	if err != nil {
		t.Fatalf("NewAdam failed: %v", err)
	}
	initial := []float64{0.1, 0.2, 0.3, 0.1, 0.2, 0.3}
	hist, err := Run(context.Background(), c, dataset.Default(), opt, initial, 20)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if hist.FinalLoss >= hist.Steps[0].Loss {
		t.Errorf("Adam did not improve loss: %f -> %f", hist.Steps[0].Loss, hist.FinalLoss)
	}
}

func TestRunCancellation(t *testing.T) {
	c := newTestClassifier(t)
	opt, _ := NewGradientDescent(0.1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, c, dataset.Default(), opt, make([]float64, 6), 5); err == nil {
		t.Error("Expected cancellation error")
	}
}

func TestRunValidation(t *testing.T) {
	c := newTestClassifier(t)
	opt, _ := NewGradientDescent(0.1)
	if _, err := Run(context.Background(), c, dataset.Default(), opt, make([]float64, 6), 0); err == nil {
		t.Error("Expected error for zero steps")
	}
	if _, err := Run(context.Background(), c, dataset.Dataset{}, opt, make([]float64, 6), 3); err == nil {
		t.Error("Expected error for empty dataset")
	}
}

func TestHistoryLossImprovement(t *testing.T) {
	hist := History{Steps: []StepRecord{
		{Step: 0, Loss: 1.0},
		{Step: 1, Loss: 0.4},
	}}
	improvement, mean := hist.LossImprovement()
	if math.Abs(improvement-0.6) > 1e-12 {
		t.Errorf("Improvement = %f, want 0.6", improvement)
	}
	if math.Abs(mean-0.7) > 1e-12 {
		t.Errorf("Mean = %f, want 0.7", mean)
	}
}
