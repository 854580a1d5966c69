// Package plotting writes PNG artifacts for training runs and circuit
// output: loss-over-steps curves and basis-state probability bars.
package plotting

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// LossCurve plots loss against optimization step and saves a PNG.
func LossCurve(losses []float64, title, outFile string) error {
	if len(losses) == 0 {
		return fmt.Errorf("no loss values to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Loss (MSE)"

	pts := make(plotter.XYs, len(losses))
	for i, l := range losses {
		pts[i] = plotter.XY{X: float64(i), Y: l}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build loss line: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("loss", line)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 5*vg.Inch, outFile); err != nil {
		return fmt.Errorf("save loss plot: %w", err)
	}
	return nil
}

// ProbBars plots a computational-basis probability distribution as a bar
// chart, labeling each bar with its bitstring.
func ProbBars(probs []float64, wires int, title, outFile string) error {
	if len(probs) == 0 {
		return fmt.Errorf("no probabilities to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Probability"
	p.Y.Min = 0
	p.Y.Max = 1

	vals := make(plotter.Values, len(probs))
	labels := make([]string, len(probs))
	for i, pr := range probs {
		vals[i] = pr
		labels[i] = fmt.Sprintf("|%0*b>", wires, i)
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, outFile); err != nil {
		return fmt.Errorf("save probability plot: %w", err)
	}
	return nil
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MakeOutputDir creates a timestamped subdirectory of baseDir for one
// run's artifacts and returns its path.
func MakeOutputDir(baseDir, runName string) (string, error) {
	dir := filepath.Join(baseDir, runName, FormatTimestamp(time.Now()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	return dir, nil
}
