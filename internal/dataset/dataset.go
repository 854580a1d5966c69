// Package dataset holds the tiny labeled sets the variational classifier
// trains on: scalar inputs (angles) with ±1 labels.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Sample pairs one scalar input with a ±1 label.
type Sample struct {
	Input float64 `json:"input"`
	Label float64 `json:"label"`
}

// Dataset is an ordered collection of samples.
type Dataset struct {
	Name    string   `json:"name"`
	Samples []Sample `json:"samples"`
}

// Default returns the hand-written six-point set used by the training
// demonstration: inputs near 0 labeled +1, inputs near π labeled -1.
func Default() Dataset {
	return Dataset{
		Name: "handwritten-six",
		Samples: []Sample{
			{Input: 0.0, Label: 1},
			{Input: 0.3, Label: 1},
			{Input: -0.4, Label: 1},
			{Input: math.Pi, Label: -1},
			{Input: math.Pi - 0.3, Label: -1},
			{Input: math.Pi + 0.4, Label: -1},
		},
	}
}

// Load reads a dataset from a JSON file. The path must carry a .json
// extension and stay under the size cap.
func Load(path string) (Dataset, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Dataset{}, fmt.Errorf("dataset file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to stat dataset file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return Dataset{}, fmt.Errorf("dataset file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("invalid dataset: %w", err)
	}
	return ds, nil
}

// Validate checks that the set is non-empty with ±1 labels and finite
// inputs.
func (d Dataset) Validate() error {
	if len(d.Samples) == 0 {
		return fmt.Errorf("dataset has no samples")
	}
	for i, s := range d.Samples {
		if math.IsNaN(s.Input) || math.IsInf(s.Input, 0) {
			return fmt.Errorf("sample %d: input is not finite", i)
		}
		if s.Label != 1 && s.Label != -1 {
			return fmt.Errorf("sample %d: label must be +1 or -1, got %g", i, s.Label)
		}
	}
	return nil
}

// Inputs returns the inputs in order.
func (d Dataset) Inputs() []float64 {
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = s.Input
	}
	return out
}

// Labels returns the labels in order.
func (d Dataset) Labels() []float64 {
	out := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = s.Label
	}
	return out
}
