package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical training defaults file.
// This is the single source of truth for all default training values.
const DefaultConfigPath = "config/training.defaults.json"

// TrainingConfig represents the root configuration for simulator and
// training parameters. Fields are pointers so a partial JSON file leaves
// the omitted values at their defaults.
type TrainingConfig struct {
	// Device params
	Wires *int   `json:"wires,omitempty"`
	Shots *int   `json:"shots,omitempty"`
	Seed  *int64 `json:"seed,omitempty"`

	// Model params
	Layers *int `json:"layers,omitempty"`

	// Optimizer params
	Optimizer    *string  `json:"optimizer,omitempty"` // "gradient-descent" or "adam"
	LearningRate *float64 `json:"learning_rate,omitempty"`
	Steps        *int     `json:"steps,omitempty"`

	// Output params
	OutputDir *string `json:"output_dir,omitempty"`
	DBPath    *string `json:"db_path,omitempty"`

	// Server params
	Listen *string `json:"listen,omitempty"`
}

// EmptyTrainingConfig returns a TrainingConfig with all fields set to nil.
// Use LoadTrainingConfig to load actual values from a file.
func EmptyTrainingConfig() *TrainingConfig {
	return &TrainingConfig{}
}

// LoadTrainingConfig loads a TrainingConfig from a JSON file. The file is
// validated to ensure it has a .json extension and is under the max file
// size. Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTrainingConfig(path string) (*TrainingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrainingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TrainingConfig) Validate() error {
	if c.Wires != nil && (*c.Wires < 1 || *c.Wires > 24) {
		return fmt.Errorf("wires must be between 1 and 24, got %d", *c.Wires)
	}
	if c.Shots != nil && *c.Shots < 0 {
		return fmt.Errorf("shots must be non-negative, got %d", *c.Shots)
	}
	if c.Layers != nil && *c.Layers < 1 {
		return fmt.Errorf("layers must be at least 1, got %d", *c.Layers)
	}
	if c.LearningRate != nil && *c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %f", *c.LearningRate)
	}
	if c.Steps != nil && *c.Steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", *c.Steps)
	}
	if c.Optimizer != nil {
		switch *c.Optimizer {
		case "gradient-descent", "gd", "adam":
		default:
			return fmt.Errorf("unknown optimizer %q", *c.Optimizer)
		}
	}
	return nil
}

// GetWires returns the wires value or the default.
func (c *TrainingConfig) GetWires() int {
	if c.Wires == nil {
		return 2
	}
	return *c.Wires
}

// GetShots returns the shots value or the default (0 = analytic).
func (c *TrainingConfig) GetShots() int {
	if c.Shots == nil {
		return 0
	}
	return *c.Shots
}

// GetSeed returns the seed value or the default.
func (c *TrainingConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 42
	}
	return *c.Seed
}

// GetLayers returns the layers value or the default.
func (c *TrainingConfig) GetLayers() int {
	if c.Layers == nil {
		return 1
	}
	return *c.Layers
}

// GetOptimizer returns the optimizer name or the default.
func (c *TrainingConfig) GetOptimizer() string {
	if c.Optimizer == nil {
		return "gradient-descent"
	}
	return *c.Optimizer
}

// GetLearningRate returns the learning_rate value or the default.
func (c *TrainingConfig) GetLearningRate() float64 {
	if c.LearningRate == nil {
		return 0.4
	}
	return *c.LearningRate
}

// GetSteps returns the steps value or the default.
func (c *TrainingConfig) GetSteps() int {
	if c.Steps == nil {
		return 15
	}
	return *c.Steps
}

// GetOutputDir returns the output_dir value or the default.
func (c *TrainingConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return "plots"
	}
	return *c.OutputDir
}

// GetDBPath returns the db_path value or the default (empty disables
// persistence).
func (c *TrainingConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetListen returns the listen address or the default.
func (c *TrainingConfig) GetListen() string {
	if c.Listen == nil {
		return ":8080"
	}
	return *c.Listen
}
