// Package config holds the tunable settings for manipulation and constraint
// solving. Settings are plain YAML so a deployment can override the
// defaults without a rebuild; every value has a working default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDegeneracyThreshold is the camera/axis alignment cutoff for
	// switching revolute drag strategies. Empirically chosen; see the
	// manip package for how it is applied.
	DefaultDegeneracyThreshold = 0.3
	// DefaultSolverTolerance is the anchor-distance below which a connect
	// constraint counts as closed, in model length units.
	DefaultSolverTolerance = 1e-3
	// DefaultSolverIterations is the coordinate-descent sweep budget.
	DefaultSolverIterations = 20
	// DefaultSolverStep is the initial trial step for solver sweeps,
	// in radians or meters depending on the joint.
	DefaultSolverStep = 0.05
)

// Manipulation tunes the drag-to-delta pipeline.
type Manipulation struct {
	// DegeneracyThreshold switches the revolute delta between plane
	// projection and the camera-tangent fallback.
	DegeneracyThreshold float64 `yaml:"degeneracy_threshold"`
}

// Solver tunes the loop-closure solver.
type Solver struct {
	Tolerance  float64 `yaml:"tolerance"`
	Iterations int     `yaml:"iterations"`
	Step       float64 `yaml:"step"`
}

// Settings is the full tunable set.
type Settings struct {
	Manipulation Manipulation `yaml:"manipulation"`
	Solver       Solver       `yaml:"solver"`
}

// Default returns settings with all values at their defaults.
func Default() Settings {
	return Settings{
		Manipulation: Manipulation{
			DegeneracyThreshold: DefaultDegeneracyThreshold,
		},
		Solver: Solver{
			Tolerance:  DefaultSolverTolerance,
			Iterations: DefaultSolverIterations,
			Step:       DefaultSolverStep,
		},
	}
}

// Load reads settings from a YAML file, overlaying the defaults so missing
// keys keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Validate rejects values the pipeline cannot work with.
func (s Settings) Validate() error {
	if s.Solver.Tolerance <= 0 {
		return fmt.Errorf("solver tolerance must be positive, got %g", s.Solver.Tolerance)
	}
	if s.Solver.Iterations <= 0 {
		return fmt.Errorf("solver iterations must be positive, got %d", s.Solver.Iterations)
	}
	if s.Solver.Step <= 0 {
		return fmt.Errorf("solver step must be positive, got %g", s.Solver.Step)
	}
	if s.Manipulation.DegeneracyThreshold < 0 || s.Manipulation.DegeneracyThreshold > 1 {
		return fmt.Errorf("degeneracy threshold must be in [0, 1], got %g", s.Manipulation.DegeneracyThreshold)
	}
	return nil
}
