// Copyright 2026 The greedytile Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package greedytile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains all parameters of a synthesis run.
type Config struct {
	// Seed initializes the random number generator, runs with the same seed
	// and inputs produce the same output.
	Seed int64 `yaml:"seed"`
	// MaxIterations is the number of placements (and recoveries) after which
	// the run stops.
	MaxIterations int `yaml:"max_iterations"`
	// Width and Height bound the output. 0 means unbounded, if only one of
	// them is set the output is square.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Rotate and Mirror enable the symmetry transforms of source tiles.
	Rotate bool `yaml:"rotate"`
	Mirror bool `yaml:"mirror"`
	// BalanceStrength controls how strongly the color balance is corrected.
	BalanceStrength float64 `yaml:"balance_strength"`
	// DistanceStrength is the weight of the distance fit.
	DistanceStrength float64 `yaml:"distance_strength"`
	// InfluenceDistance is the maximal distance considered by the distance
	// model.
	InfluenceDistance int `yaml:"influence_distance"`
	// DistanceMetric is the name of a registered point metric.
	DistanceMetric string `yaml:"distance_metric"`
	// RecoveryMemory is the number of iterations after which the failures of
	// a region are forgotten.
	RecoveryMemory int `yaml:"recovery_memory"`
	// NumRoutines is the number of go routines used to precompute the
	// compatibility index.
	NumRoutines int `yaml:"routines"`
	// Analysis enables recording an AnalysisEvent for every anchor around a
	// placement or erasure.
	Analysis bool `yaml:"analysis"`
}

// DefaultConfig returns the default configuration: seed 42, 1000 iterations
// and an unbounded canvas.
func DefaultConfig() Config {
	return Config{
		Seed:              42,
		MaxIterations:     1000,
		BalanceStrength:   2.0,
		DistanceStrength:  1.0,
		InfluenceDistance: DefaultInfluenceDistance,
		DistanceMetric:    "euclid",
		RecoveryMemory:    64,
		NumRoutines:       4,
	}
}

// Dimensions returns the size of the output, a value of 0 means unbounded.
// If only one dimension is given the other one is set to the same value.
func (cfg Config) Dimensions() (int, int) {
	width, height := cfg.Width, cfg.Height
	switch {
	case width > 0 && height <= 0:
		height = width
	case height > 0 && width <= 0:
		width = height
	}
	return width, height
}

// Validate checks the configuration. All errors wrap ErrInvalidConfig.
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxIterations < 0:
		return fmt.Errorf("%w: max_iterations must be ≥ 0, got %d", ErrInvalidConfig, cfg.MaxIterations)
	case cfg.Width < 0 || cfg.Height < 0:
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	case cfg.BalanceStrength < 0:
		return fmt.Errorf("%w: balance_strength must be ≥ 0, got %f", ErrInvalidConfig, cfg.BalanceStrength)
	case cfg.DistanceStrength < 0:
		return fmt.Errorf("%w: distance_strength must be ≥ 0, got %f", ErrInvalidConfig, cfg.DistanceStrength)
	case cfg.InfluenceDistance < 1:
		return fmt.Errorf("%w: influence_distance must be ≥ 1, got %d", ErrInvalidConfig, cfg.InfluenceDistance)
	case cfg.RecoveryMemory < 1:
		return fmt.Errorf("%w: recovery_memory must be ≥ 1, got %d", ErrInvalidConfig, cfg.RecoveryMemory)
	}
	if _, ok := GetPointMetric(cfg.DistanceMetric); !ok {
		return fmt.Errorf("%w: unknown distance metric \"%s\"", ErrInvalidConfig, cfg.DistanceMetric)
	}
	width, height := cfg.Dimensions()
	if width > 0 && (width < TileSize || height < TileSize) {
		return fmt.Errorf("%w: output %dx%d is smaller than a tile", ErrInvalidConfig, width, height)
	}
	return nil
}

// LoadConfig reads a yaml file. Keys not present in the file keep their
// default value.
func LoadConfig(path string) (Config, error) {
	res := DefaultConfig()
	content, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	if err := yaml.Unmarshal(content, &res); err != nil {
		return res, fmt.Errorf("%w: can't parse %s: %v", ErrInvalidConfig, path, err)
	}
	return res, res.Validate()
}

// WriteConfig writes the configuration as yaml.
func WriteConfig(path string, cfg Config) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}
