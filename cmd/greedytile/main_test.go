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

package main

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/agfadergadefrg/greedytile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfigAnalysis(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"--analysis", "--seed", "3", "--size", "12x8"}))
	cfg, err := buildConfig(rootCmd)
	require.NoError(t, err)
	assert.True(t, cfg.Analysis)
	assert.Equal(t, int64(3), cfg.Seed)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestWriteAnimations(t *testing.T) {
	source := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			source.SetNRGBA(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	cfg := greedytile.DefaultConfig()
	cfg.Width, cfg.Height = 6, 6
	cfg.Analysis = true
	result, err := greedytile.Synthesize(source, nil, cfg, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "green.png")
	require.NoError(t, writeAnimations(false, true)(path, result))
	assert.True(t, greedytile.FileExists(greedytile.AnalysisPath(path)))
	assert.False(t, greedytile.FileExists(greedytile.VisualizationPath(path)))

	require.NoError(t, writeAnimations(true, false)(path, result))
	assert.True(t, greedytile.FileExists(greedytile.VisualizationPath(path)))
}
