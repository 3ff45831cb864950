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
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointMetrics(t *testing.T) {
	assert.InDelta(t, 5.0, Euclidean(3, -4), 1e-9)
	assert.Equal(t, 4.0, Chebyshev(3, -4))
	assert.Equal(t, 7.0, Manhattan(3, -4))
	for _, name := range GetPointMetricNames() {
		m, ok := GetPointMetric(name)
		assert.True(t, ok)
		assert.Equal(t, 0.0, m(0, 0))
	}
	_, ok := GetPointMetric("EUCLID")
	assert.True(t, ok)
	_, ok = GetPointMetric("foo")
	assert.False(t, ok)
	assert.False(t, RegisterPointMetric("euclid", Manhattan))
}

func TestDistanceModelStats(t *testing.T) {
	grid, palette := gridFromRows(stripeSource...)
	model := NewDistanceModel(grid, len(palette), DefaultInfluenceDistance, Euclidean)
	red, blue := ColorID(0), ColorID(1)

	rb := model.Stats(red, blue)
	assert.Equal(t, 9, rb.Samples)
	assert.InDelta(t, 2.0, rb.Mean, 1e-9)
	assert.True(t, rb.StdDev >= MinSigma)

	// the nearest other red pixel is always a direct neighbour
	rr := model.Stats(red, red)
	assert.Equal(t, 9, rr.Samples)
	assert.InDelta(t, 1.0, rr.Mean, 1e-9)
	assert.Equal(t, MinSigma, rr.StdDev)

	br := model.Stats(blue, red)
	assert.Equal(t, 6, br.Samples)
	assert.InDelta(t, 1.5, br.Mean, 1e-9)
}

func TestDistanceModelInfluence(t *testing.T) {
	grid, palette := gridFromRows("RRRRRRRB", "RRRRRRRB", "RRRRRRRB")
	model := NewDistanceModel(grid, len(palette), 2, Chebyshev)
	// only the red pixels in the last two columns see a blue one
	assert.Equal(t, 6, model.Stats(0, 1).Samples)
}

func TestDistanceFit(t *testing.T) {
	grid, palette := gridFromRows(stripeSource...)
	model := NewDistanceModel(grid, len(palette), DefaultInfluenceDistance, Euclidean)
	canvas := NewCanvas(0, 0)
	p := image.Pt(0, 0)
	// nothing fixed, no information
	assert.Equal(t, 1.0, model.Fit(canvas, p, 0))

	_, _ = canvas.Fix(image.Pt(2, 0), 1)
	nearest := model.Nearest(canvas, p)
	assert.InDelta(t, 2.0, nearest[1], 1e-9)
	assert.True(t, math.IsInf(nearest[0], 1))
	// blue at exactly the mean distance
	assert.InDelta(t, 1.0, model.Fit(canvas, p, 0), 1e-9)

	far := NewCanvas(0, 0)
	_, _ = far.Fix(image.Pt(5, 0), 1)
	fit := model.Fit(far, p, 0)
	assert.True(t, fit > 0 && fit < 1, "fit = %f", fit)

	// the pixel itself is never considered
	_, _ = canvas.Fix(p, 1)
	assert.InDelta(t, 2.0, model.Nearest(canvas, p)[1], 1e-9)
}
