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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedChoice(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	weights := []float64{math.Inf(-1), 0, math.Inf(-1)}
	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, WeightedChoice(rng, weights))
	}

	allZero := []float64{math.Inf(-1), math.Inf(-1)}
	for i := 0; i < 20; i++ {
		k := WeightedChoice(rng, allZero)
		assert.True(t, k == 0 || k == 1)
	}

	weights = []float64{math.Log(1), math.Log(3)}
	n, first := 20000, 0
	for i := 0; i < n; i++ {
		if WeightedChoice(rng, weights) == 0 {
			first++
		}
	}
	assert.InDelta(t, 0.25, float64(first)/float64(n), 0.02)
}

func TestWeightedChoiceDeterministic(t *testing.T) {
	weights := []float64{0, 1, 2, -1}
	draw := func(seed int64) []int {
		rng := rand.New(rand.NewSource(seed))
		res := make([]int, 50)
		for i := range res {
			res[i] = WeightedChoice(rng, weights)
		}
		return res
	}
	assert.Equal(t, draw(42), draw(42))
	assert.NotEqual(t, draw(42), draw(43))
}

func TestSelectionPolicyEmptyCanvas(t *testing.T) {
	grid, palette := gridFromRows(stripeSource...)
	catalog, err := NewCatalog(grid, len(palette), TileSize, true, true)
	require.NoError(t, err)
	canvas := NewCanvas(0, 0)
	balance := NewColorBalance(GenHistogram(grid, len(palette)).Normalize(), 2)
	distances := NewDistanceModel(grid, len(palette), DefaultInfluenceDistance, Euclidean)
	policy := NewSelectionPolicy(catalog, canvas, balance, distances, 1)

	ids := FullBitset(catalog.Len()).Elements()
	weights := policy.LogWeights(image.Pt(0, 0), ids)
	// nothing fixed, only the frequencies matter
	for k, id := range ids {
		assert.InDelta(t, math.Log(catalog.Variants[id].Frequency), weights[k], 1e-9)
	}
	assert.Equal(t, 0.0, policy.strength(1))
	assert.InDelta(t, 1.0, policy.strength(catalog.Len()), 1e-9)
}

func TestSelectionPolicyBalance(t *testing.T) {
	grid, palette := gridFromRows(stripeSource...)
	catalog, err := NewCatalog(grid, len(palette), TileSize, false, false)
	require.NoError(t, err)
	canvas := NewCanvas(0, 0)
	balance := NewColorBalance(&Histogram{[]float64{0.5, 0.5}}, 2)
	policy := NewSelectionPolicy(catalog, canvas, balance, nil, 0)

	// a lot of red is already fixed far away
	for x := 0; x < 20; x++ {
		_, err := canvas.Fix(image.Pt(100+x, 100), 0)
		require.NoError(t, err)
		balance.Add(0)
	}
	ids := FullBitset(catalog.Len()).Elements()
	weights := policy.LogWeights(image.Pt(0, 0), ids)
	for k, id := range ids {
		reds := catalog.Variants[id].Counts[0]
		expected := math.Log(catalog.Variants[id].Frequency) +
			float64(reds)*balance.LogFactor(0) +
			float64(TileSize*TileSize-reds)*balance.LogFactor(1)
		assert.InDelta(t, expected, weights[k], 1e-9)
	}

	// the all red variant is the least likely one
	allRed := -1
	for k, id := range ids {
		if catalog.Variants[id].Counts[0] == TileSize*TileSize {
			allRed = k
		}
	}
	require.NotEqual(t, -1, allRed)
	for k := range ids {
		if k != allRed {
			assert.True(t, weights[k] > weights[allRed])
		}
	}

	rng := rand.New(rand.NewSource(3))
	single := NewBitset(catalog.Len())
	single.Set(ids[1])
	assert.Equal(t, ids[1], policy.Choose(rng, image.Pt(0, 0), single))
}
