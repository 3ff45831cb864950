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
)

// SelectionPolicy computes the weights of the candidates at an anchor and
// draws one of them.
//
// The weight of a variant v is the product of its frequency, the balance
// factor of each pixel it would fix and the distance fit of each of those
// pixels. The distance fit is raised to strength(n) = DistanceStrength ·
// ln(n) / ln(V) where n is the number of candidates and V the number of
// variants, so it matters most while many candidates remain.
// All computations are done with log weights.
type SelectionPolicy struct {
	catalog          *Catalog
	canvas           *Canvas
	balance          *ColorBalance
	distances        *DistanceModel
	distanceStrength float64
	logFrequencies   []float64
	logNumVariants   float64
}

// NewSelectionPolicy returns a new policy. distances may be nil, in this case
// the distance fit is ignored.
func NewSelectionPolicy(catalog *Catalog, canvas *Canvas, balance *ColorBalance,
	distances *DistanceModel, distanceStrength float64) *SelectionPolicy {
	logFrequencies := make([]float64, catalog.Len())
	for i, v := range catalog.Variants {
		logFrequencies[i] = math.Log(v.Frequency)
	}
	return &SelectionPolicy{
		catalog:          catalog,
		canvas:           canvas,
		balance:          balance,
		distances:        distances,
		distanceStrength: distanceStrength,
		logFrequencies:   logFrequencies,
		logNumVariants:   math.Log(float64(catalog.Len())),
	}
}

// strength returns the exponent of the distance fit given n candidates.
func (policy *SelectionPolicy) strength(n int) float64 {
	if policy.distances == nil || policy.distanceStrength == 0 || n <= 1 || policy.logNumVariants <= 0 {
		return 0
	}
	return policy.distanceStrength * math.Log(float64(n)) / policy.logNumVariants
}

// LogWeights returns the log weight of each candidate in ids when placed at
// anchor.
func (policy *SelectionPolicy) LogWeights(anchor image.Point, ids []int) []float64 {
	offsets := policy.catalog.Offsets()
	paletteSize := policy.catalog.PaletteSize
	strength := policy.strength(len(ids))

	// footprint pixels that are not fixed yet
	var open []int
	for i, o := range offsets {
		if !policy.canvas.IsFixed(anchor.Add(o)) {
			open = append(open, i)
		}
	}
	balance := make([]float64, paletteSize)
	for c := range balance {
		balance[c] = policy.balance.LogFactor(ColorID(c))
	}
	// distance fits are computed on demand for each (pixel, color)
	var nearest [][]float64
	var fits []float64
	if strength > 0 {
		nearest = make([][]float64, len(open))
		for i, offset := range open {
			nearest[i] = policy.distances.Nearest(policy.canvas, anchor.Add(offsets[offset]))
		}
		fits = make([]float64, len(open)*paletteSize)
		for i := range fits {
			fits[i] = math.NaN()
		}
	}

	res := make([]float64, len(ids))
	for k, id := range ids {
		v := policy.catalog.Variants[id]
		w := policy.logFrequencies[id]
		fit := 0.0
		for i, offset := range open {
			c := v.Pixels[offset]
			w += balance[c]
			if strength > 0 {
				j := i*paletteSize + int(c)
				if math.IsNaN(fits[j]) {
					fits[j] = policy.distances.LogFit(c, nearest[i])
				}
				fit += fits[j]
			}
		}
		res[k] = w + strength*fit
	}
	return res
}

// Choose draws a variant from the candidates of anchor.
// candidates must not be empty.
func (policy *SelectionPolicy) Choose(rng *rand.Rand, anchor image.Point, candidates Bitset) int {
	ids := candidates.Elements()
	if len(ids) == 1 {
		return ids[0]
	}
	return ids[WeightedChoice(rng, policy.LogWeights(anchor, ids))]
}

// WeightedChoice draws an index i with a probability proportional to
// exp(logWeights[i]). Exactly one random number is drawn from rng.
func WeightedChoice(rng *rand.Rand, logWeights []float64) int {
	max := math.Inf(-1)
	for _, w := range logWeights {
		if w > max {
			max = w
		}
	}
	r := rng.Float64()
	if math.IsInf(max, -1) {
		// all weights zero, choose uniformly
		return int(r * float64(len(logWeights)))
	}
	total := 0.0
	for _, w := range logWeights {
		total += math.Exp(w - max)
	}
	r *= total
	cumulative := 0.0
	for i, w := range logWeights {
		cumulative += math.Exp(w - max)
		if r < cumulative {
			return i
		}
	}
	return len(logWeights) - 1
}
