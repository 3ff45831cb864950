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
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ColorBalance keeps track of how many pixels of each color are fixed and
// compares this to the proportions of the source image.
//
// Colors that are under-represented compared to the source get a factor > 1,
// over-represented colors a factor < 1.
type ColorBalance struct {
	proportions []float64
	fixed       []int
	total       int
	strength    float64
}

// NewColorBalance returns a balance with no fixed pixels. proportions must be
// a normalized histogram of the source. strength controls how strongly
// deviations are corrected, 0 disables the correction.
func NewColorBalance(proportions *Histogram, strength float64) *ColorBalance {
	return &ColorBalance{
		proportions: proportions.Entries,
		fixed:       make([]int, len(proportions.Entries)),
		strength:    strength,
	}
}

// Add records a newly fixed pixel.
func (b *ColorBalance) Add(c ColorID) {
	b.fixed[c]++
	b.total++
}

// Remove records a pixel that is no longer fixed.
func (b *ColorBalance) Remove(c ColorID) {
	b.fixed[c]--
	b.total--
}

// Count returns the number of fixed pixels of color c.
func (b *ColorBalance) Count(c ColorID) int {
	return b.fixed[c]
}

// Total returns the number of fixed pixels.
func (b *ColorBalance) Total() int {
	return b.total
}

// ZScore returns the continuity corrected z-score of the number of fixed
// pixels of color c under a binomial model with the source proportion.
// It returns 0 if there is no information yet.
func (b *ColorBalance) ZScore(c ColorID) float64 {
	p := b.proportions[c]
	n := float64(b.total)
	if b.total == 0 || p <= 0 || p >= 1 {
		return 0
	}
	diff := float64(b.fixed[c]) - n*p
	switch {
	case diff > 0.5:
		diff -= 0.5
	case diff < -0.5:
		diff += 0.5
	default:
		diff = 0
	}
	return diff / math.Sqrt(n*p*(1-p))
}

// LogFactor returns the log of the balance factor for color c, that is
// -strength · (Φ(z) - 0.5) · 2.
func (b *ColorBalance) LogFactor(c ColorID) float64 {
	if b.strength == 0 {
		return 0
	}
	z := b.ZScore(c)
	return -b.strength * (distuv.UnitNormal.CDF(z) - 0.5) * 2
}

// Factor returns the balance factor for color c.
func (b *ColorBalance) Factor(c ColorID) float64 {
	return math.Exp(b.LogFactor(c))
}
