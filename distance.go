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
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultInfluenceDistance is the maximal distance in which pixels are
// considered by the distance model.
const DefaultInfluenceDistance = 6

// MinSigma is the smallest standard deviation used for distance likelihoods.
const MinSigma = 0.5

// PairStats summarizes the distances from pixels of one color to the nearest
// pixel of another color.
type PairStats struct {
	Mean    float64
	StdDev  float64
	Samples int
}

// DistanceModel describes for each ordered pair of colors (a, b) how far the
// nearest pixel of color b usually is from a pixel of color a in the source.
//
// The model is immutable once created.
type DistanceModel struct {
	paletteSize int
	influence   int
	stats       []PairStats
	// offsets within the influence distance, sorted by distance
	offsets []image.Point
	dists   []float64
}

func influenceWindow(influence int, metric PointMetric) ([]image.Point, []float64) {
	var offsets []image.Point
	for dy := -influence; dy <= influence; dy++ {
		for dx := -influence; dx <= influence; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if metric(dx, dy) <= float64(influence) {
				offsets = append(offsets, image.Pt(dx, dy))
			}
		}
	}
	sort.SliceStable(offsets, func(i, j int) bool {
		return metric(offsets[i].X, offsets[i].Y) < metric(offsets[j].X, offsets[j].Y)
	})
	dists := make([]float64, len(offsets))
	for i, o := range offsets {
		dists[i] = metric(o.X, o.Y)
	}
	return offsets, dists
}

// NewDistanceModel computes the model for a source grid. influence is the
// maximal distance that is considered, metric is used to measure distances.
func NewDistanceModel(grid *ColorGrid, paletteSize, influence int, metric PointMetric) *DistanceModel {
	if metric == nil {
		metric = Euclidean
	}
	offsets, dists := influenceWindow(influence, metric)
	samples := make([][]float64, paletteSize*paletteSize)
	found := make([]bool, paletteSize)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			a := grid.At(x, y)
			for i := range found {
				found[i] = false
			}
			for i, o := range offsets {
				qx, qy := x+o.X, y+o.Y
				if qx < 0 || qy < 0 || qx >= grid.Width || qy >= grid.Height {
					continue
				}
				b := grid.At(qx, qy)
				if found[b] {
					continue
				}
				found[b] = true
				pair := int(a)*paletteSize + int(b)
				samples[pair] = append(samples[pair], dists[i])
			}
		}
	}
	stats := make([]PairStats, len(samples))
	for i, s := range samples {
		if len(s) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(s, nil)
		if math.IsNaN(std) || std < MinSigma {
			std = MinSigma
		}
		stats[i] = PairStats{Mean: mean, StdDev: std, Samples: len(s)}
	}
	return &DistanceModel{
		paletteSize: paletteSize,
		influence:   influence,
		stats:       stats,
		offsets:     offsets,
		dists:       dists,
	}
}

// Stats returns the statistics for the pair (a, b).
func (m *DistanceModel) Stats(a, b ColorID) PairStats {
	return m.stats[int(a)*m.paletteSize+int(b)]
}

// Nearest returns for each color the distance from p to the nearest fixed
// pixel of that color, p itself is not considered. Colors without a fixed
// pixel within the influence distance get +Inf.
func (m *DistanceModel) Nearest(canvas *Canvas, p image.Point) []float64 {
	res := make([]float64, m.paletteSize)
	for i := range res {
		res[i] = math.Inf(1)
	}
	missing := m.paletteSize
	for i, o := range m.offsets {
		if missing == 0 {
			break
		}
		b := canvas.At(p.Add(o))
		if b == NoColor || !math.IsInf(res[b], 1) {
			continue
		}
		res[b] = m.dists[i]
		missing--
	}
	return res
}

// LogFit returns the log of the distance fit of color a given the nearest
// distances computed by Nearest. For each color b the likelihood of the
// observed distance is normalized by the likelihood of the mean, so each
// factor is in (0, 1]. Pairs without statistics contribute nothing.
func (m *DistanceModel) LogFit(a ColorID, nearest []float64) float64 {
	res := 0.0
	for b, d := range nearest {
		if math.IsInf(d, 1) {
			continue
		}
		s := m.stats[int(a)*m.paletteSize+b]
		if s.Samples == 0 {
			continue
		}
		dist := distuv.Normal{Mu: s.Mean, Sigma: s.StdDev}
		res += dist.LogProb(d) - dist.LogProb(s.Mean)
	}
	return res
}

// Fit returns a score in (0, 1] describing how well color a at p fits the
// distances to the pixels already fixed on the canvas.
func (m *DistanceModel) Fit(canvas *Canvas, p image.Point, a ColorID) float64 {
	return math.Exp(m.LogFit(a, m.Nearest(canvas, p)))
}
