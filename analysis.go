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
	"image/color"
	"math"
)

// AnalysisEvent describes an anchor after a placement or an erasure changed
// its neighbourhood.
type AnalysisEvent struct {
	Position  image.Point `json:"position"`
	Iteration int         `json:"iteration"`
	// Entropy is the Shannon entropy (in nats) of the candidates of the
	// anchor, each candidate weighted by its frequency.
	Entropy float64 `json:"entropy"`
	// Feasibility is the fraction of all variants that may still be placed
	// at the anchor.
	Feasibility float64 `json:"feasibility"`
	// Color is the color of the pixel if it is fixed, otherwise the
	// frequency weighted average of the center colors of all candidates.
	// Black if there is no candidate.
	Color color.NRGBA `json:"color"`
}

// recordAnalysis records an event for each anchor in rect, if enabled.
func (s *Synthesizer) recordAnalysis(rect image.Rectangle) {
	if !s.cfg.Analysis {
		return
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := image.Pt(x, y)
			if validAnchor(s.canvas, s.catalog, p) {
				s.analysis = append(s.analysis, s.analyze(p))
			}
		}
	}
}

// analyze computes the event of anchor p. Candidate sets that are not cached
// are computed without being stored.
func (s *Synthesizer) analyze(p image.Point) AnalysisEvent {
	var bits Bitset
	if set, has := s.candidates.cached(p); has {
		bits = set.bits
	} else {
		bits = s.candidates.compute(p)
	}
	ids := bits.Elements()
	center := s.catalog.OffsetIndex(0, 0)
	var total, r, g, b, a float64
	for _, id := range ids {
		v := s.catalog.Variants[id]
		c := s.palette[v.Pixels[center]]
		total += v.Frequency
		r += v.Frequency * float64(c.R)
		g += v.Frequency * float64(c.G)
		b += v.Frequency * float64(c.B)
		a += v.Frequency * float64(c.A)
	}
	entropy := 0.0
	for _, id := range ids {
		if q := s.catalog.Variants[id].Frequency / total; q > 0 {
			entropy -= q * math.Log(q)
		}
	}
	res := AnalysisEvent{
		Position:    p,
		Iteration:   s.iteration,
		Entropy:     math.Max(entropy, 0),
		Feasibility: float64(len(ids)) / float64(s.catalog.Len()),
		Color:       color.NRGBA{A: 255},
	}
	switch id := s.canvas.At(p); {
	case id != NoColor:
		res.Color = s.palette[id].NRGBA()
	case total > 0:
		res.Color = color.NRGBA{
			R: uint8(math.Round(r / total)),
			G: uint8(math.Round(g / total)),
			B: uint8(math.Round(b / total)),
			A: uint8(math.Round(a / total)),
		}
	}
	return res
}

// Analysis returns all recorded analysis events in the order in which they
// were recorded.
func (s *Synthesizer) Analysis() []AnalysisEvent {
	return s.analysis
}
