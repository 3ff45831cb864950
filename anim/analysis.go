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

package anim

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"

	"github.com/agfadergadefrg/greedytile"
	log "github.com/sirupsen/logrus"
)

const (
	// grayLevels is the number of gray colors used for entropy and
	// feasibility.
	grayLevels = 32
	// panelGap is the space between two panels in canvas pixels.
	panelGap = 2
)

var separator = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// Panels of the analysis animation.
const (
	panelColor = iota
	panelPlacements
	panelEntropy
	panelFeasibility
	numPanels
)

func grayRamp() color.Palette {
	res := make(color.Palette, grayLevels)
	for i := range res {
		v := uint8(i * 255 / (grayLevels - 1))
		res[i] = color.NRGBA{R: v, G: v, B: v, A: 255}
	}
	return res
}

func gray(v float64) color.NRGBA {
	g := uint8(math.Round(255 * math.Max(0, math.Min(v, 1))))
	return color.NRGBA{R: g, G: g, B: g, A: 255}
}

// iterationSpan returns the first and last iteration of the events.
func iterationSpan(events []greedytile.AnalysisEvent) (int, int) {
	first, last := events[0].Iteration, events[0].Iteration
	for _, e := range events[1:] {
		first = greedytile.IntMin(first, e.Iteration)
		last = greedytile.IntMax(last, e.Iteration)
	}
	return first, last
}

// analysisBounds returns the canvas area of all placements and analysed
// anchors.
func analysisBounds(result *greedytile.Result) image.Rectangle {
	r := greedytile.TileSize / 2
	res := eventBounds(result.Placements)
	for i, e := range result.Analysis {
		rect := image.Rect(e.Position.X-r, e.Position.Y-r, e.Position.X+r+1, e.Position.Y+r+1)
		if i == 0 && len(result.Placements) == 0 {
			res = rect
		} else {
			res = res.Union(rect)
		}
	}
	return res
}

// analysisRenderer draws the four panels of the analysis animation: the
// weighted color of each anchor, the placements, the entropy and the
// feasibility. Each panel has its own origin so that the composer draws it
// at the right place.
type analysisRenderer struct {
	*renderer
	origins    [numPanels]image.Point
	maxEntropy float64
}

func (r *analysisRenderer) analyse(e greedytile.AnalysisEvent) {
	pixel := []image.Point{e.Position}
	r.composer.FillPixels(r.working, r.origins[panelColor], pixel, e.Color)
	r.composer.FillPixels(r.working, r.origins[panelEntropy], pixel, gray(e.Entropy/r.maxEntropy))
	r.composer.FillPixels(r.working, r.origins[panelFeasibility], pixel, gray(e.Feasibility))
}

func (r *analysisRenderer) frame() *image.Paletted {
	bounds := r.working.Bounds()
	res := image.NewPaletted(bounds, r.palette)
	draw.FloydSteinberg.Draw(res, bounds, r.working, bounds.Min)
	return res
}

// RenderAnalysis creates the analysis animation of a result. The result must
// contain analysis events, see greedytile.Config.Analysis.
//
// The animation shows four panels: the weighted color (top left), the
// placements (top right), the entropy (bottom left) and the feasibility
// (bottom right) of all anchors. Frames group iterations the same way Render
// groups events.
func RenderAnalysis(result *greedytile.Result, opts Options) (*gif.GIF, error) {
	if len(result.Analysis) == 0 {
		return nil, fmt.Errorf("Can't render analysis: no analysis events")
	}
	background := Background(result.Palette)
	highlight := Highlight(background)
	composer := greedytile.NewComposer(result.Palette, opts.Scale)
	bounds := analysisBounds(result)
	offsets := [numPanels]image.Point{
		panelColor:       {},
		panelPlacements:  {bounds.Dx() + panelGap, 0},
		panelEntropy:     {0, bounds.Dy() + panelGap},
		panelFeasibility: {bounds.Dx() + panelGap, bounds.Dy() + panelGap},
	}
	var origins [numPanels]image.Point
	area := image.Rectangle{}
	for i, o := range offsets {
		origins[i] = bounds.Min.Sub(o)
		area = area.Union(composer.Area(bounds, origins[i]))
	}
	working := image.NewNRGBA(area)
	draw.Draw(working, area, image.NewUniform(separator), image.Point{}, draw.Src)
	for i := range origins {
		fill := color.NRGBA{A: 255}
		if i == panelColor || i == panelPlacements {
			fill = background
		}
		draw.Draw(working, composer.Area(bounds, origins[i]), image.NewUniform(fill), image.Point{}, draw.Src)
	}

	palette := grayRamp()
	palette = append(palette, framePalette(result.Palette, maxPaletteSize-len(palette), separator, background, highlight)...)
	maxEntropy := 1.0
	if result.Stats.Variants > 1 {
		maxEntropy = math.Log(float64(result.Stats.Variants))
	}
	r := &analysisRenderer{
		renderer: &renderer{
			composer:   composer,
			origin:     origins[panelPlacements],
			working:    working,
			palette:    palette,
			background: background,
			highlight:  highlight,
			fixed:      make(map[image.Point]bool),
			opts:       opts,
		},
		origins:    origins,
		maxEntropy: maxEntropy,
	}

	events := greedytile.Events(result.Placements, result.Erasures)
	first, last := iterationSpan(result.Analysis)
	perFrame, delay := FrameGrouping(last-first+1, opts)
	res := &gif.GIF{}
	nextAnalysis, nextEvent := 0, 0
	for start := first; start <= last; start += perFrame {
		end := start + perFrame - 1
		for nextEvent < len(events) && events[nextEvent].Iteration() <= end {
			r.apply(events[nextEvent])
			nextEvent++
		}
		for nextAnalysis < len(result.Analysis) && result.Analysis[nextAnalysis].Iteration <= end {
			r.analyse(result.Analysis[nextAnalysis])
			nextAnalysis++
		}
		res.Image = append(res.Image, r.frame())
		res.Delay = append(res.Delay, delay)
		r.clearHighlights()
	}
	for _, e := range events[nextEvent:] {
		r.apply(e)
	}
	r.clearHighlights()
	res.Image = append(res.Image, r.frame())
	res.Delay = append(res.Delay, greedytile.IntMax(opts.FinalDelay/10, 1))
	log.WithFields(log.Fields{
		"analysis_events": len(result.Analysis),
		"iterations":      last - first + 1,
		"frames":          len(res.Image),
	}).Debug("Rendered analysis")
	return res, nil
}

// WriteAnalysis renders the analysis animation and writes it to w.
func WriteAnalysis(w io.Writer, result *greedytile.Result, opts Options) error {
	g, err := RenderAnalysis(result, opts)
	if err != nil {
		return err
	}
	return gif.EncodeAll(w, g)
}

// WriteAnalysisFile renders the analysis animation and writes it to the file
// at path.
func WriteAnalysisFile(path string, result *greedytile.Result, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	writeErr := WriteAnalysis(f, result, opts)
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	return writeErr
}
