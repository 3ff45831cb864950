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

// Package anim renders the placement log of a synthesis run as an animated
// GIF. Each frame shows the canvas after a group of placements and erasures,
// erased pixels are highlighted for one frame. The analysis events of a run
// are rendered as a second animation, see RenderAnalysis.
package anim

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"

	"github.com/agfadergadefrg/greedytile"
	colorful "github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultFrameDelay is the time in milliseconds of a single event.
	DefaultFrameDelay = 5
	// MinFrameDelay is the smallest delay in milliseconds most viewers
	// respect, events are grouped into frames so that no frame is shorter.
	MinFrameDelay = 50
	// maxPaletteSize is the number of colors a GIF frame can have.
	maxPaletteSize = 256
)

// Options controls the animation.
type Options struct {
	// Scale is the size of a canvas pixel in the animation.
	Scale int
	// FrameDelay is the time in milliseconds of a single event.
	FrameDelay int
	// MinFrameDelay is the minimal time in milliseconds a frame is shown.
	MinFrameDelay int
	// MaxFrames limits the number of frames, 0 means no limit.
	MaxFrames int
	// FinalDelay is the time in milliseconds the final canvas is shown.
	FinalDelay int
	// Highlight enables highlighting erased pixels.
	Highlight bool
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Scale:         4,
		FrameDelay:    DefaultFrameDelay,
		MinFrameDelay: MinFrameDelay,
		MaxFrames:     2000,
		FinalDelay:    2000,
		Highlight:     true,
	}
}

// FrameGrouping returns how many events are shown in a single frame and the
// delay of each frame in 1/100 seconds.
func FrameGrouping(numEvents int, opts Options) (int, int) {
	delay := greedytile.IntMax(opts.FrameDelay, 1)
	perFrame := 1
	if delay < opts.MinFrameDelay {
		perFrame = (opts.MinFrameDelay + delay - 1) / delay
	}
	if opts.MaxFrames > 0 && numEvents > 0 {
		if needed := (numEvents + opts.MaxFrames - 1) / opts.MaxFrames; needed > perFrame {
			perFrame = needed
		}
	}
	return perFrame, greedytile.IntMax((perFrame*delay+5)/10, 1)
}

// Background returns the background color of the animation: the average of
// the palette in Lab space, made a bit darker so that tiles stand out.
func Background(palette greedytile.Palette) color.NRGBA {
	if len(palette) == 0 {
		return color.NRGBA{A: 255}
	}
	var l, a, b float64
	for _, c := range palette {
		cf, _ := colorful.MakeColor(opaque(c))
		cl, ca, cb := cf.Lab()
		l += cl
		a += ca
		b += cb
	}
	n := float64(len(palette))
	avg := colorful.Lab(l/n, a/n, b/n).Clamped()
	res := avg.BlendLab(colorful.Color{}, 0.5).Clamped()
	return toNRGBA(res)
}

// Highlight returns the color of erased pixels.
func Highlight(background color.NRGBA) color.NRGBA {
	bg, _ := colorful.MakeColor(background)
	red := colorful.Color{R: 1}
	return toNRGBA(bg.BlendLab(red, 0.7).Clamped())
}

func opaque(c greedytile.Color) color.NRGBA {
	res := c.NRGBA()
	res.A = 255
	return res
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// framePalette returns the palette of all frames with at most limit colors.
// If there are too many colors the web safe palette is used.
func framePalette(palette greedytile.Palette, limit int, extra ...color.Color) color.Palette {
	if len(palette)+len(extra) > limit {
		res := make(color.Palette, 0, maxPaletteSize)
		res = append(res, extra...)
		for r := 0; r < 6; r++ {
			for g := 0; g < 6; g++ {
				for b := 0; b < 6; b++ {
					res = append(res, color.NRGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255})
				}
			}
		}
		return res
	}
	res := make(color.Palette, 0, len(palette)+len(extra))
	res = append(res, extra...)
	for _, c := range palette {
		res = append(res, c.NRGBA())
	}
	return res
}

// eventBounds returns the canvas area touched by any placement.
func eventBounds(placements []greedytile.Placement) image.Rectangle {
	r := greedytile.TileSize / 2
	var res image.Rectangle
	for i, p := range placements {
		rect := image.Rect(p.Position.X-r, p.Position.Y-r, p.Position.X+r+1, p.Position.Y+r+1)
		if i == 0 {
			res = rect
		} else {
			res = res.Union(rect)
		}
	}
	return res
}

// renderer replays the events of a run.
type renderer struct {
	composer    *greedytile.Composer
	origin      image.Point
	working     *image.NRGBA
	palette     color.Palette
	background  color.NRGBA
	highlight   color.NRGBA
	fixed       map[image.Point]bool
	highlighted []image.Point
	opts        Options
}

func (r *renderer) apply(e greedytile.Event) {
	switch e.Kind {
	case greedytile.EventPlacement:
		for _, q := range e.Placement.Fixed {
			r.fixed[q] = true
		}
		r.composer.DrawPlacement(r.working, r.origin, *e.Placement)
	case greedytile.EventErasure:
		for _, q := range e.Erasure.Pixels {
			delete(r.fixed, q)
		}
		col := r.background
		if r.opts.Highlight {
			col = r.highlight
			r.highlighted = append(r.highlighted, e.Erasure.Pixels...)
		}
		r.composer.FillPixels(r.working, r.origin, e.Erasure.Pixels, col)
	}
}

// clearHighlights fills highlighted pixels that have not been fixed again
// with the background.
func (r *renderer) clearHighlights() {
	var rest []image.Point
	for _, q := range r.highlighted {
		if !r.fixed[q] {
			rest = append(rest, q)
		}
	}
	r.composer.FillPixels(r.working, r.origin, rest, r.background)
	r.highlighted = r.highlighted[:0]
}

func (r *renderer) frame() *image.Paletted {
	bounds := r.working.Bounds()
	res := image.NewPaletted(bounds, r.palette)
	draw.Draw(res, bounds, r.working, bounds.Min, draw.Src)
	return res
}

// Render creates the animation of a result.
func Render(result *greedytile.Result, opts Options) (*gif.GIF, error) {
	if len(result.Placements) == 0 {
		return nil, fmt.Errorf("Can't render animation: no placements")
	}
	background := Background(result.Palette)
	highlight := Highlight(background)
	composer := greedytile.NewComposer(result.Palette, opts.Scale)
	bounds := eventBounds(result.Placements)
	working := image.NewNRGBA(composer.Area(bounds, bounds.Min))
	draw.Draw(working, working.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	r := &renderer{
		composer:   composer,
		origin:     bounds.Min,
		working:    working,
		palette:    framePalette(result.Palette, maxPaletteSize, background, highlight),
		background: background,
		highlight:  highlight,
		fixed:      make(map[image.Point]bool),
		opts:       opts,
	}
	events := greedytile.Events(result.Placements, result.Erasures)
	perFrame, delay := FrameGrouping(len(events), opts)
	res := &gif.GIF{}
	for start := 0; start < len(events); start += perFrame {
		end := greedytile.IntMin(start+perFrame, len(events))
		for _, e := range events[start:end] {
			r.apply(e)
		}
		res.Image = append(res.Image, r.frame())
		res.Delay = append(res.Delay, delay)
		r.clearHighlights()
	}
	// final frame without highlights
	res.Image = append(res.Image, r.frame())
	res.Delay = append(res.Delay, greedytile.IntMax(opts.FinalDelay/10, 1))
	log.WithFields(log.Fields{
		"events":    len(events),
		"frames":    len(res.Image),
		"per_frame": perFrame,
	}).Debug("Rendered animation")
	return res, nil
}

// Write renders the animation and writes it to w.
func Write(w io.Writer, result *greedytile.Result, opts Options) error {
	g, err := Render(result, opts)
	if err != nil {
		return err
	}
	return gif.EncodeAll(w, g)
}

// WriteFile renders the animation and writes it to the file at path.
func WriteFile(path string, result *greedytile.Result, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	writeErr := Write(f, result, opts)
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	return writeErr
}
