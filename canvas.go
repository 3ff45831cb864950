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
	"image"
	"image/color"
	"sort"
)

// pixelStore stores the fixed pixels of a canvas.
type pixelStore interface {
	get(p image.Point) ColorID
	set(p image.Point, c ColorID)
	del(p image.Point)
	len() int
	points() []image.Point
}

// sparseStore is used for unbounded canvases.
type sparseStore map[image.Point]ColorID

func (s sparseStore) get(p image.Point) ColorID {
	if c, has := s[p]; has {
		return c
	}
	return NoColor
}

func (s sparseStore) set(p image.Point, c ColorID) {
	s[p] = c
}

func (s sparseStore) del(p image.Point) {
	delete(s, p)
}

func (s sparseStore) len() int {
	return len(s)
}

func (s sparseStore) points() []image.Point {
	res := make([]image.Point, 0, len(s))
	for p := range s {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		return pointLess(res[i], res[j])
	})
	return res
}

// denseStore is used when the size of the output is known.
type denseStore struct {
	grid *ColorGrid
	n    int
}

func (s *denseStore) contains(p image.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.grid.Width && p.Y < s.grid.Height
}

func (s *denseStore) get(p image.Point) ColorID {
	if !s.contains(p) {
		return NoColor
	}
	return s.grid.At(p.X, p.Y)
}

func (s *denseStore) set(p image.Point, c ColorID) {
	if s.grid.At(p.X, p.Y) == NoColor {
		s.n++
	}
	s.grid.Set(p.X, p.Y, c)
}

func (s *denseStore) del(p image.Point) {
	if s.contains(p) && s.grid.At(p.X, p.Y) != NoColor {
		s.n--
		s.grid.Set(p.X, p.Y, NoColor)
	}
}

func (s *denseStore) len() int {
	return s.n
}

func (s *denseStore) points() []image.Point {
	res := make([]image.Point, 0, s.n)
	for y := 0; y < s.grid.Height; y++ {
		for x := 0; x < s.grid.Width; x++ {
			if s.grid.At(x, y) != NoColor {
				res = append(res, image.Pt(x, y))
			}
		}
	}
	return res
}

// pointLess orders points row by row.
func pointLess(a, b image.Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// Canvas is the output of a synthesis: a set of fixed pixels. A canvas is
// either unbounded (any position may be fixed) or bounded to the area
// [0, width) × [0, height).
type Canvas struct {
	store   pixelStore
	bounded bool
	area    image.Rectangle
}

// NewCanvas returns an empty canvas. If width and height are both > 0 the
// canvas is bounded, otherwise it is unbounded.
func NewCanvas(width, height int) *Canvas {
	if width > 0 && height > 0 {
		return &Canvas{
			store:   &denseStore{grid: NewColorGrid(width, height)},
			bounded: true,
			area:    image.Rect(0, 0, width, height),
		}
	}
	return &Canvas{store: make(sparseStore)}
}

// Bounded reports whether the canvas has a fixed size.
func (c *Canvas) Bounded() bool {
	return c.bounded
}

// Area returns the configured area of a bounded canvas and the empty
// rectangle for unbounded canvases.
func (c *Canvas) Area() image.Rectangle {
	return c.area
}

// Contains reports whether p may be fixed on this canvas.
func (c *Canvas) Contains(p image.Point) bool {
	return !c.bounded || p.In(c.area)
}

// Fix sets the pixel at p. It returns true if the pixel was unset before and
// false if it already had the same color. If the pixel already has a
// different color ErrContradiction is returned and the canvas is not changed.
func (c *Canvas) Fix(p image.Point, id ColorID) (bool, error) {
	if !c.Contains(p) {
		return false, fmt.Errorf("can't fix pixel %v outside of canvas %v", p, c.area)
	}
	current := c.store.get(p)
	switch current {
	case NoColor:
		c.store.set(p, id)
		return true, nil
	case id:
		return false, nil
	default:
		return false, fmt.Errorf("%w: pixel %v is already fixed to %d, can't set %d",
			ErrContradiction, p, current, id)
	}
}

// Unfix removes the pixel at p and returns its previous color (NoColor if it
// was not set).
func (c *Canvas) Unfix(p image.Point) ColorID {
	current := c.store.get(p)
	if current != NoColor {
		c.store.del(p)
	}
	return current
}

// At returns the color at p or NoColor.
func (c *Canvas) At(p image.Point) ColorID {
	return c.store.get(p)
}

// IsFixed reports whether the pixel at p is set.
func (c *Canvas) IsFixed(p image.Point) bool {
	return c.store.get(p) != NoColor
}

// Len returns the number of fixed pixels.
func (c *Canvas) Len() int {
	return c.store.len()
}

// Points returns all fixed pixels, sorted row by row.
func (c *Canvas) Points() []image.Point {
	return c.store.points()
}

// Bounds returns the configured area for bounded canvases and the bounding
// box of all fixed pixels for unbounded ones.
func (c *Canvas) Bounds() image.Rectangle {
	if c.bounded {
		return c.area
	}
	var res image.Rectangle
	first := true
	for p := range c.store.(sparseStore) {
		if first {
			res = image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}
			first = false
			continue
		}
		res.Min.X = IntMin(res.Min.X, p.X)
		res.Min.Y = IntMin(res.Min.Y, p.Y)
		res.Max.X = IntMax(res.Max.X, p.X+1)
		res.Max.Y = IntMax(res.Max.Y, p.Y+1)
	}
	return res
}

// Image converts the canvas to an image. The image always starts at (0, 0),
// pixels that are not fixed are fully transparent.
func (c *Canvas) Image(palette Palette) *image.NRGBA {
	bounds := c.Bounds()
	res := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			id := c.store.get(image.Pt(x, y))
			if id == NoColor {
				res.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.NRGBA{})
				continue
			}
			res.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, palette[id].NRGBA())
		}
	}
	return res
}
