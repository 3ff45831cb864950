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
	"encoding/binary"
	"fmt"
	"image"
)

// TileSize is the width and height of the patches extracted from the source.
// It must be odd, the anchor of a tile is its center pixel.
const TileSize = 3

// Variant is a distinct tile (after applying transforms) together with the
// relative weight with which it appears in the source.
//
// Variants are immutable once the catalog has been built.
type Variant struct {
	// ID is the index of the variant in its catalog.
	ID int
	// Pixels are the colors of the tile in row-major order.
	Pixels []ColorID
	// Frequency is the number of source windows that produced this variant,
	// windows shared by a symmetry orbit contribute a fraction.
	Frequency float64
	// Counts contains for each palette color the number of pixels with that
	// color.
	Counts []int
}

// Catalog is the set of all tile variants found in a source image.
type Catalog struct {
	Size        int
	Radius      int
	PaletteSize int
	Variants    []*Variant
	// TotalFrequency is the sum of all frequencies, this is the number of
	// windows in the source.
	TotalFrequency float64
	offsets        []image.Point
	masks          []Bitset
}

func tileKey(pixels []ColorID) string {
	buf := make([]byte, 4*len(pixels))
	for i, id := range pixels {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(int32(id)))
	}
	return string(buf)
}

// NewCatalog extracts all size×size windows of the grid and builds the variant
// catalog. If rotate and / or mirror is true each window is expanded to its
// orbit under the enabled transformations, the count of a window is shared
// equally between the distinct members of its orbit.
//
// Variant ids follow the order in which variants are found, so the catalog of
// a given source is always the same.
func NewCatalog(grid *ColorGrid, paletteSize, size int, rotate, mirror bool) (*Catalog, error) {
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("%w: tile size must be odd and positive, got %d", ErrInvalidConfig, size)
	}
	if grid.Width < size || grid.Height < size {
		return nil, fmt.Errorf("%w: source is %dx%d, tiles are %dx%d", ErrSourceTooSmall,
			grid.Width, grid.Height, size, size)
	}
	// first collect all distinct windows together with their count
	var windows [][]ColorID
	var counts []int
	windowIndex := make(map[string]int)
	for y := 0; y+size <= grid.Height; y++ {
		for x := 0; x+size <= grid.Width; x++ {
			pixels := make([]ColorID, size*size)
			for dy := 0; dy < size; dy++ {
				for dx := 0; dx < size; dx++ {
					pixels[dy*size+dx] = grid.At(x+dx, y+dy)
				}
			}
			key := tileKey(pixels)
			if i, has := windowIndex[key]; has {
				counts[i]++
			} else {
				windowIndex[key] = len(windows)
				windows = append(windows, pixels)
				counts = append(counts, 1)
			}
		}
	}
	res := &Catalog{
		Size:        size,
		Radius:      size / 2,
		PaletteSize: paletteSize,
	}
	group := TransformGroup(rotate, mirror)
	variantIndex := make(map[string]int)
	for i, window := range windows {
		// orbit of the window, without duplicates
		orbitKeys := make(map[string]struct{}, len(group))
		var orbit [][]ColorID
		for _, t := range group {
			transformed := ApplyTransform(window, size, t)
			key := tileKey(transformed)
			if _, has := orbitKeys[key]; has {
				continue
			}
			orbitKeys[key] = struct{}{}
			orbit = append(orbit, transformed)
		}
		share := float64(counts[i]) / float64(len(orbit))
		for _, pixels := range orbit {
			key := tileKey(pixels)
			if id, has := variantIndex[key]; has {
				res.Variants[id].Frequency += share
				continue
			}
			id := len(res.Variants)
			variantIndex[key] = id
			res.Variants = append(res.Variants, newVariant(id, pixels, share, paletteSize))
		}
		res.TotalFrequency += float64(counts[i])
	}
	res.initOffsets()
	res.initMasks()
	return res, nil
}

func newVariant(id int, pixels []ColorID, frequency float64, paletteSize int) *Variant {
	counts := make([]int, paletteSize)
	for _, c := range pixels {
		counts[c]++
	}
	return &Variant{ID: id, Pixels: pixels, Frequency: frequency, Counts: counts}
}

func (c *Catalog) initOffsets() {
	c.offsets = make([]image.Point, 0, c.Size*c.Size)
	for dy := -c.Radius; dy <= c.Radius; dy++ {
		for dx := -c.Radius; dx <= c.Radius; dx++ {
			c.offsets = append(c.offsets, image.Pt(dx, dy))
		}
	}
}

func (c *Catalog) initMasks() {
	numVariants := len(c.Variants)
	c.masks = make([]Bitset, len(c.offsets)*c.PaletteSize)
	for i := range c.masks {
		c.masks[i] = NewBitset(numVariants)
	}
	for _, v := range c.Variants {
		for offset, color := range v.Pixels {
			c.masks[offset*c.PaletteSize+int(color)].Set(v.ID)
		}
	}
}

// Len returns the number of variants.
func (c *Catalog) Len() int {
	return len(c.Variants)
}

// Offsets returns the footprint of a tile relative to its anchor, in
// row-major order. The returned slice must not be modified.
func (c *Catalog) Offsets() []image.Point {
	return c.offsets
}

// OffsetIndex returns the index of the footprint offset (dx, dy) in
// Offsets and Variant.Pixels.
func (c *Catalog) OffsetIndex(dx, dy int) int {
	return (dy+c.Radius)*c.Size + dx + c.Radius
}

// Mask returns the set of all variants that have the given color at the
// footprint offset with the given index. The set must not be modified.
func (c *Catalog) Mask(offsetIndex int, color ColorID) Bitset {
	return c.masks[offsetIndex*c.PaletteSize+int(color)]
}

// Frequencies returns the frequency of each variant.
func (c *Catalog) Frequencies() []float64 {
	res := make([]float64, len(c.Variants))
	for i, v := range c.Variants {
		res[i] = v.Frequency
	}
	return res
}
