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
	"strings"

	"github.com/nfnt/resize"
)

// SupportedImageFunc is a function that takes a file extension and decides if
// this file extension is supported. Usually our library should support jpg and
// png files, but this depends on the image formats registered with the image
// package.
//
// The extension passed to this function includes the leading dot.
type SupportedImageFunc func(ext string) bool

// PNGOnly accepts only png files. Sources are expected to be pixel art, lossy
// formats would produce an enormous palette.
func PNGOnly(ext string) bool {
	return strings.ToLower(ext) == ".png"
}

// LosslessFormats accepts png, bmp, gif and tiff files.
func LosslessFormats(ext string) bool {
	ext = strings.ToLower(ext)
	switch ext {
	case ".png", ".bmp", ".gif", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// Color is a non-premultiplied RGBA color. Two colors are equal if all four
// channels are equal, there is no tolerance.
type Color struct {
	R, G, B, A uint8
}

// NewColor returns a new color.
func NewColor(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ConvertColor converts any color to the internal representation.
func ConvertColor(c color.Color) Color {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: nrgba.R, G: nrgba.G, B: nrgba.B, A: nrgba.A}
}

// NRGBA returns the color as a color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ColorID is the index of a color in a Palette.
type ColorID int

const (
	// NoColor is used for pixels that are not fixed yet.
	NoColor ColorID = -1
)

// Palette is the list of distinct colors of a source image, in the order in
// which they appear in a row-major scan.
type Palette []Color

// Lookup returns a map from color to its id in the palette.
func (p Palette) Lookup() map[Color]ColorID {
	res := make(map[Color]ColorID, len(p))
	for i, c := range p {
		res[c] = ColorID(i)
	}
	return res
}

// ColorGrid is an image where each pixel is stored as a palette index.
type ColorGrid struct {
	Width, Height int
	Pix           []ColorID
}

// NewColorGrid returns a grid of the given size with all pixels set to
// NoColor.
func NewColorGrid(width, height int) *ColorGrid {
	pix := make([]ColorID, width*height)
	for i := range pix {
		pix[i] = NoColor
	}
	return &ColorGrid{Width: width, Height: height, Pix: pix}
}

// At returns the color id at (x, y). (0, 0) is the top left corner.
func (g *ColorGrid) At(x, y int) ColorID {
	return g.Pix[y*g.Width+x]
}

// Set sets the color id at (x, y).
func (g *ColorGrid) Set(x, y int, id ColorID) {
	g.Pix[y*g.Width+x] = id
}

// Counts returns the number of pixels of each color.
func (g *ColorGrid) Counts(paletteSize int) []int {
	res := make([]int, paletteSize)
	for _, id := range g.Pix {
		if id >= 0 {
			res[id]++
		}
	}
	return res
}

// GridFromImage converts an image to a color grid and returns the palette
// of all colors found in the image.
func GridFromImage(img image.Image) (*ColorGrid, Palette) {
	bounds := img.Bounds()
	grid := NewColorGrid(bounds.Dx(), bounds.Dy())
	var palette Palette
	lookup := make(map[Color]ColorID)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ConvertColor(img.At(x, y))
			id, has := lookup[c]
			if !has {
				id = ColorID(len(palette))
				lookup[c] = id
				palette = append(palette, c)
			}
			grid.Set(x-bounds.Min.X, y-bounds.Min.Y, id)
		}
	}
	return grid, palette
}

// ImageResizer resizes an image to the given width and height.
type ImageResizer interface {
	Resize(width, height uint, img image.Image) image.Image
}

// NfntResizer uses the nfnt/resize package to resize an image.
type NfntResizer struct {
	// InterP is the interpolation function to use.
	InterP resize.InterpolationFunction
}

// NewNfntResizer returns a new resizer given the interpolation function.
func NewNfntResizer(interP resize.InterpolationFunction) NfntResizer {
	return NfntResizer{interP}
}

// GetInterP returns an interpolation function given an integer, where
// 0 is nearest neighbour and higher values mean better (but slower)
// interpolation.
func GetInterP(quality uint) resize.InterpolationFunction {
	switch quality {
	case 0:
		return resize.NearestNeighbor
	case 1:
		return resize.Bilinear
	case 2:
		return resize.Bicubic
	case 3:
		return resize.MitchellNetravali
	case 4:
		return resize.Lanczos2
	default:
		return resize.Lanczos3
	}
}

var (
	// DefaultResizer is used to scale synthesized images. Nearest neighbour
	// keeps the pixels of the output crisp.
	DefaultResizer = NewNfntResizer(resize.NearestNeighbor)
)

// Resize implements ImageResizer.
func (resizer NfntResizer) Resize(width, height uint, img image.Image) image.Image {
	return resize.Resize(width, height, img, resizer.InterP)
}

// ScaleImage scales the image by an integer factor. Factors ≤ 1 return the
// image unchanged.
func ScaleImage(resizer ImageResizer, factor int, img image.Image) image.Image {
	if factor <= 1 {
		return img
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return img
	}
	return resizer.Resize(uint(bounds.Dx()*factor), uint(bounds.Dy()*factor), img)
}
