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
	"image/draw"
	"sync"
)

var (
	// ImageCacheSize is the size of tile image caches. The same variant is
	// usually drawn very often, scaling it only once makes rendering much
	// faster. It must be a number ≥ 1.
	ImageCacheSize = 256
)

// ResizeStrategy is a function that scales an image (img) to an image of
// exactly the size defined by tileWidth and tileHeight.
type ResizeStrategy func(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image

// ForceResize is a resize strategy that resizes to the given width and height,
// ignoring the ratio of the original image.
func ForceResize(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image {
	return resizer.Resize(tileWidth, tileHeight, img)
}

// ImageCache is used to cache scaled tile images during rendering.
//
// Caches are safe for concurrent use.
type ImageCache struct {
	m           *sync.Mutex
	size        int
	content     map[string]image.Image
	insertOrder []string
}

// NewImageCache returns an empty image cache. size is the number of images that
// will be cached. size must be ≥ 1.
func NewImageCache(size int) *ImageCache {
	if size <= 0 {
		size = 1
	}
	var m sync.Mutex
	return &ImageCache{
		m:           &m,
		size:        size,
		content:     make(map[string]image.Image, size),
		insertOrder: make([]string, 0, size),
	}
}

func (cache *ImageCache) keyFormat(variant, width, height int) string {
	return fmt.Sprintf("%d-%d-%d", variant, width, height)
}

func (cache *ImageCache) lookup(key string) image.Image {
	if img, has := cache.content[key]; has {
		return img
	}
	return nil
}

// Put adds an image to the cache. If the cache is full the oldest image is
// removed.
func (cache *ImageCache) Put(variant, width, height int, img image.Image) {
	cache.m.Lock()
	defer cache.m.Unlock()
	keyFmt := cache.keyFormat(variant, width, height)
	if lookup := cache.lookup(keyFmt); lookup != nil {
		return
	}
	if len(cache.insertOrder) < cache.size {
		cache.insertOrder = append(cache.insertOrder, keyFmt)
		cache.content[keyFmt] = img
	} else {
		fst := cache.insertOrder[0]
		cache.insertOrder = cache.insertOrder[1:]
		cache.insertOrder = append(cache.insertOrder, keyFmt)
		delete(cache.content, fst)
		cache.content[keyFmt] = img
	}
}

// Get returns the image from the cache. If the return value is nil the image
// was not found in the cache and should be added to the cache by Put.
func (cache *ImageCache) Get(variant, width, height int) image.Image {
	cache.m.Lock()
	defer cache.m.Unlock()
	return cache.lookup(cache.keyFormat(variant, width, height))
}

// Len returns the number of cached images.
func (cache *ImageCache) Len() int {
	cache.m.Lock()
	defer cache.m.Unlock()
	return len(cache.insertOrder)
}

// TileImage renders the pixels (row-major) of a size×size tile.
func TileImage(pixels []ColorID, size int, palette Palette) *image.NRGBA {
	res := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if id := pixels[y*size+x]; id != NoColor {
				res.SetNRGBA(x, y, palette[id].NRGBA())
			}
		}
	}
	return res
}

// Composer draws placements into images, each canvas pixel is drawn as a
// Scale×Scale square.
type Composer struct {
	Palette  Palette
	Size     int
	Scale    int
	Resizer  ImageResizer
	Strategy ResizeStrategy
	Cache    *ImageCache
}

// NewComposer returns a composer using the DefaultResizer.
func NewComposer(palette Palette, scale int) *Composer {
	if scale < 1 {
		scale = 1
	}
	return &Composer{
		Palette:  palette,
		Size:     TileSize,
		Scale:    scale,
		Resizer:  DefaultResizer,
		Strategy: ForceResize,
		Cache:    NewImageCache(ImageCacheSize),
	}
}

// Area returns the area in the output image covered by the canvas pixels in
// rect, origin is the canvas position drawn at (0, 0).
func (c *Composer) Area(rect image.Rectangle, origin image.Point) image.Rectangle {
	rect = rect.Sub(origin)
	return image.Rectangle{Min: rect.Min.Mul(c.Scale), Max: rect.Max.Mul(c.Scale)}
}

// DrawPlacement draws the tile of p.
func (c *Composer) DrawPlacement(into draw.Image, origin image.Point, p Placement) {
	r := c.Size / 2
	area := c.Area(image.Rect(p.Position.X-r, p.Position.Y-r, p.Position.X+r+1, p.Position.Y+r+1), origin)
	tileWidth, tileHeight := area.Dx(), area.Dy()
	img := c.Cache.Get(p.Variant, tileWidth, tileHeight)
	if img == nil {
		img = TileImage(p.Pixels, c.Size, c.Palette)
		if c.Scale > 1 {
			img = c.Strategy(c.Resizer, uint(tileWidth), uint(tileHeight), img)
		}
		c.Cache.Put(p.Variant, tileWidth, tileHeight, img)
	}
	draw.Draw(into, area, img, img.Bounds().Min, draw.Src)
}

// FillPixels fills the given canvas pixels with col.
func (c *Composer) FillPixels(into draw.Image, origin image.Point, pixels []image.Point, col color.Color) {
	src := image.NewUniform(col)
	for _, q := range pixels {
		area := c.Area(image.Rect(q.X, q.Y, q.X+1, q.Y+1), origin)
		draw.Draw(into, area, src, image.Point{}, draw.Src)
	}
}

// ComposePlacements draws all placements in the given order into a new image
// of the canvas area bounds.
func ComposePlacements(c *Composer, placements []Placement, bounds image.Rectangle) *image.NRGBA {
	res := image.NewNRGBA(c.Area(bounds, bounds.Min))
	for _, p := range placements {
		c.DrawPlacement(res, bounds.Min, p)
	}
	return res
}
