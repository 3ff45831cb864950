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
)

// EagerCompatLimit controls when the compatibility index is computed before
// synthesis starts: if variants² · offsets is smaller than this value all rows
// are computed eagerly, otherwise rows are computed on first use.
var EagerCompatLimit = 1 << 24

// CompatibilityIndex answers whether variant b placed at anchor A + d agrees
// with variant a placed at anchor A on all pixels where both footprints
// overlap.
//
// Rows are computed lazily and cached. A CompatibilityIndex is not safe for
// concurrent use, except for Precompute which must be called before any other
// method.
type CompatibilityIndex struct {
	catalog *Catalog
	// span is 2·size - 1, the width of the area of offsets with overlapping
	// footprints
	span  int
	rows  []Bitset
	built []bool
}

// NewCompatibilityIndex returns an index for the given catalog. No rows are
// computed yet.
func NewCompatibilityIndex(catalog *Catalog) *CompatibilityIndex {
	span := 2*catalog.Size - 1
	n := catalog.Len() * span * span
	return &CompatibilityIndex{
		catalog: catalog,
		span:    span,
		rows:    make([]Bitset, n),
		built:   make([]bool, n),
	}
}

// NumOffsets returns the number of offsets d ≠ (0, 0) for which footprints
// overlap.
func (index *CompatibilityIndex) NumOffsets() int {
	return index.span*index.span - 1
}

// Overlaps reports whether the footprints of two anchors d apart overlap.
func (index *CompatibilityIndex) Overlaps(d image.Point) bool {
	limit := index.catalog.Size - 1
	return d != (image.Point{}) && IntAbs(d.X) <= limit && IntAbs(d.Y) <= limit
}

func (index *CompatibilityIndex) rowIndex(a int, d image.Point) int {
	shift := index.catalog.Size - 1
	return (a*index.span+d.Y+shift)*index.span + d.X + shift
}

// computeRow returns all variants b that agree with a when placed d apart.
func (index *CompatibilityIndex) computeRow(a int, d image.Point) Bitset {
	c := index.catalog
	res := NewBitset(c.Len())
	va := c.Variants[a]
	r := c.Radius
	// overlapping area relative to anchor A
	minX, maxX := IntMax(-r, d.X-r), IntMin(r, d.X+r)
	minY, maxY := IntMax(-r, d.Y-r), IntMin(r, d.Y+r)
	for _, vb := range c.Variants {
		ok := true
		for y := minY; ok && y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if va.Pixels[c.OffsetIndex(x, y)] != vb.Pixels[c.OffsetIndex(x-d.X, y-d.Y)] {
					ok = false
					break
				}
			}
		}
		if ok {
			res.Set(vb.ID)
		}
	}
	return res
}

// Row returns the set of variants compatible with a at offset d. d must
// satisfy Overlaps. The returned set must not be modified.
func (index *CompatibilityIndex) Row(a int, d image.Point) Bitset {
	i := index.rowIndex(a, d)
	if !index.built[i] {
		index.rows[i] = index.computeRow(a, d)
		index.built[i] = true
	}
	return index.rows[i]
}

// Compatible reports whether b placed at A + d agrees with a placed at A.
func (index *CompatibilityIndex) Compatible(a int, d image.Point, b int) bool {
	if !index.Overlaps(d) {
		return true
	}
	return index.Row(a, d).Has(b)
}

// ShouldPrecompute reports whether the whole index is small enough to be
// computed eagerly, see EagerCompatLimit.
func (index *CompatibilityIndex) ShouldPrecompute() bool {
	n := index.catalog.Len()
	return n*n*index.NumOffsets() < EagerCompatLimit
}

// Precompute computes all rows concurrently, how many go routines run
// concurrently is controlled by numRoutines.
func (index *CompatibilityIndex) Precompute(numRoutines int) {
	if numRoutines <= 0 {
		numRoutines = 1
	}
	type job struct {
		a int
		d image.Point
	}
	limit := index.catalog.Size - 1
	numJobs := index.catalog.Len() * index.NumOffsets()
	jobs := make(chan job, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for next := range jobs {
				i := index.rowIndex(next.a, next.d)
				// each row is written by exactly one job
				index.rows[i] = index.computeRow(next.a, next.d)
				index.built[i] = true
				done <- true
			}
		}()
	}

	go func() {
		for a := 0; a < index.catalog.Len(); a++ {
			for dy := -limit; dy <= limit; dy++ {
				for dx := -limit; dx <= limit; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					jobs <- job{a: a, d: image.Pt(dx, dy)}
				}
			}
		}
		close(jobs)
	}()

	for i := 0; i < numJobs; i++ {
		<-done
	}
}
