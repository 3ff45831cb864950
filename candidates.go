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

// candidateSet is the set of variants that may still be placed at an anchor.
type candidateSet struct {
	bits  Bitset
	count int
	// version changes whenever the set changes
	version uint64
}

// candidateTable stores the candidate sets of anchors. Sets are computed on
// first access from the pixels fixed at that time and narrowed afterwards.
// An anchor without an entry is unconstrained.
type candidateTable struct {
	catalog     *Catalog
	canvas      *Canvas
	sets        map[image.Point]*candidateSet
	nextVersion uint64
}

func newCandidateTable(catalog *Catalog, canvas *Canvas) *candidateTable {
	return &candidateTable{
		catalog: catalog,
		canvas:  canvas,
		sets:    make(map[image.Point]*candidateSet),
	}
}

// compute returns the candidates of p from scratch: all variants that agree
// with every fixed pixel in the footprint of p.
func (t *candidateTable) compute(p image.Point) Bitset {
	res := FullBitset(t.catalog.Len())
	for i, o := range t.catalog.Offsets() {
		c := t.canvas.At(p.Add(o))
		if c == NoColor {
			continue
		}
		if res.IntersectWith(t.catalog.Mask(i, c)) == 0 {
			break
		}
	}
	return res
}

func (t *candidateTable) touch(s *candidateSet) {
	t.nextVersion++
	s.version = t.nextVersion
}

// at returns the candidate set of p, computing it if required.
func (t *candidateTable) at(p image.Point) *candidateSet {
	if s, has := t.sets[p]; has {
		return s
	}
	bits := t.compute(p)
	s := &candidateSet{bits: bits, count: bits.Count()}
	t.touch(s)
	t.sets[p] = s
	return s
}

// cached returns the candidate set of p if it has been computed.
func (t *candidateTable) cached(p image.Point) (*candidateSet, bool) {
	s, has := t.sets[p]
	return s, has
}

// narrow removes all candidates of p that don't have color at pixel. It
// returns true if the set has changed. Anchors without a cached set are not
// changed.
func (t *candidateTable) narrow(p, pixel image.Point, color ColorID) bool {
	s, has := t.sets[p]
	if !has {
		return false
	}
	d := pixel.Sub(p)
	mask := t.catalog.Mask(t.catalog.OffsetIndex(d.X, d.Y), color)
	return t.narrowSet(s, mask)
}

// narrowWith intersects the candidates of p with row and returns true if the
// set has changed.
func (t *candidateTable) narrowWith(p image.Point, row Bitset) bool {
	s, has := t.sets[p]
	if !has {
		return false
	}
	return t.narrowSet(s, row)
}

func (t *candidateTable) narrowSet(s *candidateSet, other Bitset) bool {
	if s.count == 0 {
		return false
	}
	count := s.bits.IntersectWith(other)
	if count == s.count {
		return false
	}
	s.count = count
	t.touch(s)
	return true
}

// reset forgets the candidates of p.
func (t *candidateTable) reset(p image.Point) {
	delete(t.sets, p)
}

// validAnchor reports whether the footprint of an anchor at p lies on the canvas.
func validAnchor(canvas *Canvas, catalog *Catalog, p image.Point) bool {
	if !canvas.Bounded() {
		return true
	}
	r := catalog.Radius
	area := canvas.Area()
	return p.X-r >= area.Min.X && p.Y-r >= area.Min.Y && p.X+r < area.Max.X && p.Y+r < area.Max.Y
}

// footprintState returns the number of fixed pixels in the footprint of p.
func footprintState(canvas *Canvas, catalog *Catalog, p image.Point) int {
	fixed := 0
	for _, o := range catalog.Offsets() {
		if canvas.IsFixed(p.Add(o)) {
			fixed++
		}
	}
	return fixed
}

// isOpen reports whether p is a valid anchor with at least one fixed and at
// least one unfixed pixel in its footprint.
func isOpen(canvas *Canvas, catalog *Catalog, p image.Point) bool {
	if !validAnchor(canvas, catalog, p) {
		return false
	}
	fixed := footprintState(canvas, catalog, p)
	return fixed > 0 && fixed < len(catalog.Offsets())
}
