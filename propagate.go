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
	"sort"

	log "github.com/sirupsen/logrus"
)

// push adds an entry for p unless an entry for the current version of its
// candidate set has already been pushed.
func (s *Synthesizer) push(p image.Point, set *candidateSet) {
	if version, has := s.pushed[p]; has && version == set.version {
		return
	}
	s.pushed[p] = set.version
	s.heap.Push(AnchorHeapEntry{
		Anchor:  p,
		Count:   set.count,
		Key:     s.rng.Int63(),
		version: set.version,
	})
}

// evaluate pushes p if it is open. Open anchors without candidates are queued
// as contradictions.
func (s *Synthesizer) evaluate(p image.Point) {
	if !isOpen(s.canvas, s.catalog, p) {
		return
	}
	set := s.candidates.at(p)
	if set.count == 0 {
		s.contradictions = append(s.contradictions, p)
		return
	}
	s.push(p, set)
}

func (s *Synthesizer) validEntry(e AnchorHeapEntry) bool {
	set, has := s.candidates.cached(e.Anchor)
	return has && set.version == e.version && set.count > 0 && isOpen(s.canvas, s.catalog, e.Anchor)
}

// peekAnchor returns the open anchor with the fewest candidates without
// removing it. If the canvas is empty the bootstrap anchor is returned.
func (s *Synthesizer) peekAnchor() (image.Point, bool) {
	for {
		for {
			e, ok := s.heap.Peek()
			if !ok {
				break
			}
			if s.validEntry(e) {
				return e.Anchor, true
			}
			s.heap.Pop()
		}
		if s.canvas.Len() == 0 {
			return s.bootstrap, true
		}
		if !s.rebuildFrontier() {
			return image.Point{}, false
		}
	}
}

// nextAnchor removes and returns the open anchor with the fewest candidates.
func (s *Synthesizer) nextAnchor() (image.Point, bool) {
	p, ok := s.peekAnchor()
	if ok && s.heap.Len() > 0 {
		e, _ := s.heap.Pop()
		delete(s.pushed, e.Anchor)
	}
	return p, ok
}

// rebuildFrontier scans all fixed pixels for open anchors and pushes them.
// It returns true if the heap is not empty afterwards.
func (s *Synthesizer) rebuildFrontier() bool {
	s.pushed = make(map[image.Point]uint64)
	for _, a := range s.anchorsCovering(s.canvas.Points()) {
		s.evaluate(a)
	}
	s.resolve()
	return s.heap.Len() > 0
}

// anchorsCovering returns all anchors whose footprint contains one of the
// points, sorted row by row.
func (s *Synthesizer) anchorsCovering(points []image.Point) []image.Point {
	seen := make(map[image.Point]struct{}, len(points))
	var res []image.Point
	for _, q := range points {
		for _, o := range s.catalog.Offsets() {
			a := q.Add(o)
			if _, has := seen[a]; has {
				continue
			}
			seen[a] = struct{}{}
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return pointLess(res[i], res[j])
	})
	return res
}

// placeAt chooses a variant for anchor and places it.
func (s *Synthesizer) placeAt(anchor image.Point) {
	set := s.candidates.at(anchor)
	if set.count == 0 {
		s.contradictions = append(s.contradictions, anchor)
		s.resolve()
		return
	}
	v := s.policy.Choose(s.rng, anchor, set.bits)
	if err := s.place(anchor, v); err != nil {
		log.WithError(err).WithField("anchor", anchor).Debug("Placement failed")
		s.recoverAt(anchor)
	}
	s.resolve()
}

// place fixes the pixels of variant v around anchor and narrows the
// candidates of all anchors with an overlapping footprint.
func (s *Synthesizer) place(anchor image.Point, v int) error {
	variant := s.catalog.Variants[v]
	var fixed []image.Point
	for i, o := range s.catalog.Offsets() {
		q := anchor.Add(o)
		changed, err := s.canvas.Fix(q, variant.Pixels[i])
		if err != nil {
			return err
		}
		if changed {
			s.balance.Add(variant.Pixels[i])
			fixed = append(fixed, q)
		}
	}
	s.live[anchor] = len(s.placements)
	s.placements = append(s.placements, Placement{
		Position:  anchor,
		Variant:   v,
		Pixels:    variant.Pixels,
		Fixed:     fixed,
		Iteration: s.iteration,
		Sequence:  s.nextSequence(),
	})
	s.candidates.reset(anchor)
	limit := s.catalog.Size - 1
	for dy := -limit; dy <= limit; dy++ {
		for dx := -limit; dx <= limit; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			b := anchor.Add(image.Pt(dx, dy))
			if !validAnchor(s.canvas, s.catalog, b) {
				continue
			}
			s.candidates.narrowWith(b, s.compat.Row(v, image.Pt(dx, dy)))
			s.evaluate(b)
		}
	}
	s.recordAnalysis(image.Rect(anchor.X-limit, anchor.Y-limit, anchor.X+limit+1, anchor.Y+limit+1))
	return nil
}

// fixPixel fixes a single pixel and narrows the cached candidates of all
// anchors covering it. The anchors are not evaluated.
func (s *Synthesizer) fixPixel(q image.Point, c ColorID) error {
	changed, err := s.canvas.Fix(q, c)
	if err != nil || !changed {
		return err
	}
	s.balance.Add(c)
	for _, o := range s.catalog.Offsets() {
		s.candidates.narrow(q.Add(o), q, c)
	}
	return nil
}

// resolve recovers from all queued contradictions, including those caused by
// the recovery itself.
func (s *Synthesizer) resolve() {
	for len(s.contradictions) > 0 {
		p := s.contradictions[0]
		s.contradictions = s.contradictions[1:]
		if !isOpen(s.canvas, s.catalog, p) || s.candidates.at(p).count > 0 {
			continue
		}
		s.recoverAt(p)
	}
}

// checkCandidates compares the candidates of all open anchors with a
// computation from scratch.
func (s *Synthesizer) checkCandidates() error {
	for _, a := range s.anchorsCovering(s.canvas.Points()) {
		if !isOpen(s.canvas, s.catalog, a) {
			continue
		}
		set, has := s.candidates.cached(a)
		if !has {
			continue
		}
		expected := s.candidates.compute(a)
		if !set.bits.Equal(expected) || set.count != expected.Count() {
			return fmt.Errorf("candidates of %v: got %v, expected %v", a, set.bits.Elements(), expected.Elements())
		}
	}
	return nil
}
