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
	"sort"

	log "github.com/sirupsen/logrus"
)

// maxRecoveryShift limits the growth of the erase radius.
const maxRecoveryShift = 20

// regionFailure counts the deadlocks in a region of the canvas.
type regionFailure struct {
	failures int
	// last is the iteration of the last failure
	last int
}

// regionKey returns the region of anchor p, regions are squares of twice the
// tile size.
func regionKey(p image.Point, size int) image.Point {
	return image.Pt(floorDiv(p.X, 2*size), floorDiv(p.Y, 2*size))
}

// recoveryRadius returns the erase radius after the given number of failures
// in a region: (r + 1) · 2^(failures - 1).
func recoveryRadius(r, failures int) int {
	shift := IntMin(IntMax(failures-1, 0), maxRecoveryShift)
	return (r + 1) << uint(shift)
}

// recoverAt erases the pixels around the contradiction at p. The more often
// this happens in the same region the larger the erased area.
func (s *Synthesizer) recoverAt(p image.Point) {
	key := regionKey(p, s.catalog.Size)
	region, has := s.regions[key]
	if !has {
		region = &regionFailure{}
		s.regions[key] = region
	}
	region.failures++
	region.last = s.iteration
	radius := recoveryRadius(s.catalog.Radius, region.failures)
	rect := image.Rect(p.X-radius, p.Y-radius, p.X+radius+1, p.Y+radius+1)
	if s.canvas.Bounded() {
		rect = rect.Intersect(s.canvas.Area())
	}
	s.stats.Deadlocks++
	log.WithFields(log.Fields{
		"anchor":    p,
		"radius":    radius,
		"failures":  region.failures,
		"iteration": s.iteration,
	}).Debug("Deadlock, erasing region")
	s.erase(rect)
}

// forgetRegions removes the failure counters of regions without a failure
// in the last RecoveryMemory iterations.
func (s *Synthesizer) forgetRegions() {
	for key, region := range s.regions {
		if s.iteration-region.last >= s.cfg.RecoveryMemory {
			delete(s.regions, key)
		}
	}
}

func rectArea(rect image.Rectangle) int {
	return rect.Dx() * rect.Dy()
}

// fixedIn returns all fixed pixels in rect, sorted row by row.
func (s *Synthesizer) fixedIn(rect image.Rectangle) []image.Point {
	var res []image.Point
	if rectArea(rect) <= s.canvas.Len() {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				if q := image.Pt(x, y); s.canvas.IsFixed(q) {
					res = append(res, q)
				}
			}
		}
		return res
	}
	for _, q := range s.canvas.Points() {
		if q.In(rect) {
			res = append(res, q)
		}
	}
	return res
}

// erase removes all pixels in rect together with the placements and
// candidate sets depending on them. Open anchors next to the region are
// evaluated again.
func (s *Synthesizer) erase(rect image.Rectangle) {
	erased := s.fixedIn(rect)
	for _, q := range erased {
		c := s.canvas.Unfix(q)
		s.balance.Remove(c)
		if _, protected := s.prefill[q]; protected {
			if _, has := s.pendingSet[q]; !has {
				s.pendingSet[q] = struct{}{}
				s.pending = append(s.pending, q)
			}
		}
	}
	s.erasures = append(s.erasures, Erasure{
		Rect:      rect,
		Iteration: s.iteration,
		Sequence:  s.nextSequence(),
		Pixels:    erased,
	})
	s.stats.PixelsErased += len(erased)

	// anchors with a footprint intersecting rect
	touched := rect.Inset(-s.catalog.Radius)
	if rectArea(touched) <= len(s.live) {
		for y := touched.Min.Y; y < touched.Max.Y; y++ {
			for x := touched.Min.X; x < touched.Max.X; x++ {
				delete(s.live, image.Pt(x, y))
			}
		}
	} else {
		for a := range s.live {
			if a.In(touched) {
				delete(s.live, a)
			}
		}
	}
	if rectArea(touched) <= len(s.candidates.sets) {
		for y := touched.Min.Y; y < touched.Max.Y; y++ {
			for x := touched.Min.X; x < touched.Max.X; x++ {
				s.candidates.reset(image.Pt(x, y))
			}
		}
	} else {
		for a := range s.candidates.sets {
			if a.In(touched) {
				s.candidates.reset(a)
			}
		}
	}
	for _, a := range s.anchorsTouching(touched) {
		s.evaluate(a)
	}
	s.recordAnalysis(touched)
}

// anchorsTouching returns the anchors in touched that may be open, that is
// anchors with a fixed pixel in their footprint. The result is sorted row by
// row.
func (s *Synthesizer) anchorsTouching(touched image.Rectangle) []image.Point {
	if rectArea(touched) <= len(s.catalog.Offsets())*s.canvas.Len() {
		res := make([]image.Point, 0, rectArea(touched))
		for y := touched.Min.Y; y < touched.Max.Y; y++ {
			for x := touched.Min.X; x < touched.Max.X; x++ {
				res = append(res, image.Pt(x, y))
			}
		}
		return res
	}
	var res []image.Point
	for _, a := range s.anchorsCovering(s.fixedIn(touched.Inset(-s.catalog.Radius))) {
		if a.In(touched) {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return pointLess(res[i], res[j])
	})
	return res
}

// restorePrefill fixes prefill pixels that have been erased.
func (s *Synthesizer) restorePrefill() {
	if len(s.pending) == 0 {
		return
	}
	points := s.pending
	s.pending = nil
	s.pendingSet = make(map[image.Point]struct{})
	sort.Slice(points, func(i, j int) bool {
		return pointLess(points[i], points[j])
	})
	for _, q := range points {
		if err := s.fixPixel(q, s.prefill[q]); err != nil {
			log.WithError(err).WithField("pixel", q).Warn("Can't restore prefill pixel")
		}
	}
	for _, a := range s.anchorsCovering(points) {
		s.evaluate(a)
	}
	s.resolve()
}
