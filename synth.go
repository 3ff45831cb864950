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
	"math/rand"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Status describes the state of a synthesis run.
type Status int

const (
	// StatusRunning means that more placements are possible.
	StatusRunning Status = iota
	// StatusComplete means that no open anchor is left. For bounded canvases
	// this means that every pixel is fixed.
	StatusComplete
	// StatusExhausted means that the iteration limit was reached.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusComplete:
		return "complete"
	case StatusExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Placement records a variant placed on the canvas.
type Placement struct {
	// Position is the anchor of the tile.
	Position image.Point `json:"position"`
	Variant  int         `json:"variant"`
	// Pixels are the colors of the variant in row-major order.
	Pixels []ColorID `json:"pixels"`
	// Fixed contains the pixels that were not fixed before this placement.
	Fixed     []image.Point `json:"fixed"`
	Iteration int           `json:"iteration"`
	// Sequence is the position in the log of all placements and erasures,
	// starting with 1.
	Sequence int `json:"sequence"`
}

// Erasure records a region cleared to recover from a deadlock.
type Erasure struct {
	Rect      image.Rectangle `json:"rect"`
	Iteration int             `json:"iteration"`
	// Sequence shares its counter with Placement.Sequence.
	Sequence int           `json:"sequence"`
	Pixels   []image.Point `json:"pixels"`
}

// Stats contains some numbers about a run.
type Stats struct {
	Deadlocks    int `json:"deadlocks"`
	PixelsErased int `json:"pixels_erased"`
	Variants     int `json:"variants"`
	PaletteSize  int `json:"palette_size"`
	Placements   int `json:"placements"`
	Prefilled    int `json:"prefilled"`
}

// Result is the outcome of a run.
type Result struct {
	Status     Status
	Iterations int
	// Canvas is the synthesized image, pixels that are not fixed are
	// transparent.
	Canvas     image.Image
	Palette    Palette
	Placements []Placement
	Erasures   []Erasure
	// Analysis is only recorded if Config.Analysis is set.
	Analysis []AnalysisEvent
	Stats    Stats
}

// Synthesizer generates an image from the tiles of a source image. A
// synthesizer is used for exactly one run and is not safe for concurrent use.
type Synthesizer struct {
	cfg        Config
	palette    Palette
	lookup     map[Color]ColorID
	catalog    *Catalog
	compat     *CompatibilityIndex
	distances  *DistanceModel
	canvas     *Canvas
	candidates *candidateTable
	balance    *ColorBalance
	policy     *SelectionPolicy
	heap       *AnchorHeap
	rng        *rand.Rand

	// version of the last entry pushed for an anchor
	pushed    map[image.Point]uint64
	bootstrap image.Point

	status     Status
	iteration  int
	sequence   int
	placements []Placement
	// index in placements of all placements that are still complete on the
	// canvas, by anchor
	live     map[image.Point]int
	erasures []Erasure
	analysis []AnalysisEvent
	stats    Stats

	regions        map[image.Point]*regionFailure
	contradictions []image.Point
	prefill        map[image.Point]ColorID
	pending        []image.Point
	pendingSet     map[image.Point]struct{}
}

// NewSynthesizer creates the catalog, distance model and compatibility index
// for source and seeds the canvas with prefill (which may be nil).
// A bounded output is enlarged if the prefill doesn't fit into it.
//
// Errors are ErrInvalidConfig, ErrSourceTooSmall, ErrPrefillUnusable and
// ErrPrefillConflict (wrapped with more information).
func NewSynthesizer(source, prefill image.Image, cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, palette := GridFromImage(source)
	catalog, catalogErr := NewCatalog(grid, len(palette), TileSize, cfg.Rotate, cfg.Mirror)
	if catalogErr != nil {
		return nil, catalogErr
	}
	lookup := palette.Lookup()
	var pixels []prefillPixel
	width, height := cfg.Dimensions()
	if prefill != nil {
		var prefillErr error
		pixels, prefillErr = readPrefill(prefill, lookup)
		if prefillErr != nil {
			return nil, prefillErr
		}
		width, height = fitPrefill(width, height, pixels)
	}
	metric, _ := GetPointMetric(cfg.DistanceMetric)
	distances := NewDistanceModel(grid, len(palette), cfg.InfluenceDistance, metric)
	compat := NewCompatibilityIndex(catalog)
	if compat.ShouldPrecompute() {
		compat.Precompute(cfg.NumRoutines)
	}
	canvas := NewCanvas(width, height)
	balance := NewColorBalance(GenHistogram(grid, len(palette)).Normalize(), cfg.BalanceStrength)
	s := &Synthesizer{
		cfg:        cfg,
		palette:    palette,
		lookup:     lookup,
		catalog:    catalog,
		compat:     compat,
		distances:  distances,
		canvas:     canvas,
		candidates: newCandidateTable(catalog, canvas),
		balance:    balance,
		policy:     NewSelectionPolicy(catalog, canvas, balance, distances, cfg.DistanceStrength),
		heap:       NewAnchorHeap(BufferSize),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		pushed:     make(map[image.Point]uint64),
		status:     StatusRunning,
		live:       make(map[image.Point]int),
		regions:    make(map[image.Point]*regionFailure),
		prefill:    make(map[image.Point]ColorID),
		pendingSet: make(map[image.Point]struct{}),
		stats: Stats{
			Variants:    catalog.Len(),
			PaletteSize: len(palette),
		},
	}
	if canvas.Bounded() {
		s.bootstrap = image.Pt(width/2, height/2)
	}
	log.WithFields(log.Fields{
		"variants":    catalog.Len(),
		"colors":      len(palette),
		"precomputed": compat.ShouldPrecompute(),
	}).Debug("Built tile catalog")
	if prefill != nil {
		if err := s.seedPrefill(pixels); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// prefillPixel is a pixel of the prefill image with a color of the source.
type prefillPixel struct {
	pos image.Point
	id  ColorID
}

// readPrefill returns all pixels of img whose color appears in the source,
// relative to the top left corner of img. Transparent pixels are ignored.
// If no pixel is left ErrPrefillUnusable is returned.
func readPrefill(img image.Image, lookup map[Color]ColorID) ([]prefillPixel, error) {
	bounds := img.Bounds()
	ignored := 0
	var res []prefillPixel
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ConvertColor(img.At(x, y))
			if c.A == 0 {
				continue
			}
			id, has := lookup[c]
			if !has {
				ignored++
				continue
			}
			res = append(res, prefillPixel{pos: image.Pt(x-bounds.Min.X, y-bounds.Min.Y), id: id})
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %dx%d prefill, %d pixels with other colors",
			ErrPrefillUnusable, bounds.Dx(), bounds.Dy(), ignored)
	}
	if ignored > 0 {
		log.WithField("ignored", ignored).Debug("Prefill pixels with colors not in the source are ignored")
	}
	return res, nil
}

// fitPrefill enlarges a bounded output so that it contains all prefill
// pixels. Unbounded outputs are returned unchanged.
func fitPrefill(width, height int, pixels []prefillPixel) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	newWidth, newHeight := width, height
	for _, p := range pixels {
		newWidth = IntMax(newWidth, p.pos.X+1)
		newHeight = IntMax(newHeight, p.pos.Y+1)
	}
	if newWidth != width || newHeight != height {
		log.WithFields(log.Fields{
			"width":  newWidth,
			"height": newHeight,
		}).Warn("Generation bounds expanded to accommodate prefill image")
	}
	return newWidth, newHeight
}

// seedPrefill fixes the prefill pixels and checks that they can be covered
// by tiles.
func (s *Synthesizer) seedPrefill(pixels []prefillPixel) error {
	points := make([]image.Point, 0, len(pixels))
	for _, p := range pixels {
		if err := s.fixPixel(p.pos, p.id); err != nil {
			return err
		}
		s.prefill[p.pos] = p.id
		points = append(points, p.pos)
	}
	s.stats.Prefilled = len(points)
	anchors := s.anchorsCovering(points)
	for _, a := range anchors {
		if !validAnchor(s.canvas, s.catalog, a) || footprintState(s.canvas, s.catalog, a) < 2 {
			continue
		}
		if s.candidates.at(a).count == 0 {
			return fmt.Errorf("%w: no tile matches the prefill around %v", ErrPrefillConflict, a)
		}
	}
	for _, a := range anchors {
		s.evaluate(a)
	}
	s.resolve()
	return nil
}

// nextSequence returns the sequence number of the next placement or erasure.
func (s *Synthesizer) nextSequence() int {
	s.sequence++
	return s.sequence
}

// Step performs one iteration: restore erased prefill pixels, select an
// anchor and a variant and place it, recovering from deadlocks if required.
func (s *Synthesizer) Step() Status {
	if s.status != StatusRunning {
		return s.status
	}
	if len(s.pending) == 0 {
		if _, ok := s.peekAnchor(); !ok {
			s.finish(StatusComplete)
			return s.status
		}
	}
	if s.iteration >= s.cfg.MaxIterations {
		s.finish(StatusExhausted)
		return s.status
	}
	s.iteration++
	s.restorePrefill()
	if anchor, ok := s.nextAnchor(); ok {
		s.placeAt(anchor)
	}
	s.forgetRegions()
	if Debug {
		if err := s.checkCandidates(); err != nil {
			log.WithError(err).Error("Inconsistent candidate sets")
		}
	}
	return s.status
}

// Run calls Step until the run is complete or exhausted. progress is called
// after each iteration with the number of iterations so far.
func (s *Synthesizer) Run(progress ProgressFunc) *Result {
	for s.Step() == StatusRunning {
		if progress != nil {
			progress(s.iteration)
		}
	}
	return s.Result()
}

func (s *Synthesizer) finish(status Status) {
	s.status = status
	log.WithFields(log.Fields{
		"status":     status,
		"iterations": s.iteration,
		"pixels":     s.canvas.Len(),
		"placements": len(s.placements),
		"deadlocks":  s.stats.Deadlocks,
	}).Info("Synthesis finished")
}

// Status returns the current status.
func (s *Synthesizer) Status() Status {
	return s.status
}

// Iterations returns the number of iterations performed so far.
func (s *Synthesizer) Iterations() int {
	return s.iteration
}

// Canvas returns the canvas. It must not be modified.
func (s *Synthesizer) Canvas() *Canvas {
	return s.canvas
}

// Catalog returns the tile catalog of the source.
func (s *Synthesizer) Catalog() *Catalog {
	return s.catalog
}

// Palette returns the palette of the source.
func (s *Synthesizer) Palette() Palette {
	return s.palette
}

// Placements returns the log of all placements, including those that have
// been erased later.
func (s *Synthesizer) Placements() []Placement {
	return s.placements
}

// LivePlacements returns the placements whose footprint is still completely
// on the canvas, in the order in which they were placed.
func (s *Synthesizer) LivePlacements() []Placement {
	indices := make([]int, 0, len(s.live))
	for _, i := range s.live {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	res := make([]Placement, len(indices))
	for i, index := range indices {
		res[i] = s.placements[index]
	}
	return res
}

// Erasures returns all regions erased by deadlock recovery.
func (s *Synthesizer) Erasures() []Erasure {
	return s.erasures
}

// Stats returns statistics about the run.
func (s *Synthesizer) Stats() Stats {
	res := s.stats
	res.Placements = len(s.placements)
	return res
}

// Result returns the current result, usually called after Run.
func (s *Synthesizer) Result() *Result {
	return &Result{
		Status:     s.status,
		Iterations: s.iteration,
		Canvas:     s.canvas.Image(s.palette),
		Palette:    s.palette,
		Placements: s.placements,
		Erasures:   s.erasures,
		Analysis:   s.analysis,
		Stats:      s.Stats(),
	}
}

// Synthesize is a shortcut for creating a synthesizer and running it.
func Synthesize(source, prefill image.Image, cfg Config, progress ProgressFunc) (*Result, error) {
	s, err := NewSynthesizer(source, prefill, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(progress), nil
}
