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
	"errors"
	"image"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paritySource tiles in exactly one way once a pixel is known.
var paritySource = []string{"RBRB", "BRBR", "RBRB", "BRBR"}

func newTestSynthesizer(t *testing.T, cfg Config, prefill image.Image, rows ...string) *Synthesizer {
	s, err := NewSynthesizer(imageFromRows(rows...), prefill, cfg)
	require.NoError(t, err)
	return s
}

// assertLiveConsistent checks that every live placement still matches the
// canvas.
func assertLiveConsistent(t *testing.T, s *Synthesizer) {
	offsets := s.Catalog().Offsets()
	for _, p := range s.LivePlacements() {
		for i, o := range offsets {
			assert.Equal(t, p.Pixels[i], s.Canvas().At(p.Position.Add(o)),
				"placement %d at %v", p.Sequence, p.Position)
		}
	}
}

func TestSynthesizeUniformComplete(t *testing.T) {
	for _, dims := range []image.Point{{3, 3}, {10, 10}, {5, 7}} {
		cfg := testConfig()
		cfg.Width, cfg.Height = dims.X, dims.Y
		res, err := Synthesize(imageFromRows(uniformSource...), nil, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusComplete, res.Status, "dimensions %v", dims)
		assert.Equal(t, image.Rect(0, 0, dims.X, dims.Y), res.Canvas.Bounds())
		for y := 0; y < dims.Y; y++ {
			for x := 0; x < dims.X; x++ {
				assert.Equal(t, ConvertColor(testColors['R']), ConvertColor(res.Canvas.At(x, y)))
			}
		}
		assert.Equal(t, 0, res.Stats.Deadlocks)
		assert.Equal(t, len(res.Placements), res.Stats.Placements)
		assert.True(t, res.Iterations <= cfg.MaxIterations)
	}
}

func TestSynthesizeSingleTile(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 3, 3
	s := newTestSynthesizer(t, cfg, nil, uniformSource...)
	assert.Equal(t, StatusRunning, s.Step())
	require.Len(t, s.Placements(), 1)
	p := s.Placements()[0]
	assert.Equal(t, image.Pt(1, 1), p.Position)
	assert.Equal(t, 1, p.Sequence)
	assert.Len(t, p.Fixed, 9)
	assert.Equal(t, StatusComplete, s.Step())
	assert.Equal(t, 1, s.Iterations())
	// finished runs don't change anymore
	assert.Equal(t, StatusComplete, s.Step())
	assert.Equal(t, 1, s.Iterations())
}

func TestSynthesizeDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 12, 12
	cfg.Rotate, cfg.Mirror = true, true
	cfg.MaxIterations = 300
	run := func() *Result {
		res, err := Synthesize(imageFromRows(checkerSource...), nil, cfg, nil)
		require.NoError(t, err)
		return res
	}
	first, second := run(), run()
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Iterations, second.Iterations)
	assert.Equal(t, first.Placements, second.Placements)
	assert.Equal(t, first.Erasures, second.Erasures)
	assert.Equal(t, first.Canvas, second.Canvas)
}

func TestSynthesizeCandidatesConsistent(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 12, 12
	cfg.Rotate, cfg.Mirror = true, true
	cfg.MaxIterations = 300
	s := newTestSynthesizer(t, cfg, nil, checkerSource...)
	for s.Step() == StatusRunning {
		require.NoError(t, s.checkCandidates(), "iteration %d", s.Iterations())
		assertLiveConsistent(t, s)
	}
	require.NoError(t, s.checkCandidates())
	assertLiveConsistent(t, s)
	if s.Status() == StatusComplete {
		assert.Equal(t, 144, s.Canvas().Len())
	}
}

func TestSynthesizeParity(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 9, 6
	res, err := Synthesize(imageFromRows(paritySource...), nil, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, 0, res.Stats.Deadlocks)
	first := ConvertColor(res.Canvas.At(0, 0))
	for y := 0; y < 6; y++ {
		for x := 0; x < 9; x++ {
			c := ConvertColor(res.Canvas.At(x, y))
			if (x+y)%2 == 0 {
				assert.Equal(t, first, c)
			} else {
				assert.NotEqual(t, first, c)
			}
		}
	}
}

func TestSynthesizePrefill(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	prefill := imageFromRows(".B.", "...", "...")
	s := newTestSynthesizer(t, cfg, prefill, paritySource...)
	assert.Equal(t, 1, s.Stats().Prefilled)
	res := s.Run(nil)
	require.Equal(t, StatusComplete, res.Status)
	red, blue := ConvertColor(testColors['R']), ConvertColor(testColors['B'])
	assert.Equal(t, blue, ConvertColor(res.Canvas.At(1, 0)))
	assert.Equal(t, red, ConvertColor(res.Canvas.At(0, 0)))
	assert.Equal(t, red, ConvertColor(res.Canvas.At(9, 9)))
}

func TestSynthesizePrefillOutside(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	cfg := testConfig()
	cfg.Width, cfg.Height = 3, 3
	// the bottom right pixel lies outside of the requested canvas
	prefill := imageFromRows("R...", "....", "....", "...R")
	s := newTestSynthesizer(t, cfg, prefill, uniformSource...)
	assert.Equal(t, image.Rect(0, 0, 4, 4), s.Canvas().Area())
	assert.Equal(t, 2, s.Stats().Prefilled)
	assert.True(t, s.Canvas().IsFixed(image.Pt(3, 3)))
	res := s.Run(nil)
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, image.Rect(0, 0, 4, 4), res.Canvas.Bounds())
	assert.Equal(t, 16, s.Canvas().Len())

	var warning *log.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			warning = e
		}
	}
	require.NotNil(t, warning)
	assert.Equal(t, "Generation bounds expanded to accommodate prefill image", warning.Message)
	assert.Equal(t, 4, warning.Data["width"])
	assert.Equal(t, 4, warning.Data["height"])
}

func TestSynthesizePrefillInside(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	cfg := testConfig()
	cfg.Width, cfg.Height = 5, 5
	s := newTestSynthesizer(t, cfg, imageFromRows("R"), uniformSource...)
	assert.Equal(t, image.Rect(0, 0, 5, 5), s.Canvas().Area())
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, log.WarnLevel, e.Level, e.Message)
	}
}

func TestSynthesizePrefillUnusable(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 5, 5
	for _, rows := range [][]string{{"G"}, {"..", ".."}, {"G.", ".B"}} {
		_, err := NewSynthesizer(imageFromRows(uniformSource...), imageFromRows(rows...), cfg)
		assert.True(t, errors.Is(err, ErrPrefillUnusable), "prefill %v", rows)
	}
	// pixels with other colors are ignored as long as one pixel is usable
	s := newTestSynthesizer(t, cfg, imageFromRows("GR"), uniformSource...)
	assert.Equal(t, 1, s.Stats().Prefilled)
}

func TestSynthesizePrefillConflict(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	prefill := imageFromRows("R", "B")
	_, err := NewSynthesizer(imageFromRows(stripeSource...), prefill, cfg)
	assert.True(t, errors.Is(err, ErrPrefillConflict))
}

func TestSynthesizeExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	cfg.MaxIterations = 2
	s := newTestSynthesizer(t, cfg, nil, uniformSource...)
	res := s.Run(nil)
	assert.Equal(t, StatusExhausted, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.Len(t, res.Placements, 2)
	assert.True(t, s.Canvas().Len() < 100)
}

func TestSynthesizeUnbounded(t *testing.T) {
	cfg := testConfig()
	cfg.MaxIterations = 20
	calls := 0
	res, err := Synthesize(imageFromRows(uniformSource...), nil, cfg, func(int) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, StatusExhausted, res.Status)
	assert.Equal(t, 20, res.Iterations)
	assert.Equal(t, 20, calls)
	assert.Len(t, res.Placements, 20)
	assert.False(t, res.Canvas.Bounds().Empty())
}

func TestSynthesizeErrors(t *testing.T) {
	cfg := testConfig()
	_, err := NewSynthesizer(imageFromRows("RR", "RR"), nil, cfg)
	assert.True(t, errors.Is(err, ErrSourceTooSmall))

	cfg.MaxIterations = -1
	_, err = NewSynthesizer(imageFromRows(uniformSource...), nil, cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = testConfig()
	cfg.Width, cfg.Height = 2, 10
	_, err = NewSynthesizer(imageFromRows(uniformSource...), nil, cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRecoveryRadius(t *testing.T) {
	assert.Equal(t, 2, recoveryRadius(1, 1))
	assert.Equal(t, 4, recoveryRadius(1, 2))
	assert.Equal(t, 8, recoveryRadius(1, 3))
	assert.Equal(t, 2<<maxRecoveryShift, recoveryRadius(1, 100))
	assert.Equal(t, 2, recoveryRadius(1, 0))
}

func TestRegionKey(t *testing.T) {
	assert.Equal(t, image.Pt(0, 0), regionKey(image.Pt(5, 5), 3))
	assert.Equal(t, image.Pt(-1, -1), regionKey(image.Pt(-1, -1), 3))
	assert.Equal(t, image.Pt(1, -2), regionKey(image.Pt(6, -7), 3))
	assert.Equal(t, image.Pt(-1, 0), regionKey(image.Pt(-6, 0), 3))
}

func TestRecoverErasesRegion(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	s := newTestSynthesizer(t, cfg, nil, uniformSource...)
	require.Equal(t, StatusComplete, s.Run(nil).Status)
	before := len(s.LivePlacements())

	s.recoverAt(image.Pt(5, 5))
	assert.Equal(t, 75, s.Canvas().Len())
	require.Len(t, s.Erasures(), 1)
	assert.Equal(t, image.Rect(3, 3, 8, 8), s.Erasures()[0].Rect)
	assert.Len(t, s.Erasures()[0].Pixels, 25)
	assert.Equal(t, 1, s.Stats().Deadlocks)
	assert.Equal(t, 25, s.Stats().PixelsErased)
	assert.True(t, len(s.LivePlacements()) < before)
	assertLiveConsistent(t, s)
	assert.Equal(t, 75, s.balance.Total())

	// continue the run
	s.status = StatusRunning
	require.Equal(t, StatusComplete, s.Run(nil).Status)
	assert.Equal(t, 100, s.Canvas().Len())
	require.NoError(t, s.checkCandidates())

	// the same region fails again, the radius doubles
	s.recoverAt(image.Pt(5, 5))
	require.Len(t, s.Erasures(), 2)
	assert.Equal(t, image.Rect(1, 1, 10, 10), s.Erasures()[1].Rect)
	assert.Equal(t, 19, s.Canvas().Len())
}

func TestRecoverClipsToArea(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	s := newTestSynthesizer(t, cfg, nil, uniformSource...)
	require.Equal(t, StatusComplete, s.Run(nil).Status)
	s.recoverAt(image.Pt(1, 1))
	assert.Equal(t, image.Rect(0, 0, 4, 4), s.Erasures()[0].Rect)
	assert.Equal(t, 84, s.Canvas().Len())
}

func TestRecoverRestoresPrefill(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	prefill := imageFromRows("R")
	s := newTestSynthesizer(t, cfg, prefill, paritySource...)
	require.Equal(t, StatusComplete, s.Run(nil).Status)

	s.recoverAt(image.Pt(1, 1))
	origin := image.Pt(0, 0)
	assert.False(t, s.Canvas().IsFixed(origin))
	assert.Len(t, s.pending, 1)

	s.status = StatusRunning
	s.Step()
	assert.Equal(t, ColorID(0), s.Canvas().At(origin))
	assert.Empty(t, s.pending)
	require.Equal(t, StatusComplete, s.Run(nil).Status)
	assert.Equal(t, ColorID(0), s.Canvas().At(origin))
	assert.Equal(t, 100, s.Canvas().Len())
	assertSequential(t, s)
}

// assertSequential checks that placements and erasures share one gap free
// sequence.
func assertSequential(t *testing.T, s *Synthesizer) {
	events := Events(s.Placements(), s.Erasures())
	require.Len(t, events, len(s.Placements())+len(s.Erasures()))
	for i, e := range events {
		assert.Equal(t, i+1, e.Sequence())
	}
}

func TestForgetRegions(t *testing.T) {
	cfg := testConfig()
	cfg.Width, cfg.Height = 10, 10
	cfg.RecoveryMemory = 1
	s := newTestSynthesizer(t, cfg, nil, uniformSource...)
	s.recoverAt(image.Pt(5, 5))
	require.Len(t, s.regions, 1)
	s.iteration++
	s.forgetRegions()
	assert.Empty(t, s.regions)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "Status(7)", Status(7).String())
}
