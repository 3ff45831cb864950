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
	"image/color"
)

var testColors = map[byte]color.NRGBA{
	'R': {R: 255, A: 255},
	'G': {G: 255, A: 255},
	'B': {B: 255, A: 255},
	'K': {A: 255},
	'W': {R: 255, G: 255, B: 255, A: 255},
	'Y': {R: 255, G: 255, A: 255},
	'C': {G: 255, B: 255, A: 255},
	'M': {R: 255, B: 255, A: 255},
	'O': {R: 255, G: 128, A: 255},
	'.': {},
}

// imageFromRows creates an image where each character is a pixel, see
// testColors.
func imageFromRows(rows ...string) *image.NRGBA {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	res := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			res.SetNRGBA(x, y, testColors[row[x]])
		}
	}
	return res
}

func gridFromRows(rows ...string) (*ColorGrid, Palette) {
	return GridFromImage(imageFromRows(rows...))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NumRoutines = 2
	return cfg
}

var (
	uniformSource = []string{"RRR", "RRR", "RRR"}
	stripeSource  = []string{"RRRBB", "RRRBB", "RRRBB"}
	checkerSource = []string{
		"RRBBRRBB",
		"RRBBRRBB",
		"BBRRBBRR",
		"BBRRBBRR",
		"RRBBRRBB",
		"RRBBRRBB",
	}
)
