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
	"io"
	"math"
	"strings"
)

// Histogram describes the color distribution of an image. It either counts
// the number of pixels of each palette color or stores the relative frequency
// of each color (normalized histogram).
type Histogram struct {
	// Entries contains for each palette color the frequency.
	Entries []float64
}

// NewHistogram creates a new histogram for a palette of the given size.
func NewHistogram(paletteSize int) *Histogram {
	return &Histogram{make([]float64, paletteSize)}
}

// GenHistogram counts the colors of a grid.
func GenHistogram(grid *ColorGrid, paletteSize int) *Histogram {
	res := NewHistogram(paletteSize)
	for _, id := range grid.Pix {
		if id >= 0 {
			res.Entries[id]++
		}
	}
	return res
}

// String returns a tuple representation of the histogram.
func (h *Histogram) String() string {
	strs := make([]string, len(h.Entries))
	for i, entry := range h.Entries {
		strs[i] = fmt.Sprintf("%.2f", entry)
	}
	return "〈" + strings.Join(strs, ", ") + "〉"
}

// PrintInfo writes information about the histogram to w.
// If verbose is true it prints a formatted table of all frequencies, otherwise
// it prints the shorter tuple representation.
func (h *Histogram) PrintInfo(w io.Writer, palette Palette, verbose bool) {
	fmt.Fprintf(w, "Histogram of %d colors\n", len(h.Entries))
	if verbose {
		fmt.Fprintf(w, "%-4s %-10s %10s\n", "id", "color", "value")
		for i, entry := range h.Entries {
			fmt.Fprintf(w, "%-4d %-10s %10.4f\n", i, palette[i], entry)
		}
	} else {
		fmt.Fprintln(w, h)
	}
}

// Equals checks if two histograms are equal. epsilon is the difference
// between that is allowed to still consider them equal.
func (h *Histogram) Equals(other *Histogram, epsilon float64) bool {
	if len(h.Entries) != len(other.Entries) {
		return false
	}
	for i, e1 := range h.Entries {
		e2 := other.Entries[i]
		if math.Abs(e1-e2) > epsilon {
			return false
		}
	}
	return true
}

// Normalize returns the normalized histogram, that is each entry is divided
// by the sum of all entries. A histogram without any entries is returned as a
// copy.
func (h *Histogram) Normalize() *Histogram {
	var total float64
	for _, entry := range h.Entries {
		total += entry
	}
	res := NewHistogram(len(h.Entries))
	if total == 0 {
		copy(res.Entries, h.Entries)
		return res
	}
	for i, entry := range h.Entries {
		res.Entries[i] = entry / total
	}
	return res
}
