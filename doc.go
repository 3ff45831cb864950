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

// Package greedytile synthesizes new images from a small source image by
// greedily placing overlapping tiles sampled from the source.
//
// Every 3x3 window of the source becomes a tile variant (optionally together
// with its rotations and reflections). The synthesizer keeps for each open
// anchor position on the output canvas the set of variants that still agree
// with all pixels fixed so far, always resolves the most constrained anchor
// first and draws a variant weighted by its source frequency, a color balance
// correction and a fit against the color distance statistics of the source.
// Contradictions are resolved by erasing a local region around the conflict,
// widening the region each time the same area fails again.
//
// It ships with an executable (cmd/greedytile) that processes single images or
// whole directories and can render the placement history as an animated GIF.
package greedytile
