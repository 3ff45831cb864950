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

import "errors"

var (
	// ErrSourceTooSmall is returned if the source image is smaller than the
	// tile footprint.
	ErrSourceTooSmall = errors.New("Source image is smaller than the tile size")

	// ErrPrefillConflict is returned if prefill pixels can't be covered by any
	// tile of the source.
	ErrPrefillConflict = errors.New("Prefill pixels conflict with each other")

	// ErrPrefillUnusable is returned if no pixel of the prefill image has a
	// color of the source.
	ErrPrefillUnusable = errors.New("Prefill image contains no colors from the source palette")

	// ErrInvalidConfig is returned for configurations that can't be used.
	ErrInvalidConfig = errors.New("Invalid configuration")

	// ErrContradiction is the internal error of trying to fix a pixel to a
	// color different from its current one. It is always resolved by
	// deadlock recovery and never returned by the synthesizer.
	ErrContradiction = errors.New("Contradiction")
)
