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

// Transform maps a coordinate of a transformed n×n tile back to the coordinate
// of the original tile it is taken from. Transforms are applied once when the
// catalog is built, never during synthesis.
type Transform func(x, y, n int) (int, int)

// Identity leaves a tile unchanged.
func Identity(x, y, n int) (int, int) {
	return x, y
}

// Rotate90 rotates a tile by 90° clockwise.
func Rotate90(x, y, n int) (int, int) {
	return y, n - 1 - x
}

// ReflectX mirrors a tile along the vertical axis.
func ReflectX(x, y, n int) (int, int) {
	return n - 1 - x, y
}

// ComposeTransforms returns the transform that first applies a and then b.
func ComposeTransforms(a, b Transform) Transform {
	return func(x, y, n int) (int, int) {
		bx, by := b(x, y, n)
		return a(bx, by, n)
	}
}

// TransformGroup returns the transforms enabled by rotate and mirror:
// the identity, the three rotations if rotate is true and the reflection of
// each of those if mirror is true.
func TransformGroup(rotate, mirror bool) []Transform {
	res := []Transform{Identity}
	if rotate {
		current := Transform(Identity)
		for i := 0; i < 3; i++ {
			current = ComposeTransforms(current, Rotate90)
			res = append(res, current)
		}
	}
	if mirror {
		n := len(res)
		for i := 0; i < n; i++ {
			res = append(res, ComposeTransforms(res[i], ReflectX))
		}
	}
	return res
}

// ApplyTransform returns the pixels of the n×n tile (row-major) transformed
// by t.
func ApplyTransform(pixels []ColorID, n int, t Transform) []ColorID {
	res := make([]ColorID, len(pixels))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			sx, sy := t(x, y, n)
			res[y*n+x] = pixels[sy*n+sx]
		}
	}
	return res
}
