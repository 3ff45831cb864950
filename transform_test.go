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
	"testing"

	"github.com/stretchr/testify/assert"
)

func identityTile() []ColorID {
	return []ColorID{0, 1, 2, 3, 4, 5, 6, 7, 8}
}

func TestRotate90(t *testing.T) {
	rotated := ApplyTransform(identityTile(), 3, Rotate90)
	assert.Equal(t, []ColorID{6, 3, 0, 7, 4, 1, 8, 5, 2}, rotated)
	// four rotations are the identity
	res := identityTile()
	for i := 0; i < 4; i++ {
		res = ApplyTransform(res, 3, Rotate90)
	}
	assert.Equal(t, identityTile(), res)
}

func TestReflectX(t *testing.T) {
	reflected := ApplyTransform(identityTile(), 3, ReflectX)
	assert.Equal(t, []ColorID{2, 1, 0, 5, 4, 3, 8, 7, 6}, reflected)
}

func TestTransformGroup(t *testing.T) {
	tests := []struct {
		rotate, mirror bool
		expected       int
	}{
		{false, false, 1},
		{true, false, 4},
		{false, true, 2},
		{true, true, 8},
	}
	for _, tc := range tests {
		group := TransformGroup(tc.rotate, tc.mirror)
		assert.Len(t, group, tc.expected)
		distinct := make(map[string]struct{})
		for _, transform := range group {
			distinct[tileKey(ApplyTransform(identityTile(), 3, transform))] = struct{}{}
		}
		assert.Len(t, distinct, tc.expected, "rotate = %v, mirror = %v", tc.rotate, tc.mirror)
	}
}
