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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorHeapOrder(t *testing.T) {
	h := NewAnchorHeap(0)
	_, ok := h.Pop()
	assert.False(t, ok)

	h.Push(AnchorHeapEntry{Anchor: image.Pt(0, 0), Count: 3, Key: 1})
	h.Push(AnchorHeapEntry{Anchor: image.Pt(5, 0), Count: 1, Key: 7})
	h.Push(AnchorHeapEntry{Anchor: image.Pt(2, 1), Count: 1, Key: 2})
	h.Push(AnchorHeapEntry{Anchor: image.Pt(1, 1), Count: 1, Key: 2})
	h.Push(AnchorHeapEntry{Anchor: image.Pt(3, 0), Count: 2, Key: 0})
	require.Equal(t, 5, h.Len())

	top, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, image.Pt(1, 1), top.Anchor)

	expected := []image.Point{
		image.Pt(1, 1), image.Pt(2, 1), image.Pt(5, 0), image.Pt(3, 0), image.Pt(0, 0),
	}
	for _, p := range expected {
		entry, ok := h.Pop()
		require.True(t, ok)
		assert.Equal(t, p, entry.Anchor)
	}
	assert.Equal(t, 0, h.Len())

	h.Push(AnchorHeapEntry{Count: 1})
	h.Clear()
	_, ok = h.Peek()
	assert.False(t, ok)
}
