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
	"container/heap"
	"image"
)

// AnchorHeapEntry is an entry stored in an anchor heap. It consists of an
// anchor position, the number of candidates at the time it was pushed and a
// random key used to break ties.
type AnchorHeapEntry struct {
	Anchor image.Point
	Count  int
	Key    int64
	// version is the version of the candidate set at push time, entries with
	// an outdated version are skipped.
	version uint64
}

// anchorHeapInterface is an internal type that implements heap.Interface.
type anchorHeapInterface []AnchorHeapEntry

func newAnchorHeapInterface(capacity int) *anchorHeapInterface {
	if capacity < 1 {
		capacity = 100
	}
	res := make(anchorHeapInterface, 0, capacity)
	return &res
}

func (h anchorHeapInterface) Len() int {
	return len(h)
}

func (h anchorHeapInterface) Less(i, j int) bool {
	a, b := h[i], h[j]
	switch {
	case a.Count != b.Count:
		return a.Count < b.Count
	case a.Key != b.Key:
		return a.Key < b.Key
	default:
		return pointLess(a.Anchor, b.Anchor)
	}
}

func (h anchorHeapInterface) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *anchorHeapInterface) Push(x interface{}) {
	*h = append(*h, x.(AnchorHeapEntry))
}

func (h *anchorHeapInterface) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// AnchorHeap is a priority queue of anchors, the anchor with the fewest
// candidates is returned first.
//
// Entries are never updated in place. If the candidates of an anchor change
// a new entry is pushed and the old one is discarded when it is popped.
type AnchorHeap struct {
	interf *anchorHeapInterface
}

// NewAnchorHeap returns an empty heap.
func NewAnchorHeap(capacity int) *AnchorHeap {
	return &AnchorHeap{newAnchorHeapInterface(capacity)}
}

// Push adds a new entry.
func (h *AnchorHeap) Push(entry AnchorHeapEntry) {
	heap.Push(h.interf, entry)
}

// Pop removes the entry with the fewest candidates. The second return value is
// false if the heap is empty.
func (h *AnchorHeap) Pop() (AnchorHeapEntry, bool) {
	if h.interf.Len() == 0 {
		return AnchorHeapEntry{}, false
	}
	return heap.Pop(h.interf).(AnchorHeapEntry), true
}

// Peek returns the entry with the fewest candidates without removing it.
func (h *AnchorHeap) Peek() (AnchorHeapEntry, bool) {
	if h.interf.Len() == 0 {
		return AnchorHeapEntry{}, false
	}
	return (*h.interf)[0], true
}

// Len returns the number of entries, including outdated ones.
func (h *AnchorHeap) Len() int {
	return h.interf.Len()
}

// Clear removes all entries.
func (h *AnchorHeap) Clear() {
	*h.interf = (*h.interf)[:0]
}
