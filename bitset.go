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

import "math/bits"

// Bitset is a fixed size set of small non-negative integers, used for sets of
// variant ids.
type Bitset struct {
	words []uint64
	n     int
}

// NewBitset returns an empty set that can hold the values 0 ≤ i < n.
func NewBitset(n int) Bitset {
	return Bitset{words: make([]uint64, (n+63)/64), n: n}
}

// FullBitset returns a set containing all values 0 ≤ i < n.
func FullBitset(n int) Bitset {
	res := NewBitset(n)
	for i := range res.words {
		res.words[i] = ^uint64(0)
	}
	res.trim()
	return res
}

// trim clears the unused bits of the last word.
func (b Bitset) trim() {
	if rest := b.n % 64; rest != 0 && len(b.words) > 0 {
		b.words[len(b.words)-1] &= (uint64(1) << uint(rest)) - 1
	}
}

// Cap returns the number of values the set can hold.
func (b Bitset) Cap() int {
	return b.n
}

// Set adds i.
func (b Bitset) Set(i int) {
	b.words[i>>6] |= uint64(1) << uint(i&63)
}

// Unset removes i.
func (b Bitset) Unset(i int) {
	b.words[i>>6] &^= uint64(1) << uint(i&63)
}

// Has reports whether i is in the set.
func (b Bitset) Has(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i>>6]&(uint64(1)<<uint(i&63)) != 0
}

// Count returns the number of elements.
func (b Bitset) Count() int {
	res := 0
	for _, w := range b.words {
		res += bits.OnesCount64(w)
	}
	return res
}

// Empty reports whether the set has no elements.
func (b Bitset) Empty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of the set.
func (b Bitset) Clone() Bitset {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return Bitset{words: words, n: b.n}
}

// IntersectWith removes all elements not in other and returns the number of
// remaining elements. Both sets must have the same capacity.
func (b Bitset) IntersectWith(other Bitset) int {
	res := 0
	for i, w := range other.words {
		b.words[i] &= w
		res += bits.OnesCount64(b.words[i])
	}
	return res
}

// Equal reports whether both sets contain the same elements.
func (b Bitset) Equal(other Bitset) bool {
	if b.n != other.n {
		return false
	}
	for i, w := range b.words {
		if other.words[i] != w {
			return false
		}
	}
	return true
}

// Elements returns all elements in ascending order.
func (b Bitset) Elements() []int {
	res := make([]int, 0, b.Count())
	for i, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			res = append(res, i*64+tz)
			w &= w - 1
		}
	}
	return res
}
