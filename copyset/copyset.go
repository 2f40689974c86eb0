// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package copyset computes copysets with the Tiered Replication algorithm.
//
// A copyset is a group of R nodes that is used as a single replica placement
// unit. Build produces a small collection of copysets such that every node
// shares at least one copyset with S other nodes (its scatter width), while a
// Checker rejects candidates that violate topology rules such as rack
// diversity or tier composition.
//
// See https://www.usenix.org/conference/atc15/technical-session/presentation/cidon
package copyset

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Copyset is a set of distinct nodes kept in ascending order.
type Copyset[N constraints.Ordered] []N

// NewCopyset returns the copyset holding the given nodes, sorted and
// without duplicates. The input slice is not modified.
func NewCopyset[N constraints.Ordered](nodes ...N) Copyset[N] {
	c := slices.Clone(nodes)
	slices.Sort(c)
	return slices.Compact(c)
}

func (c Copyset[N]) Len() int {
	return len(c)
}

func (c Copyset[N]) Contains(n N) bool {
	_, found := slices.BinarySearch(c, n)
	return found
}

func (c Copyset[N]) Equal(other Copyset[N]) bool {
	return slices.Equal(c, other)
}

// With returns a new copyset that also holds n. The receiver is left untouched,
// which lets the builder try an extension and drop it if it is rejected.
func (c Copyset[N]) With(n N) Copyset[N] {
	idx, found := slices.BinarySearch(c, n)
	if found {
		return slices.Clone(c)
	}
	res := make(Copyset[N], 0, len(c)+1)
	res = append(res, c[:idx]...)
	res = append(res, n)
	return append(res, c[idx:]...)
}

func (c Copyset[N]) Compare(other Copyset[N]) int {
	return slices.Compare(c, other)
}

func containsCopyset[N constraints.Ordered](copysets []Copyset[N], c Copyset[N]) bool {
	return slices.ContainsFunc(copysets, c.Equal)
}

// Sort orders copysets lexicographically by their sorted members.
func Sort[N constraints.Ordered](copysets []Copyset[N]) {
	slices.SortFunc(copysets, Copyset[N].Compare)
}
