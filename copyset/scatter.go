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

package copyset

import (
	"golang.org/x/exp/constraints"

	"github.com/streamnative/copysets/common/collection"
)

// ScatterWidths returns, for every node appearing in copysets, the number of
// distinct other nodes it shares at least one copyset with. Nodes that are in
// no copyset are absent from the result and have a scatter width of 0.
func ScatterWidths[N constraints.Ordered](copysets []Copyset[N]) map[N]int {
	coMembers := make(map[N]collection.Set[N])
	for _, c := range copysets {
		for _, n := range c {
			members, ok := coMembers[n]
			if !ok {
				members = collection.NewSet[N]()
				coMembers[n] = members
			}
			for _, other := range c {
				if other != n {
					members.Add(other)
				}
			}
		}
	}

	widths := make(map[N]int, len(coMembers))
	for n, members := range coMembers {
		widths[n] = members.Count()
	}
	return widths
}

// MinScatterWidth returns the lowest scatter width among nodes.
func MinScatterWidth[N constraints.Ordered](nodes []N, widths map[N]int) int {
	if len(nodes) == 0 {
		return 0
	}
	m := widths[nodes[0]]
	for _, n := range nodes[1:] {
		m = min(m, widths[n])
	}
	return m
}

func satisfied[N constraints.Ordered](nodes []N, widths map[N]int, scatterWidth int) bool {
	for _, n := range nodes {
		if widths[n] < scatterWidth {
			return false
		}
	}
	return true
}
