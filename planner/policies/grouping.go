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

package policies

import (
	"maps"
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/pkg/errors"
)

// NodeLabels maps a node id to its labels.
type NodeLabels map[string]map[string]string

// Value returns the value of label on node id. Label names loaded through
// viper are lowercased, so a lowercase match is accepted too.
func (nl NodeLabels) Value(id string, label string) (string, bool) {
	labels := nl[id]
	if value, ok := labels[label]; ok {
		return value, true
	}
	value, ok := labels[strings.ToLower(label)]
	return value, ok
}

// LabelMap returns node id -> label value for the nodes that carry label.
func (nl NodeLabels) LabelMap(label string) map[string]string {
	res := make(map[string]string, len(nl))
	for id := range nl {
		if value, ok := nl.Value(id, label); ok {
			res[id] = value
		}
	}
	return res
}

// GroupByLabel returns label value -> nodes holding it, with both levels in
// ascending order. Nodes without the label are left out.
func (nl NodeLabels) GroupByLabel(label string) *treemap.Map {
	groups := treemap.NewWithStringComparator()
	for _, id := range slices.Sorted(maps.Keys(nl)) {
		value, ok := nl.Value(id, label)
		if !ok {
			continue
		}
		group, found := groups.Get(value)
		if !found {
			group = linkedhashset.New()
			groups.Put(value, group)
		}
		group.(*linkedhashset.Set).Add(id)
	}
	return groups
}

// Satisfiable checks that there are enough distinct label values to ever
// build a copyset of the given size under the anti-affinity.
func (a *AntiAffinity) Satisfiable(nl NodeLabels, replicas int) error {
	required := a.Spread
	if required == 0 {
		required = replicas
	}
	available := nl.GroupByLabel(a.Label).Size()
	if available < required {
		return errors.Wrapf(ErrUnsatisfiedAntiAffinity,
			"label=%s mode=%s required=%d available=%d", a.Label, a.Mode, required, available)
	}
	return nil
}
