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

	"github.com/pkg/errors"

	"github.com/streamnative/copysets/copyset"
)

// Checker compiles the policies into a single copyset checker.
//
// Each anti-affinity becomes a rack aware checker over the values of its
// label. Relaxed anti-affinities are only included when includeRelaxed is
// set. The tiered policy is always included.
func (p *Policies) Checker(nl NodeLabels, replicas int, includeRelaxed bool) (copyset.Checker[string], error) {
	if p == nil {
		return copyset.AlwaysAccept[string](), nil
	}

	checkers := make([]copyset.Checker[string], 0, len(p.AntiAffinities)+1)
	for _, a := range p.AntiAffinities {
		if a.IsRelaxed() && !includeRelaxed {
			continue
		}
		c, err := a.Checker(nl, replicas)
		if err != nil {
			return nil, err
		}
		checkers = append(checkers, c)
	}

	if p.Tiered != nil {
		c, err := p.Tiered.Checker(nl, replicas)
		if err != nil {
			return nil, err
		}
		checkers = append(checkers, c)
	}

	if len(checkers) == 1 {
		return checkers[0], nil
	}
	return copyset.Composed(checkers...), nil
}

func (a *AntiAffinity) Checker(nl NodeLabels, replicas int) (copyset.Checker[string], error) {
	opts := []copyset.RackOption{copyset.WithSpread(a.Spread)}
	if a.Spread > 0 {
		opts = append(opts, copyset.WithReplicas(replicas))
	}
	if a.AllowGreater {
		opts = append(opts, copyset.WithAllowGreater())
	}

	c, err := copyset.NewRackAware(nl.LabelMap(a.Label), opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "anti-affinity on '%s'", a.Label)
	}
	return c, nil
}

// Checker returns a tiered checker over the nodes labelled as backups. Every
// node must carry the tier label.
func (t *Tiered) Checker(nl NodeLabels, replicas int) (copyset.Checker[string], error) {
	var backups []string
	for _, id := range slices.Sorted(maps.Keys(nl)) {
		value, ok := nl.Value(id, t.Label)
		if !ok {
			return nil, &copyset.MissingTopologyMappingError{Checker: "tier", Node: id}
		}
		if value == t.BackupValue {
			backups = append(backups, id)
		}
	}
	return copyset.NewTieredAware(backups, replicas)
}
