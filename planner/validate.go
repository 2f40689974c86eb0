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

package planner

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/streamnative/copysets/common/collection"
	"github.com/streamnative/copysets/copyset"
	"github.com/streamnative/copysets/planner/model"
)

var ErrInvalidPlan = errors.New("invalid plan")

// Validate checks an existing list of copysets against cfg and reports every
// violation found: wrong sizes, repeated members, unknown nodes, duplicates,
// rejections by the strict policies and nodes below the scatter width.
func Validate(cfg *model.ClusterConfig, copysets [][]string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	nodes := collection.NewSetFrom(cfg.NodeIDs())
	checker, err := cfg.Policies.Checker(cfg.NodeLabels(), cfg.Replicas, false)
	if err != nil {
		return err
	}

	var res error
	accepted := make([]copyset.Copyset[string], 0, len(copysets))
	for _, members := range copysets {
		cs := copyset.NewCopyset(members...)
		if cs.Len() != len(members) {
			res = multierr.Append(res, errors.Wrapf(ErrInvalidPlan, "copyset %v has repeated nodes", members))
			continue
		}
		if cs.Len() != cfg.Replicas {
			res = multierr.Append(res, errors.Wrapf(ErrInvalidPlan, "copyset %v has %d nodes, expected %d",
				members, cs.Len(), cfg.Replicas))
		}

		unknown := false
		for _, n := range cs {
			if !nodes.Contains(n) {
				res = multierr.Append(res, errors.Wrapf(ErrInvalidPlan, "copyset %v holds unknown node '%s'", members, n))
				unknown = true
			}
		}

		duplicate := false
		for _, other := range accepted {
			if other.Equal(cs) {
				res = multierr.Append(res, errors.Wrapf(ErrInvalidPlan, "copyset %v is repeated", members))
				duplicate = true
				break
			}
		}

		if !unknown {
			ok, err := checker.Check(accepted, cs)
			switch {
			case err != nil:
				res = multierr.Append(res, err)
			case !ok:
				res = multierr.Append(res, errors.Wrapf(ErrInvalidPlan, "copyset %v violates the placement policies", members))
			}
		}

		if !duplicate {
			accepted = append(accepted, cs)
		}
	}

	widths := copyset.ScatterWidths(accepted)
	for _, n := range cfg.NodeIDs() {
		if widths[n] < cfg.ScatterWidth {
			res = multierr.Append(res, errors.Wrapf(ErrInvalidPlan, "node '%s' has scatter width %d, expected %d",
				n, widths[n], cfg.ScatterWidth))
		}
	}
	return res
}
