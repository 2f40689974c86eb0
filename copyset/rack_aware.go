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
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

type RackOption func(*rackOptions)

type rackOptions struct {
	spread       int
	replicas     int
	allowGreater bool
}

// WithSpread sets the number of distinct racks a full copyset must span.
// Zero leaves it unset, meaning every member has to be in its own rack.
func WithSpread(spread int) RackOption {
	return func(o *rackOptions) {
		o.spread = spread
	}
}

// WithReplicas sets the size of a full copyset. Together with WithSpread it
// lets partial candidates through as long as they can still reach the spread.
func WithReplicas(replicas int) RackOption {
	return func(o *rackOptions) {
		o.replicas = replicas
	}
}

// WithAllowGreater accepts copysets spanning more racks than the spread.
func WithAllowGreater() RackOption {
	return func(o *rackOptions) {
		o.allowGreater = true
	}
}

var _ Checker[string] = &rackAware[string, int]{}

type rackAware[N constraints.Ordered, K comparable] struct {
	rackMap map[N]K
	rackOptions
}

// NewRackAware returns a checker ensuring that a candidate can still be
// extended to a copyset spanning exactly `spread` racks, or at least
// `spread` racks when WithAllowGreater is set.
//
// rackMap must hold an entry for every node the builder may consider: a
// node without a rack fails the build with a MissingTopologyMappingError.
func NewRackAware[N constraints.Ordered, K comparable](rackMap map[N]K, opts ...RackOption) (Checker[N], error) {
	c := &rackAware[N, K]{rackMap: rackMap}
	for _, opt := range opts {
		opt(&c.rackOptions)
	}
	if c.spread < 0 || c.replicas < 0 {
		return nil, errors.Wrapf(ErrInvalidSpread, "spread=%d replicas=%d", c.spread, c.replicas)
	}
	if c.spread > 0 && c.replicas > 0 && c.spread > c.replicas {
		return nil, errors.Wrapf(ErrInvalidSpread, "spread=%d replicas=%d", c.spread, c.replicas)
	}
	return c, nil
}

func (c *rackAware[N, K]) Check(_ []Copyset[N], candidate Copyset[N]) (bool, error) {
	spread, target := c.spread, c.spread
	switch {
	case spread == 0:
		spread = candidate.Len()
		target = spread
	case c.replicas > 0:
		// The target tightens as the candidate grows and reaches the spread
		// once it holds all the replicas.
		target = spread - c.replicas + candidate.Len()
	}

	racks := make(map[K]struct{}, candidate.Len())
	for _, node := range candidate {
		rack, ok := c.rackMap[node]
		if !ok {
			return false, &MissingTopologyMappingError{Checker: "rack", Node: node}
		}
		racks[rack] = struct{}{}
	}

	if c.allowGreater {
		return len(racks) >= target, nil
	}
	return len(racks) >= target && len(racks) <= spread, nil
}
