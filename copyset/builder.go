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
	"cmp"
	"log/slog"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Build returns copysets of `replicas` nodes drawn from nodes, such that every
// node reaches a scatter width of at least scatterWidth.
//
// The search is greedy and deterministic: nodes are visited in ascending
// order, and each node still below the target seeds a new copyset grown with
// the nodes that have the lowest scatter width so far. Every extension of
// the seed is submitted to checker, the seed alone never is; a nil checker
// accepts everything. initial seeds the
// result and is copied, never modified.
//
// When a whole pass over the nodes creates no copyset while some node is
// still below the target, Build fails with ErrInfeasibleConstraints. Errors
// returned by the checker abort the build as they are.
//
// The result is sorted: each copyset in ascending order, and the copysets
// lexicographically.
//
// By default scatter widths are refreshed after every seed node, so later
// seeds of a pass already see the copysets created before them. Use
// WithRefresh(RefreshAfterPass) to refresh them once per pass instead.
func Build[N constraints.Ordered](
	nodes []N,
	replicas int,
	scatterWidth int,
	checker Checker[N],
	initial []Copyset[N],
	opts ...Option) ([]Copyset[N], error) {
	switch {
	case replicas < 1:
		return nil, errors.Wrapf(ErrInvalidReplicas, "replicas=%d", replicas)
	case scatterWidth < 0:
		return nil, errors.Wrapf(ErrInvalidScatterWidth, "scatter-width=%d", scatterWidth)
	case len(nodes) == 0:
		return nil, ErrNoNodes
	}
	if checker == nil {
		checker = AlwaysAccept[N]()
	}

	b := &builder[N]{
		options:  newOptions(opts),
		nodes:    NewCopyset(nodes...),
		replicas: replicas,
		target:   scatterWidth,
		checker:  checker,
		accepted: make([]Copyset[N], 0, len(initial)),
	}
	if b.stats == nil {
		b.stats = &Stats{}
	}
	for _, c := range initial {
		b.accepted = append(b.accepted, NewCopyset(c...))
	}

	if err := b.run(); err != nil {
		return nil, err
	}

	Sort(b.accepted)
	return b.accepted, nil
}

type builder[N constraints.Ordered] struct {
	*options

	nodes    Copyset[N]
	replicas int
	target   int
	checker  Checker[N]

	accepted []Copyset[N]
	widths   map[N]int
}

func (b *builder[N]) run() error {
	b.widths = ScatterWidths(b.accepted)

	for !satisfied(b.nodes, b.widths, b.target) {
		b.stats.Passes++
		created := 0

		for _, seed := range b.nodes {
			if b.widths[seed] >= b.target {
				continue
			}
			if err := b.ctx.Err(); err != nil {
				return errors.Wrapf(err, "copyset build interrupted at pass %d", b.stats.Passes)
			}

			c, err := b.grow(seed)
			if err != nil {
				return err
			}
			if c != nil {
				b.accepted = append(b.accepted, c)
				b.stats.Created++
				created++
			}

			if b.refresh == RefreshAfterSeed {
				b.widths = ScatterWidths(b.accepted)
			}
		}

		if b.refresh != RefreshAfterSeed {
			b.widths = ScatterWidths(b.accepted)
		}

		b.logger.Debug(
			"Completed copyset pass",
			slog.Int("pass", b.stats.Passes),
			slog.Int("created", created),
			slog.Int("copysets", len(b.accepted)),
			slog.Int("min-scatter-width", MinScatterWidth(b.nodes, b.widths)),
		)

		if created == 0 {
			// Nothing changed, so no further pass can change anything either.
			return errors.Wrapf(ErrInfeasibleConstraints,
				"replicas=%d scatter-width=%d min-scatter-width=%d after pass %d",
				b.replicas, b.target, MinScatterWidth(b.nodes, b.widths), b.stats.Passes)
		}
	}
	return nil
}

// grow builds a copyset around seed, or returns nil if the checker and the
// already accepted copysets leave no way to reach the required size.
func (b *builder[N]) grow(seed N) (Copyset[N], error) {
	// The checker only sees candidates with at least two nodes, so a single
	// node copyset is never created.
	if b.replicas < 2 {
		return nil, nil
	}

	candidate := Copyset[N]{seed}
	for _, n := range b.priority(seed) {
		next := candidate.With(n)
		ok, err := b.accept(next)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		candidate = next
		if candidate.Len() == b.replicas {
			return candidate, nil
		}
	}
	return nil, nil
}

func (b *builder[N]) accept(candidate Copyset[N]) (bool, error) {
	b.stats.Evaluations++
	ok, err := b.checker.Check(b.accepted, candidate)
	if err != nil {
		return false, err
	}
	if !ok {
		b.stats.Rejections++
		return false, nil
	}
	if containsCopyset(b.accepted, candidate) {
		b.stats.Duplicates++
		return false, nil
	}
	return true, nil
}

// priority orders all nodes but seed by ascending scatter width, ties broken
// by node order.
func (b *builder[N]) priority(seed N) []N {
	res := make([]N, 0, len(b.nodes)-1)
	for _, n := range b.nodes {
		if n != seed {
			res = append(res, n)
		}
	}
	slices.SortStableFunc(res, func(x, y N) int {
		return cmp.Compare(b.widths[x], b.widths[y])
	})
	return res
}
