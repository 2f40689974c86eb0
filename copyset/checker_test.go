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
	"maps"
	"slices"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"
)

func distinct[K constraints.Ordered, V comparable](c Copyset[K], m map[K]V) int {
	values := map[V]struct{}{}
	for _, n := range c {
		values[m[n]] = struct{}{}
	}
	return len(values)
}

func TestAlwaysAccept(t *testing.T) {
	ok, err := AlwaysAccept[string]().Check(nil, NewCopyset("a"))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRackAwareChecker(t *testing.T) {
	rackMap := map[string]int{
		"A": 0, "B": 0, "C": 0,
		"D": 1, "E": 1, "F": 1,
		"G": 2, "H": 2, "I": 2,
	}
	rackAware, err := NewRackAware(rackMap)
	require.NoError(t, err)

	nodes := slices.Sorted(maps.Keys(rackMap))
	copysets, err := Build(nodes, 3, 2, rackAware, nil)
	require.NoError(t, err)

	assertValidCopysets(t, nodes, copysets, 3, 2)
	for _, c := range copysets {
		assert.Equal(t, 3, distinct(c, rackMap), "copyset %v", c)
	}
}

func TestComposedRackAwareChecker(t *testing.T) {
	// 6 machines spread across 3 racks, each running 2 processes. Every
	// copyset must use distinct machines and span at least 2 racks.
	machineMap := map[string]string{
		"A:0": "A", "A:1": "A",
		"B:0": "B", "B:1": "B",
		"C:0": "C", "C:1": "C",
		"D:0": "D", "D:1": "D",
		"E:0": "E", "E:1": "E",
		"F:0": "F", "F:1": "F",
	}
	rackMap := map[string]int{
		"A:0": 0, "A:1": 0,
		"B:0": 0, "B:1": 0,
		"C:0": 1, "C:1": 1,
		"D:0": 1, "D:1": 1,
		"E:0": 2, "E:1": 2,
		"F:0": 2, "F:1": 2,
	}

	machineAware, err := NewRackAware(machineMap)
	require.NoError(t, err)
	rackAware, err := NewRackAware(rackMap, WithSpread(2), WithReplicas(3))
	require.NoError(t, err)

	nodes := slices.Sorted(maps.Keys(rackMap))
	copysets, err := Build(nodes, 3, 4, Composed(machineAware, rackAware), nil)
	require.NoError(t, err)

	assertValidCopysets(t, nodes, copysets, 3, 4)
	for _, c := range copysets {
		assert.Equal(t, 3, distinct(c, machineMap), "copyset %v", c)
		assert.GreaterOrEqual(t, distinct(c, rackMap), 2, "copyset %v", c)
	}
}

func TestTieredAwareChecker(t *testing.T) {
	primaryTier := []string{"A", "B", "C", "D", "E", "F"}
	backupTier := []string{"G", "H", "I"}

	tieredAware, err := NewTieredAware(backupTier, 4)
	require.NoError(t, err)

	nodes := append(slices.Clone(primaryTier), backupTier...)
	copysets, err := Build(nodes, 4, 6, tieredAware, nil)
	require.NoError(t, err)

	assertValidCopysets(t, nodes, copysets, 4, 6)
	for _, c := range copysets {
		backups := 0
		for _, n := range c {
			if slices.Contains(backupTier, n) {
				backups++
			}
		}
		assert.Equal(t, 1, backups, "copyset %v", c)
	}
}

func TestRackAwareMissingMapping(t *testing.T) {
	rackAware, err := NewRackAware(map[string]int{"A": 0})
	require.NoError(t, err)

	ok, err := rackAware.Check(nil, NewCopyset("A", "B"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMissingTopologyMapping)
	assert.ErrorContains(t, err, "'B'")

	var mappingErr *MissingTopologyMappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.Equal(t, "B", mappingErr.Node)
	assert.Equal(t, "rack", mappingErr.Checker)
}

func TestRackAwareTargets(t *testing.T) {
	rackMap := map[int]string{1: "r1", 2: "r1", 3: "r2", 4: "r2", 5: "r3"}

	for _, test := range []struct {
		name      string
		opts      []RackOption
		candidate Copyset[int]
		expected  bool
	}{
		{"own-rack-single", nil, Copyset[int]{1}, true},
		{"own-rack-distinct", nil, Copyset[int]{1, 3, 5}, true},
		{"own-rack-shared", nil, Copyset[int]{1, 2}, false},
		{"spread-only-exact", []RackOption{WithSpread(2)}, Copyset[int]{1, 3}, true},
		{"spread-only-partial", []RackOption{WithSpread(2)}, Copyset[int]{1}, false},
		{"spread-only-too-many", []RackOption{WithSpread(2)}, Copyset[int]{1, 3, 5}, false},
		{"spread-only-greater", []RackOption{WithSpread(2), WithAllowGreater()}, Copyset[int]{1, 3, 5}, true},
		{"relaxed-partial", []RackOption{WithSpread(2), WithReplicas(3)}, Copyset[int]{1}, true},
		{"relaxed-two-same-rack", []RackOption{WithSpread(2), WithReplicas(3)}, Copyset[int]{1, 2}, true},
		{"relaxed-full-one-rack", []RackOption{WithSpread(3), WithReplicas(3)}, Copyset[int]{1, 2}, false},
		{"relaxed-full", []RackOption{WithSpread(2), WithReplicas(3)}, Copyset[int]{1, 2, 3}, true},
		{"relaxed-full-too-many", []RackOption{WithSpread(2), WithReplicas(3)}, Copyset[int]{1, 3, 5}, false},
		{"relaxed-full-greater", []RackOption{WithSpread(2), WithReplicas(3), WithAllowGreater()}, Copyset[int]{1, 3, 5}, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			rackAware, err := NewRackAware(rackMap, test.opts...)
			require.NoError(t, err)

			ok, err := rackAware.Check(nil, test.candidate)
			assert.NoError(t, err)
			assert.Equal(t, test.expected, ok)
		})
	}
}

func TestRackAwareInvalidSpread(t *testing.T) {
	_, err := NewRackAware(map[int]int{}, WithSpread(4), WithReplicas(3))
	assert.ErrorIs(t, err, ErrInvalidSpread)

	_, err = NewRackAware(map[int]int{}, WithSpread(-1))
	assert.ErrorIs(t, err, ErrInvalidSpread)

	_, err = NewRackAware(map[int]int{}, WithSpread(3), WithReplicas(3))
	assert.NoError(t, err)
}

func TestTieredAwarePartialCandidates(t *testing.T) {
	tieredAware, err := NewTieredAware([]string{"x", "y"}, 3)
	require.NoError(t, err)

	for _, test := range []struct {
		candidate Copyset[string]
		expected  bool
	}{
		{NewCopyset("a"), true},
		{NewCopyset("x"), true},
		{NewCopyset("a", "b"), true},
		{NewCopyset("a", "x"), true},
		{NewCopyset("x", "y"), false},
		{NewCopyset("a", "b", "c"), false},
		{NewCopyset("a", "b", "x"), true},
		{NewCopyset("a", "x", "y"), false},
	} {
		ok, err := tieredAware.Check(nil, test.candidate)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, ok, "candidate %v", test.candidate)
	}

	_, err = NewTieredAware([]string{"x"}, 0)
	assert.ErrorIs(t, err, ErrInvalidTieredReplicas)
}

func TestComposedShortCircuits(t *testing.T) {
	var calls []string
	checker := func(name string, result bool, err error) Checker[int] {
		return CheckerFunc[int](func([]Copyset[int], Copyset[int]) (bool, error) {
			calls = append(calls, name)
			return result, err
		})
	}

	ok, err := Composed(checker("a", true, nil), checker("b", false, nil), checker("c", true, nil)).
		Check(nil, Copyset[int]{1})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, calls)

	calls = nil
	failure := errors.New("failure")
	ok, err = Composed(checker("a", true, failure), checker("b", true, nil)).Check(nil, Copyset[int]{1})
	assert.ErrorIs(t, err, failure)
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, calls)

	calls = nil
	ok, err = Composed(checker("a", true, nil), nil, checker("b", true, nil)).Check(nil, Copyset[int]{1})
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, calls)

	ok, err = Composed[int]().Check(nil, Copyset[int]{1})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestCopyset(t *testing.T) {
	c := NewCopyset(3, 1, 2, 1)
	assert.Equal(t, Copyset[int]{1, 2, 3}, c)
	assert.True(t, c.Contains(2))
	assert.False(t, c.Contains(4))

	d := c.With(0)
	assert.Equal(t, Copyset[int]{0, 1, 2, 3}, d)
	assert.Equal(t, Copyset[int]{1, 2, 3}, c)
	assert.Equal(t, c, c.With(2))

	copysets := []Copyset[int]{{2, 3}, {1, 3}, {1, 2, 3}, {1, 2}}
	Sort(copysets)
	assert.Equal(t, []Copyset[int]{{1, 2}, {1, 2, 3}, {1, 3}, {2, 3}}, copysets)
}

func TestScatterWidths(t *testing.T) {
	widths := ScatterWidths([]Copyset[string]{{"a", "b", "c"}, {"a", "d", "e"}, {"a", "b", "d"}})
	assert.Equal(t, map[string]int{"a": 4, "b": 3, "c": 2, "d": 3, "e": 2}, widths)
	assert.Equal(t, 0, MinScatterWidth([]string{"a", "f"}, widths))
	assert.Equal(t, 2, MinScatterWidth([]string{"a", "b", "c", "d", "e"}, widths))
}
