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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"

	"github.com/streamnative/copysets/planner/model"
	"github.com/streamnative/copysets/planner/policies"
)

func TestValidate(t *testing.T) {
	cfg := simpleConfig("a", "b", "c", "d")

	assert.NoError(t, Validate(cfg, [][]string{{"a", "b"}, {"d", "c"}}))

	err := Validate(cfg, [][]string{{"a", "a"}, {"a", "b"}, {"b", "a"}, {"a", "z"}})
	assert.ErrorIs(t, err, ErrInvalidPlan)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 5)
	assert.ErrorContains(t, errs[0], "repeated nodes")
	assert.ErrorContains(t, errs[1], "is repeated")
	assert.ErrorContains(t, errs[2], "unknown node 'z'")
	assert.ErrorContains(t, errs[3], "node 'c' has scatter width 0")
	assert.ErrorContains(t, errs[4], "node 'd' has scatter width 0")
}

func TestValidateSizeAndPolicies(t *testing.T) {
	cfg := &model.ClusterConfig{
		Replicas:     2,
		ScatterWidth: 1,
		Nodes: []model.Node{
			{ID: "a", Labels: map[string]string{"rack": "r1"}},
			{ID: "b", Labels: map[string]string{"rack": "r1"}},
			{ID: "c", Labels: map[string]string{"rack": "r2"}},
		},
		Policies: &policies.Policies{
			AntiAffinities: []policies.AntiAffinity{{Label: "rack"}},
		},
	}

	assert.NoError(t, Validate(cfg, [][]string{{"a", "c"}, {"b", "c"}}))

	err := Validate(cfg, [][]string{{"a", "b"}, {"a", "b", "c"}})
	errs := multierr.Errors(err)
	assert.Len(t, errs, 3)
	assert.ErrorContains(t, errs[0], "violates the placement policies")
	assert.ErrorContains(t, errs[1], "has 3 nodes, expected 2")
	assert.ErrorContains(t, errs[2], "violates the placement policies")
}

func TestValidateRelaxedPoliciesIgnored(t *testing.T) {
	cfg := &model.ClusterConfig{
		Replicas:     2,
		ScatterWidth: 1,
		Nodes: []model.Node{
			{ID: "a", Labels: map[string]string{"rack": "r1"}},
			{ID: "b", Labels: map[string]string{"rack": "r1"}},
		},
		Policies: &policies.Policies{
			AntiAffinities: []policies.AntiAffinity{{Label: "rack", Mode: policies.Relaxed}},
		},
	}
	assert.NoError(t, Validate(cfg, [][]string{{"a", "b"}}))
}
