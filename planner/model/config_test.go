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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/copysets/copyset"
	"github.com/streamnative/copysets/planner/policies"
)

func validConfig() ClusterConfig {
	return ClusterConfig{
		Replicas:     2,
		ScatterWidth: 1,
		Nodes: []Node{
			{ID: "a", Labels: map[string]string{"rack": "r1"}},
			{ID: "b", Labels: map[string]string{"rack": "r2"}},
			{ID: "c"},
		},
	}
}

func TestClusterConfigValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(c *ClusterConfig)
		isErr  bool
	}{
		{"valid", func(*ClusterConfig) {}, false},
		{"no-nodes", func(c *ClusterConfig) { c.Nodes = nil }, true},
		{"zero-replicas", func(c *ClusterConfig) { c.Replicas = 0 }, true},
		{"negative-scatter-width", func(c *ClusterConfig) { c.ScatterWidth = -1 }, true},
		{"bad-refresh", func(c *ClusterConfig) { c.Refresh = "sometimes" }, true},
		{"pass-refresh", func(c *ClusterConfig) { c.Refresh = "pass" }, false},
		{"empty-id", func(c *ClusterConfig) { c.Nodes[2].ID = "" }, true},
		{"duplicate-id", func(c *ClusterConfig) { c.Nodes[2].ID = "a" }, true},
		{"unknown-initial", func(c *ClusterConfig) { c.InitialCopysets = [][]string{{"a", "z"}} }, true},
		{"known-initial", func(c *ClusterConfig) { c.InitialCopysets = [][]string{{"a", "b"}} }, false},
		{"bad-policy", func(c *ClusterConfig) {
			c.Policies = &policies.Policies{AntiAffinities: []policies.AntiAffinity{{Label: "rack", Spread: 3}}}
		}, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := validConfig()
			test.modify(&c)
			err := c.Validate()
			assert.Equal(t, test.isErr, err != nil)
			if test.isErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestClusterConfigValidateKeepsCause(t *testing.T) {
	c := validConfig()
	c.Refresh = "sometimes"
	err := c.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, copyset.ErrUnknownRefresh)

	c = validConfig()
	c.Policies = &policies.Policies{AntiAffinities: []policies.AntiAffinity{{Label: "rack", Spread: 3}}}
	err = c.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, policies.ErrInvalidPolicy)
}

func TestClusterConfigNodes(t *testing.T) {
	c := validConfig()
	assert.Equal(t, []string{"a", "b", "c"}, c.NodeIDs())

	nl := c.NodeLabels()
	assert.Len(t, nl, 3)
	assert.Equal(t, "r2", nl["b"]["rack"])
	assert.Contains(t, nl, "c")
}

func TestClusterConfigYaml(t *testing.T) {
	in := `
replicas: 3
scatterWidth: 4
refresh: pass
nodes:
  - id: s1
    labels:
      rack: r1
  - id: s2
policies:
  antiAffinities:
    - label: rack
      spread: 2
      mode: Relaxed
  tiered:
    label: tier
    backupValue: backup
initialCopysets:
  - [s1, s2]
`
	c := ClusterConfig{}
	assert.NoError(t, yaml.Unmarshal([]byte(in), &c))
	assert.Equal(t, 3, c.Replicas)
	assert.Equal(t, 4, c.ScatterWidth)
	assert.EqualValues(t, "pass", c.Refresh)
	assert.Equal(t, []string{"s1", "s2"}, c.NodeIDs())
	assert.Equal(t, "r1", c.Nodes[0].Labels["rack"])
	assert.Equal(t, policies.Relaxed, c.Policies.AntiAffinities[0].Mode)
	assert.Equal(t, "backup", c.Policies.Tiered.BackupValue)
	assert.Equal(t, [][]string{{"s1", "s2"}}, c.InitialCopysets)
}
