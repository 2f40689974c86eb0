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
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/streamnative/copysets/common/collection"
	"github.com/streamnative/copysets/copyset"
	"github.com/streamnative/copysets/planner/policies"
)

var ErrInvalidConfig = errors.New("invalid cluster config")

type Node struct {
	// ID is the node's unique identifier
	ID string `json:"id" yaml:"id"`

	// Labels are key-value pairs describing where the node lives, such as
	// its machine, rack or tier (e.g., "rack": "r1").
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

type ClusterConfig struct {
	Replicas        int                `json:"replicas" yaml:"replicas"`
	ScatterWidth    int                `json:"scatterWidth" yaml:"scatterWidth"`
	Refresh         copyset.Refresh    `json:"refresh,omitempty" yaml:"refresh,omitempty"`
	Nodes           []Node             `json:"nodes" yaml:"nodes"`
	Policies        *policies.Policies `json:"policies,omitempty" yaml:"policies,omitempty"`
	InitialCopysets [][]string         `json:"initialCopysets,omitempty" yaml:"initialCopysets,omitempty"`
}

func (c *ClusterConfig) NodeIDs() []string {
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// NodeLabels returns the labels of every node, including the unlabelled ones.
func (c *ClusterConfig) NodeLabels() policies.NodeLabels {
	nl := make(policies.NodeLabels, len(c.Nodes))
	for _, n := range c.Nodes {
		nl[n.ID] = n.Labels
	}
	return nl
}

func (c *ClusterConfig) Validate() error {
	if len(c.Nodes) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no nodes")
	}
	if c.Replicas < 1 {
		return errors.Wrapf(ErrInvalidConfig, "replicas must be at least 1, got %d", c.Replicas)
	}
	if c.ScatterWidth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "scatter width must not be negative, got %d", c.ScatterWidth)
	}
	if _, err := copyset.ParseRefresh(string(c.Refresh)); err != nil {
		return multierr.Append(ErrInvalidConfig, err)
	}

	ids := collection.NewSet[string]()
	for _, n := range c.Nodes {
		if n.ID == "" {
			return errors.Wrap(ErrInvalidConfig, "node without id")
		}
		if ids.Contains(n.ID) {
			return errors.Wrapf(ErrInvalidConfig, "duplicate node '%s'", n.ID)
		}
		ids.Add(n.ID)
	}

	for _, cs := range c.InitialCopysets {
		for _, id := range cs {
			if !ids.Contains(id) {
				return errors.Wrapf(ErrInvalidConfig, "initial copyset %v holds unknown node '%s'", cs, id)
			}
		}
	}

	if err := c.Policies.Validate(c.Replicas); err != nil {
		return multierr.Append(ErrInvalidConfig, err)
	}
	return nil
}
