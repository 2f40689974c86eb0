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

	"github.com/streamnative/copysets/common/collection"
)

var _ Checker[string] = &tieredAware[string]{}

type tieredAware[N constraints.Ordered] struct {
	backupTier collection.Set[N]
	replicas   int
}

// NewTieredAware returns a checker ensuring every copyset of `replicas` nodes
// holds exactly one node of the backup tier. Partial candidates pass while
// they hold at most one backup node.
func NewTieredAware[N constraints.Ordered](backupTier []N, replicas int) (Checker[N], error) {
	if replicas < 1 {
		return nil, errors.Wrapf(ErrInvalidTieredReplicas, "replicas=%d", replicas)
	}
	return &tieredAware[N]{
		backupTier: collection.NewSetFrom(backupTier),
		replicas:   replicas,
	}, nil
}

func (c *tieredAware[N]) Check(_ []Copyset[N], candidate Copyset[N]) (bool, error) {
	backups := 0
	for _, node := range candidate {
		if c.backupTier.Contains(node) {
			backups++
		}
	}
	if candidate.Len() < c.replicas {
		return backups <= 1, nil
	}
	return backups == 1, nil
}
