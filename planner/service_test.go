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
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/streamnative/copysets/planner/model"
)

func TestServiceReloads(t *testing.T) {
	p := newTestPlanner(t, DefaultCacheSize)

	current := atomic.Pointer[model.ClusterConfig]{}
	current.Store(simpleConfig("a", "b", "c", "d"))
	failures := atomic.Int32{}
	failures.Store(2)

	changes := make(chan struct{})
	s := NewService(p, ServiceOptions{
		Provider: func() (*model.ClusterConfig, error) {
			if failures.Add(-1) >= 0 {
				return nil, errors.New("config not ready")
			}
			return current.Load(), nil
		},
		Changes:             changes,
		InitialRetryBackoff: 10 * time.Millisecond,
	})

	assert.Eventually(t, func() bool {
		return s.Latest() != nil
	}, 10*time.Second, 10*time.Millisecond)
	first := s.Latest()
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, first.Copysets)

	next := simpleConfig("a", "b", "c", "d")
	next.ScatterWidth = 3
	current.Store(next)
	changes <- struct{}{}

	assert.Eventually(t, func() bool {
		return s.Latest().Fingerprint != first.Fingerprint
	}, 10*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, s.Latest().MinScatterWidth)

	// A config that can't be planned keeps the last good plan
	broken := simpleConfig("a", "b")
	broken.Replicas = 3
	current.Store(broken)
	err := s.Reload()
	assert.Error(t, err)
	assert.Equal(t, 3, s.Latest().MinScatterWidth)

	assert.NoError(t, s.Close())
}

func TestServiceStopsOnClosedChanges(t *testing.T) {
	p := newTestPlanner(t, 0)

	changes := make(chan struct{})
	s := NewService(p, ServiceOptions{
		Provider: func() (*model.ClusterConfig, error) {
			return simpleConfig("a", "b"), nil
		},
		Changes: changes,
	})

	assert.Eventually(t, func() bool {
		return s.Latest() != nil
	}, 10*time.Second, 10*time.Millisecond)

	close(changes)
	assert.NoError(t, s.Close())
	assert.Equal(t, [][]string{{"a", "b"}}, s.Latest().Copysets)
}

func TestServiceCloseWhileRetrying(t *testing.T) {
	p := newTestPlanner(t, 0)

	s := NewService(p, ServiceOptions{
		Provider: func() (*model.ClusterConfig, error) {
			return nil, errors.New("never ready")
		},
		Changes:             make(chan struct{}),
		InitialRetryBackoff: 10 * time.Millisecond,
	})

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, s.Close())
	assert.Nil(t, s.Latest())
}
