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

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnative/copysets/planner"
	"github.com/streamnative/copysets/planner/model"
)

func TestServer(t *testing.T) {
	config := NewConfig()
	config.HttpServiceAddr = "localhost:0"
	config.MetricsServiceAddr = "localhost:0"
	config.ClusterConfigProvider = func() (*model.ClusterConfig, error) {
		return &model.ClusterConfig{
			Replicas:     3,
			ScatterWidth: 2,
			Nodes:        []model.Node{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}, {ID: "n4"}},
		}, nil
	}
	config.ClusterConfigChangeNotifications = make(chan struct{})

	s, err := New(config)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return s.Latest() != nil
	}, 10*time.Second, 10*time.Millisecond)

	code, body := get(t, fmt.Sprintf("http://localhost:%d/plan", s.HttpPort()))
	assert.Equal(t, http.StatusOK, code)

	plan := planner.Plan{}
	require.NoError(t, json.Unmarshal(body, &plan))
	assert.Equal(t, s.Latest().Fingerprint, plan.Fingerprint)
	assert.GreaterOrEqual(t, plan.MinScatterWidth, 2)

	assert.NoError(t, s.Close())
}

func TestServerInvalidAddress(t *testing.T) {
	config := NewConfig()
	config.HttpServiceAddr = "invalid-address"
	config.MetricsServiceAddr = ""
	config.ClusterConfigProvider = func() (*model.ClusterConfig, error) {
		return nil, assert.AnError
	}

	_, err := New(config)
	assert.Error(t, err)
}
