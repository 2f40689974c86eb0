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

package flag

import (
	"github.com/spf13/cobra"

	"github.com/streamnative/copysets/server"
)

const (
	DefaultReplicas     = 3
	DefaultScatterWidth = 4
)

func ConfigFile(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "conf", "f", "", "Cluster config file")
}

func HttpAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "http-addr", "a", server.DefaultHttpServiceAddr, "Http service bind address")
}

func MetricsAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "metrics-addr", "m", server.DefaultMetricsServiceAddr, "Metrics service bind address")
}

// Topology registers the flags that override the cluster config file.
func Topology(cmd *cobra.Command, nodes *[]string) {
	cmd.Flags().IntP("replicas", "r", DefaultReplicas, "Number of nodes in each copyset")
	cmd.Flags().IntP("scatter-width", "s", DefaultScatterWidth, "Minimum number of distinct nodes each node shares copysets with")
	cmd.Flags().String("refresh", "", "When to refresh scatter widths while building: seed or pass")
	cmd.Flags().StringSliceVarP(nodes, "nodes", "n", nil, "Additional node ids, without labels")
}
