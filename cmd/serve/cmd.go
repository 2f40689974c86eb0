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

package serve

import (
	"io"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/streamnative/copysets/cmd/config"
	"github.com/streamnative/copysets/cmd/flag"
	"github.com/streamnative/copysets/common/channel"
	"github.com/streamnative/copysets/common/process"
	"github.com/streamnative/copysets/planner/model"
	"github.com/streamnative/copysets/server"
)

var (
	conf       = server.NewConfig()
	configFile string
	nodes      []string

	Cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the copysets of a cluster",
		Long: `Watch the cluster config file, recompute the copysets whenever it
changes and serve the current plan over HTTP`,
		Args: cobra.NoArgs,
		RunE: exec,
	}
)

func init() {
	flag.ConfigFile(Cmd, &configFile)
	flag.Topology(Cmd, &nodes)
	flag.HttpAddr(Cmd, &conf.HttpServiceAddr)
	flag.MetricsAddr(Cmd, &conf.MetricsServiceAddr)
	Cmd.Flags().Int64Var(&conf.PlanCacheSize, "plan-cache-size", conf.PlanCacheSize, "Number of plans kept in memory")
	Cmd.Flags().DurationVar(&conf.InitialRetryBackoff, "retry-backoff", conf.InitialRetryBackoff, "Initial backoff when the config can't be loaded")
}

func exec(cmd *cobra.Command, _ []string) error {
	loader, err := config.NewLoader(cmd, configFile, nodes)
	if err != nil {
		return err
	}

	// Fail fast on a broken config, later changes are retried
	if _, err := loader.Load(); err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	conf.ClusterConfigChangeNotifications = changes
	conf.ClusterConfigProvider = func() (*model.ClusterConfig, error) {
		return loader.Load()
	}

	v := loader.Viper()
	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Debug("Cluster config file event", slog.String("event", e.String()))
		channel.PushNoBlock(changes, struct{}{})
	})
	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
	}

	process.RunProcess(func() (io.Closer, error) {
		return server.New(conf)
	})
	return nil
}
