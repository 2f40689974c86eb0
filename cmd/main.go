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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/streamnative/copysets/cmd/health"
	"github.com/streamnative/copysets/cmd/plan"
	"github.com/streamnative/copysets/cmd/serve"
	"github.com/streamnative/copysets/cmd/validate"
	"github.com/streamnative/copysets/common/logging"
	"github.com/streamnative/copysets/common/process"
)

type LogLevelError string

func (l LogLevelError) Error() string {
	return fmt.Sprintf("unknown log level (%s)", string(l))
}

var (
	logLevelStr string
	rootCmd     = &cobra.Command{
		Use:               "copysets",
		Short:             "Copyset placement for replicated storage",
		Long:              `Build copysets with Tiered Replication, spreading replicas over failure domains while bounding the scatter width of each node`,
		PersistentPreRunE: configureLogger,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevelStr, "log-level", "l", logging.DefaultLogLevel.String(), "Set logging level [debug|info|warn|error]")
	rootCmd.PersistentFlags().BoolVarP(&logging.LogJSON, "log-json", "j", false, "Print logs in JSON format")
	rootCmd.PersistentFlags().BoolVar(&process.PprofEnable, "profile", false, "Enable pprof profiler")
	rootCmd.PersistentFlags().StringVar(&process.PprofBindAddress, "profile-bind-address", "127.0.0.1:6060", "Bind address for pprof")

	rootCmd.AddCommand(plan.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(health.Cmd)
}

func configureLogger(*cobra.Command, []string) error {
	level, err := logging.ParseLogLevel(logLevelStr)
	if err != nil {
		return LogLevelError(logLevelStr)
	}
	logging.LogLevel = level
	logging.ConfigureLogger()
	return nil
}

func main() {
	process.DoWithLabels(map[string]string{
		"copysets": "main",
	}, func() {
		if _, err := maxprocs.Set(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := rootCmd.Execute(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})
}
