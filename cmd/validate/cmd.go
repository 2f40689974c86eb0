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

package validate

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/copysets/cmd/config"
	"github.com/streamnative/copysets/cmd/flag"
	"github.com/streamnative/copysets/planner"
)

type Options struct {
	ConfigFile string
	PlanFile   string
	Nodes      []string
}

var (
	options = Options{}

	Cmd = &cobra.Command{
		Use:   "validate",
		Short: "Check existing copysets against a cluster config",
		Long: `Check that a list of copysets, in the yaml or json format printed by
the plan command, fits the cluster config and reaches its scatter width`,
		Args: cobra.NoArgs,
		RunE: exec,
	}
)

func init() {
	flag.ConfigFile(Cmd, &options.ConfigFile)
	flag.Topology(Cmd, &options.Nodes)
	Cmd.Flags().StringVarP(&options.PlanFile, "plan", "p", "", "Plan file holding the copysets")
	_ = Cmd.MarkFlagRequired("plan")
}

func exec(cmd *cobra.Command, _ []string) error {
	loader, err := config.NewLoader(cmd, options.ConfigFile, options.Nodes)
	if err != nil {
		return err
	}
	cc, err := loader.Load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(options.PlanFile)
	if err != nil {
		return errors.Wrap(err, "failed to read plan")
	}
	plan := planner.Plan{}
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return errors.Wrap(err, "failed to decode plan")
	}

	if err := planner.Validate(cc, plan.Copysets); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Plan is valid: %d copysets\n", len(plan.Copysets))
	return nil
}
