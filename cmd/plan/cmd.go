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

package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/copysets/cmd/config"
	"github.com/streamnative/copysets/cmd/flag"
	"github.com/streamnative/copysets/planner"
)

var ErrUnknownOutput = errors.New("unknown output format")

type Options struct {
	ConfigFile string
	Output     string
	Nodes      []string
}

var (
	options = Options{}

	Cmd = &cobra.Command{
		Use:   "plan",
		Short: "Compute the copysets of a cluster",
		Long: `Compute copysets so that every node shares copysets with at least
scatter-width other nodes, honoring the placement policies of the cluster config`,
		Args: cobra.NoArgs,
		RunE: exec,
	}
)

func init() {
	flag.ConfigFile(Cmd, &options.ConfigFile)
	flag.Topology(Cmd, &options.Nodes)
	Cmd.Flags().StringVarP(&options.Output, "output", "o", "yaml", "Output format: yaml, json or table")
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

	p, err := planner.New(planner.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = p.Close()
	}()

	plan, err := p.Plan(cmd.Context(), cc)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), plan, options.Output)
}

func write(out io.Writer, plan *planner.Plan, output string) error {
	switch strings.ToLower(output) {
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(plan); err != nil {
			return err
		}
		return encoder.Close()
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(plan)
	case "table":
		writeTable(out, plan)
		return nil
	}
	return errors.Wrapf(ErrUnknownOutput, "'%s'", output)
}

func writeTable(out io.Writer, plan *planner.Plan) {
	copysets := tablewriter.NewWriter(out)
	copysets.SetHeader([]string{"#", "Copyset"})
	for i, cs := range plan.Copysets {
		copysets.Append([]string{humanize.Comma(int64(i + 1)), strings.Join(cs, ", ")})
	}
	copysets.Render()

	memberships := map[string]int{}
	for _, cs := range plan.Copysets {
		for _, n := range cs {
			memberships[n]++
		}
	}

	nodes := tablewriter.NewWriter(out)
	nodes.SetHeader([]string{"Node", "Scatter width", "Copysets"})
	for _, n := range slices.Sorted(maps.Keys(plan.ScatterWidths)) {
		nodes.Append([]string{n, humanize.Comma(int64(plan.ScatterWidths[n])), humanize.Comma(int64(memberships[n]))})
	}
	nodes.Render()

	_, _ = fmt.Fprintf(out, "%s copysets, min scatter width %d, %s evaluations in %s passes, fingerprint %s\n",
		humanize.Comma(int64(len(plan.Copysets))), plan.MinScatterWidth,
		humanize.Comma(int64(plan.Evaluations)), humanize.Comma(int64(plan.Passes)), plan.Fingerprint)
	if plan.Relaxed {
		_, _ = fmt.Fprintf(out, "Dropped relaxed anti-affinities: %s\n", strings.Join(plan.DroppedPolicies, ", "))
	}
}
