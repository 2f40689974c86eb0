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
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/copysets/planner/model"
)

// Fingerprint returns a stable digest of a list of copysets. The copysets
// are expected in canonical form: members sorted and the list sorted.
func Fingerprint(copysets [][]string) string {
	sb := strings.Builder{}
	for _, cs := range copysets {
		sb.WriteString(strings.Join(cs, ","))
		sb.WriteByte('\n')
	}
	return fmt.Sprintf("%016x", xxh3.HashString(sb.String()))
}

// ConfigFingerprint identifies a cluster config. Two configs with the same
// fingerprint produce the same plan.
func ConfigFingerprint(cfg *model.ClusterConfig) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode cluster config")
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
}
