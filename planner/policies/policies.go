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

package policies

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

var (
	ErrUnsatisfiedAntiAffinity     = errors.New("policies: unsatisfied anti-affinity")
	ErrUnsupportedAntiAffinityMode = errors.New("policies: unsupported anti-affinity mode")
	ErrInvalidPolicy               = errors.New("policies: invalid policy")
)

type AntiAffinityMode string

const (
	// Strict Enforce anti-affinity rules strictly. Planning fails if rules can't be met.
	Strict AntiAffinityMode = "Strict"

	// Relaxed Try to follow anti-affinity rules, but drop them if no plan can satisfy them.
	Relaxed AntiAffinityMode = "Relaxed"
)

func ParseMode(s string) (AntiAffinityMode, error) {
	switch {
	case s == "", strings.EqualFold(s, string(Strict)):
		return Strict, nil
	case strings.EqualFold(s, string(Relaxed)):
		return Relaxed, nil
	}
	return "", errors.Wrapf(ErrUnsupportedAntiAffinityMode, "'%s'", s)
}

// AntiAffinity spreads the members of every copyset over the distinct values
// of a node label, such as a machine or a rack.
type AntiAffinity struct {

	// Label is the node label whose values are failure domains.
	Label string `json:"label" yaml:"label"`

	// Spread is the number of distinct label values a copyset must span.
	// Zero means every member needs its own value.
	Spread int `json:"spread,omitempty" yaml:"spread,omitempty"`

	// AllowGreater accepts copysets spanning more than Spread values.
	AllowGreater bool `json:"allowGreater,omitempty" yaml:"allowGreater,omitempty"`

	// Mode specifies the enforcement level, Strict or Relaxed.
	Mode AntiAffinityMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

func (a *AntiAffinity) IsRelaxed() bool {
	mode, err := ParseMode(string(a.Mode))
	return err == nil && mode == Relaxed
}

// Tiered requires exactly one node of the backup tier in every copyset.
// Nodes belong to the backup tier when their Label equals BackupValue.
type Tiered struct {
	Label       string `json:"label" yaml:"label"`
	BackupValue string `json:"backupValue" yaml:"backupValue"`
}

type Policies struct {
	AntiAffinities []AntiAffinity `json:"antiAffinities,omitempty" yaml:"antiAffinities,omitempty"`
	Tiered         *Tiered        `json:"tiered,omitempty" yaml:"tiered,omitempty"`
}

func (p *Policies) Validate(replicas int) error {
	if p == nil {
		return nil
	}
	for _, a := range p.AntiAffinities {
		if a.Label == "" {
			return errors.Wrap(ErrInvalidPolicy, "anti-affinity without label")
		}
		if a.Spread < 0 || a.Spread > replicas {
			return errors.Wrapf(ErrInvalidPolicy, "anti-affinity on '%s' has spread %d, replicas %d", a.Label, a.Spread, replicas)
		}
		if _, err := ParseMode(string(a.Mode)); err != nil {
			return err
		}
	}
	if p.Tiered != nil && (p.Tiered.Label == "" || p.Tiered.BackupValue == "") {
		return errors.Wrap(ErrInvalidPolicy, "tiered policy needs a label and a backup value")
	}
	return nil
}

// ModeViperHook accepts anti-affinity modes in any letter case and defaults
// an empty mode to Strict.
func ModeViperHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(Strict) || f.Kind() != reflect.String {
			return data, nil
		}
		return ParseMode(reflect.ValueOf(data).String())
	}
}
