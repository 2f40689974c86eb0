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

package config

import (
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/streamnative/copysets/planner/model"
	"github.com/streamnative/copysets/planner/policies"
)

// Loader reads the cluster config from a yaml file, with the topology flags
// of cmd taking precedence over the file.
type Loader struct {
	sync.Mutex

	v          *viper.Viper
	configFile string
	extraNodes []string
}

func NewLoader(cmd *cobra.Command, configFile string, extraNodes []string) (*Loader, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile == "" {
		v.SetConfigName("copysets")
		v.AddConfigPath("/copysets/conf")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(configFile)
	}

	for key, name := range map[string]string{
		"replicas":     "replicas",
		"scatterWidth": "scatter-width",
		"refresh":      "refresh",
	} {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "failed to bind flag %s", name)
			}
		}
	}

	return &Loader{v: v, configFile: configFile, extraNodes: extraNodes}, nil
}

func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the config again. A missing file is only an error when it was
// given explicitly.
func (l *Loader) Load() (*model.ClusterConfig, error) {
	l.Lock()
	defer l.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read cluster config")
		}
	}

	cc := &model.ClusterConfig{}
	if err := l.v.Unmarshal(cc, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		policies.ModeViperHook(),
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return nil, errors.Wrap(err, "failed to load cluster config")
	}

	for _, id := range l.extraNodes {
		cc.Nodes = append(cc.Nodes, model.Node{ID: id})
	}
	return cc, nil
}
