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

package copyset

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Refresh tells the builder when to recompute scatter widths inside a pass.
type Refresh string

const (
	// RefreshAfterSeed recomputes scatter widths after every seed node, so
	// later seeds in the same pass see the copysets created before them.
	RefreshAfterSeed Refresh = "seed"

	// RefreshAfterPass recomputes scatter widths once, at the end of a pass.
	RefreshAfterPass Refresh = "pass"
)

var ErrUnknownRefresh = errors.New("copyset: unknown refresh policy")

func ParseRefresh(s string) (Refresh, error) {
	switch {
	case s == "", strings.EqualFold(s, string(RefreshAfterSeed)):
		return RefreshAfterSeed, nil
	case strings.EqualFold(s, string(RefreshAfterPass)):
		return RefreshAfterPass, nil
	}
	return RefreshAfterSeed, errors.Wrapf(ErrUnknownRefresh, "'%s'", s)
}

// Stats reports the work done by a single Build call.
type Stats struct {
	Passes      int
	Evaluations int
	Rejections  int
	Duplicates  int
	Created     int
}

type Option func(*options)

type options struct {
	ctx     context.Context
	logger  *slog.Logger
	refresh Refresh
	stats   *Stats
}

func newOptions(opts []Option) *options {
	o := &options{
		ctx:     context.Background(),
		logger:  slog.Default(),
		refresh: RefreshAfterSeed,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithContext allows a build to be abandoned. The context is checked between
// seed nodes; infeasible inputs are still detected by the lack of progress.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithRefresh(refresh Refresh) Option {
	return func(o *options) {
		o.refresh = refresh
	}
}

// WithStats fills stats while the build runs.
func WithStats(stats *Stats) Option {
	return func(o *options) {
		o.stats = stats
	}
}
