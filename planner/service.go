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
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/streamnative/copysets/common/metrics"
	time2 "github.com/streamnative/copysets/common/time"
	"github.com/streamnative/copysets/planner/model"
)

// ConfigProvider returns the current cluster config.
type ConfigProvider func() (*model.ClusterConfig, error)

type ServiceOptions struct {
	Provider ConfigProvider

	// Changes signals that the config returned by Provider may have changed.
	// The service stops watching when the channel is closed.
	Changes <-chan struct{}

	InitialRetryBackoff time.Duration
}

// Service keeps the plan of a cluster config up to date while the config
// changes. Failures to load a config are retried, failures to plan it are not:
// the last good plan is kept until the next change.
type Service struct {
	io.Closer

	planner  *Planner
	provider ConfigProvider
	changes  <-chan struct{}
	latest   atomic.Pointer[Plan]

	initialRetryBackoff time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *slog.Logger

	reloads      metrics.Counter
	copysetGauge metrics.Gauge
	widthGauge   metrics.Gauge
}

func NewService(planner *Planner, options ServiceOptions) *Service {
	s := &Service{
		planner:             planner,
		provider:            options.Provider,
		changes:             options.Changes,
		initialRetryBackoff: options.InitialRetryBackoff,
		log: slog.With(
			slog.String("component", "planner-service"),
		),
		reloads: metrics.NewCounter("copysets_service_reloads",
			"The total number of config reloads", metrics.Dimensionless, nil),
	}
	if s.initialRetryBackoff <= 0 {
		s.initialRetryBackoff = time.Second
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.copysetGauge = metrics.NewGauge("copysets_service_copysets",
		"The number of copysets in the current plan", metrics.Dimensionless, nil, func() int64 {
			if plan := s.latest.Load(); plan != nil {
				return int64(len(plan.Copysets))
			}
			return 0
		})
	s.widthGauge = metrics.NewGauge("copysets_service_min_scatter_width",
		"The minimum scatter width in the current plan", metrics.Dimensionless, nil, func() int64 {
			if plan := s.latest.Load(); plan != nil {
				return int64(plan.MinScatterWidth)
			}
			return 0
		})

	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Service) run() {
	defer s.wg.Done()

	s.reloadWithRetries()
	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-s.changes:
			if !ok {
				s.log.Debug("Stopped watching config changes")
				return
			}
			s.log.Info("Cluster config changed, reloading")
			s.reloadWithRetries()
		}
	}
}

func (s *Service) reloadWithRetries() {
	backOff := time2.NewBackOffWithInitialInterval(s.ctx, s.initialRetryBackoff)
	err := backoff.RetryNotify(s.Reload, backOff, func(err error, duration time.Duration) {
		s.log.Warn(
			"Failed to load cluster config, retrying later",
			slog.Any("error", err),
			slog.Duration("retry-after", duration),
		)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error(
			"Failed to plan cluster config, keeping the previous plan",
			slog.Any("error", err),
		)
	}
}

// Reload loads the config and plans it. Errors from the planner are wrapped
// as permanent, since retrying the same config cannot succeed.
func (s *Service) Reload() error {
	cfg, err := s.provider()
	if err != nil {
		return errors.Wrap(err, "failed to load cluster config")
	}

	s.reloads.Inc()
	plan, err := s.planner.Plan(s.ctx, cfg)
	if err != nil {
		return backoff.Permanent(err)
	}

	if previous := s.latest.Swap(plan); previous == nil || previous.Fingerprint != plan.Fingerprint {
		s.log.Info(
			"Installed new copyset plan",
			slog.String("fingerprint", plan.Fingerprint),
			slog.Int("copysets", len(plan.Copysets)),
		)
	}
	return nil
}

// Latest returns the current plan, or nil if no config was planned yet.
func (s *Service) Latest() *Plan {
	return s.latest.Load()
}

func (s *Service) Close() error {
	s.cancel()
	s.wg.Wait()
	s.copysetGauge.Unregister()
	s.widthGauge.Unregister()
	return nil
}
