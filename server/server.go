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

package server

import (
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/streamnative/copysets/common/metrics"
	"github.com/streamnative/copysets/planner"
)

const (
	DefaultHttpServiceAddr    = "localhost:8070"
	DefaultMetricsServiceAddr = "localhost:8080"
)

type Config struct {
	HttpServiceAddr     string
	MetricsServiceAddr  string
	PlanCacheSize       int64
	InitialRetryBackoff time.Duration

	ClusterConfigProvider            planner.ConfigProvider `json:"-"`
	ClusterConfigChangeNotifications <-chan struct{}        `json:"-"`
}

func NewConfig() Config {
	return Config{
		HttpServiceAddr:     DefaultHttpServiceAddr,
		MetricsServiceAddr:  DefaultMetricsServiceAddr,
		PlanCacheSize:       planner.DefaultCacheSize,
		InitialRetryBackoff: time.Second,
	}
}

// Server plans the cluster config whenever it changes and serves the
// resulting copysets over HTTP.
type Server struct {
	planner    *planner.Planner
	service    *planner.Service
	httpServer *HttpServer
	metrics    *metrics.PrometheusMetrics
}

func New(config Config) (*Server, error) {
	slog.Info("Starting copysets server", slog.Any("config", config))

	p, err := planner.New(planner.Options{CacheSize: config.PlanCacheSize})
	if err != nil {
		return nil, err
	}

	s := &Server{planner: p}
	s.service = planner.NewService(p, planner.ServiceOptions{
		Provider:            config.ClusterConfigProvider,
		Changes:             config.ClusterConfigChangeNotifications,
		InitialRetryBackoff: config.InitialRetryBackoff,
	})

	if s.httpServer, err = NewHttpServer(config.HttpServiceAddr, s.service); err != nil {
		return nil, multierr.Append(err, s.Close())
	}

	if config.MetricsServiceAddr != "" {
		if s.metrics, err = metrics.Start(config.MetricsServiceAddr); err != nil {
			return nil, multierr.Append(err, s.Close())
		}
	}
	return s, nil
}

func (s *Server) HttpPort() int {
	return s.httpServer.Port()
}

func (s *Server) Latest() *planner.Plan {
	return s.service.Latest()
}

func (s *Server) Close() error {
	var err error
	if s.httpServer != nil {
		err = multierr.Append(err, s.httpServer.Close())
	}
	if s.metrics != nil {
		err = multierr.Append(err, s.metrics.Close())
	}
	return multierr.Combine(
		err,
		s.service.Close(),
		s.planner.Close(),
	)
}
