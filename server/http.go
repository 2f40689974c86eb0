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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/streamnative/copysets/common/metrics"
	"github.com/streamnative/copysets/planner"
)

// PlanSource provides the plan currently in effect.
type PlanSource interface {
	Latest() *planner.Plan
}

type NodePlacement struct {
	Node         string     `json:"node"`
	ScatterWidth int        `json:"scatterWidth"`
	Copysets     [][]string `json:"copysets"`
}

type HttpServer struct {
	io.Closer

	source   PlanSource
	server   *http.Server
	port     int
	log      *slog.Logger
	requests metrics.Counter
}

func NewHttpServer(bindAddress string, source PlanSource) (*HttpServer, error) {
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", bindAddress)
	}

	s := &HttpServer{
		source: source,
		port:   listener.Addr().(*net.TCPAddr).Port,
		log: slog.With(
			slog.String("component", "http-server"),
		),
		requests: metrics.NewCounter("copysets_http_requests",
			"The total number of plan requests", metrics.Dimensionless, nil),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /plan", s.plan)
	mux.HandleFunc("GET /nodes/{id}", s.node)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}

	s.log.Info(fmt.Sprintf("Serving copyset plans at http://localhost:%d/plan", s.port))

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(
				"Failed to serve plans",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()
	return s, nil
}

func (s *HttpServer) Port() int {
	return s.port
}

func (s *HttpServer) health(w http.ResponseWriter, _ *http.Request) {
	if s.source.Latest() == nil {
		http.Error(w, "no plan available", http.StatusServiceUnavailable)
		return
	}
	_, _ = io.WriteString(w, "ok\n")
}

func (s *HttpServer) plan(w http.ResponseWriter, _ *http.Request) {
	s.requests.Inc()
	plan := s.source.Latest()
	if plan == nil {
		http.Error(w, "no plan available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, plan)
}

func (s *HttpServer) node(w http.ResponseWriter, r *http.Request) {
	s.requests.Inc()
	plan := s.source.Latest()
	if plan == nil {
		http.Error(w, "no plan available", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	width, found := plan.ScatterWidths[id]
	if !found {
		http.Error(w, fmt.Sprintf("node '%s' not found", id), http.StatusNotFound)
		return
	}

	res := NodePlacement{Node: id, ScatterWidth: width, Copysets: [][]string{}}
	for _, cs := range plan.Copysets {
		if slices.Contains(cs, id) {
			res.Copysets = append(res.Copysets, cs)
		}
	}
	s.writeJSON(w, res)
}

func (s *HttpServer) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.log.Warn(
			"Failed to write response",
			slog.Any("error", err),
		)
	}
}

func (s *HttpServer) Close() error {
	return s.server.Close()
}
