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

package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
)

var (
	PprofEnable      bool
	PprofBindAddress string
)

// DoWithLabels attaches pprof labels to the goroutine running f and to every
// goroutine it starts.
func DoWithLabels(labels map[string]string, f func()) {
	var l []string
	for k, v := range labels {
		l = append(l, k, v)
	}

	pprof.Do(
		context.Background(),
		pprof.Labels(l...),
		func(_ context.Context) {
			f()
		})
}

// RunProfiling starts the pprof server when PprofEnable is set. The returned
// closer is safe to close in both cases.
func RunProfiling() io.Closer {
	s := &http.Server{
		Addr:              PprofBindAddress,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: time.Second,
	}

	if !PprofEnable {
		return s
	}

	slog.Info("Starting pprof server", slog.String("address", s.Addr))
	slog.Info(fmt.Sprintf("  use http://%s/debug/pprof to access the browser", s.Addr))
	slog.Info(fmt.Sprintf("  use `go tool pprof http://%s/debug/pprof/profile` to get pprof file(cpu info)", s.Addr))

	go DoWithLabels(map[string]string{"copysets": "pprof"}, func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(
				"Unable to start debug profiling server",
				slog.Any("error", err),
				slog.String("component", "pprof"),
			)
			os.Exit(1)
		}
	})
	return s
}
