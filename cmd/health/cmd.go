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

package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var ErrUnhealthy = errors.New("unhealthy")

type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func NewConfig() Config {
	return Config{
		Host:    "localhost",
		Port:    8070,
		Timeout: 10 * time.Second,
	}
}

var (
	Cmd = &cobra.Command{
		Use:   "health",
		Short: "Copysets health probe",
		Long:  `Check the health endpoint of a running copysets server`,
		RunE:  exec,
	}

	config = NewConfig()
)

func init() {
	Cmd.Flags().StringVar(&config.Host, "host", config.Host, "Server host")
	Cmd.Flags().IntVar(&config.Port, "port", config.Port, "Server port")
	Cmd.Flags().DurationVar(&config.Timeout, "timeout", config.Timeout, "Health check timeout")
	Cmd.SilenceUsage = true
	Cmd.SilenceErrors = true
}

func exec(*cobra.Command, []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/healthz", config.Host, config.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrUnhealthy, "status %s", resp.Status)
	}
	return nil
}
