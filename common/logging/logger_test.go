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

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	for _, test := range []struct {
		level    string
		expected slog.Level
		isErr    bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"junk", slog.LevelInfo, true},
	} {
		t.Run(test.level, func(t *testing.T) {
			level, err := ParseLogLevel(test.level)
			assert.Equal(t, test.isErr, err != nil)
			assert.Equal(t, test.expected, level)
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	out := &bytes.Buffer{}
	logger := NewLogger(out, slog.LevelInfo, true)

	logger.Debug("hidden")
	logger.Info("Built copysets", slog.Int("copysets", 4))

	line := map[string]any{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	assert.Equal(t, "Built copysets", line["message"])
	assert.Equal(t, float64(4), line["copysets"])
	assert.NotContains(t, out.String(), "hidden")
}
