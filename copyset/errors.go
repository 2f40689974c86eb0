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
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInfeasibleConstraints  = errors.New("copyset: couldn't create valid copysets")
	ErrMissingTopologyMapping = errors.New("copyset: missing topology mapping")
	ErrInvalidReplicas        = errors.New("copyset: replicas must be at least 1")
	ErrInvalidScatterWidth    = errors.New("copyset: scatter width must not be negative")
	ErrNoNodes                = errors.New("copyset: no nodes")
	ErrInvalidSpread          = errors.New("copyset: spread must not exceed replicas")
	ErrInvalidTieredReplicas  = errors.New("copyset: tiered checker needs at least 1 replica")
)

// MissingTopologyMappingError is returned by topology aware checkers when a
// candidate holds a node the checker has no mapping for. It signals caller
// misconfiguration rather than an unsatisfiable placement.
type MissingTopologyMappingError struct {
	Checker string
	Node    any
}

func (e *MissingTopologyMappingError) Error() string {
	return fmt.Sprintf("%s: no %s mapping for node '%v'", ErrMissingTopologyMapping, e.Checker, e.Node)
}

func (*MissingTopologyMappingError) Is(target error) bool {
	return target == ErrMissingTopologyMapping
}
