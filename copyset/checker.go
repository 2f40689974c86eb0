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
	"golang.org/x/exp/constraints"
)

// Checker decides whether a candidate copyset may be part of the result.
//
// Build calls Check every time it grows a candidate by one node, so the
// candidate may hold anywhere from 1 to R nodes. Implementations must accept
// any partial candidate that could still be extended into a valid copyset of
// R nodes, and must not modify accepted.
//
// A false result rejects the candidate. A non-nil error aborts the build and
// is reserved for misconfiguration, such as a node missing from a topology map.
type Checker[N constraints.Ordered] interface {
	Check(accepted []Copyset[N], candidate Copyset[N]) (bool, error)
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc[N constraints.Ordered] func(accepted []Copyset[N], candidate Copyset[N]) (bool, error)

func (f CheckerFunc[N]) Check(accepted []Copyset[N], candidate Copyset[N]) (bool, error) {
	return f(accepted, candidate)
}

var _ Checker[string] = &alwaysAccept[string]{}

type alwaysAccept[N constraints.Ordered] struct{}

func (*alwaysAccept[N]) Check([]Copyset[N], Copyset[N]) (bool, error) {
	return true, nil
}

// AlwaysAccept returns a checker without topology constraints.
func AlwaysAccept[N constraints.Ordered]() Checker[N] {
	return &alwaysAccept[N]{}
}

var _ Checker[string] = &composed[string]{}

type composed[N constraints.Ordered] struct {
	checkers []Checker[N]
}

func (c *composed[N]) Check(accepted []Copyset[N], candidate Copyset[N]) (bool, error) {
	for _, checker := range c.checkers {
		ok, err := checker.Check(accepted, candidate)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Composed returns a checker that passes only when all the given checkers pass.
// Checkers are evaluated in order and evaluation stops at the first rejection.
func Composed[N constraints.Ordered](checkers ...Checker[N]) Checker[N] {
	cs := make([]Checker[N], 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			cs = append(cs, c)
		}
	}
	return &composed[N]{checkers: cs}
}
