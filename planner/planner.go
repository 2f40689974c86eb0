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

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"

	"github.com/streamnative/copysets/common/metrics"
	"github.com/streamnative/copysets/copyset"
	"github.com/streamnative/copysets/planner/model"
	"github.com/streamnative/copysets/planner/policies"
)

const DefaultCacheSize = 64

// Plan is the outcome of planning a cluster config.
type Plan struct {
	Copysets        [][]string     `json:"copysets" yaml:"copysets"`
	ScatterWidths   map[string]int `json:"scatterWidths" yaml:"scatterWidths"`
	MinScatterWidth int            `json:"minScatterWidth" yaml:"minScatterWidth"`

	// Relaxed is set when relaxed anti-affinities had to be dropped.
	Relaxed         bool     `json:"relaxed,omitempty" yaml:"relaxed,omitempty"`
	DroppedPolicies []string `json:"droppedPolicies,omitempty" yaml:"droppedPolicies,omitempty"`

	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Passes      int    `json:"passes" yaml:"passes"`
	Evaluations int    `json:"evaluations" yaml:"evaluations"`
}

type Options struct {
	// CacheSize is the number of plans kept in memory, keyed by config
	// fingerprint. Zero disables the cache.
	CacheSize int64
}

type Planner struct {
	io.Closer

	cache *ristretto.Cache
	log   *slog.Logger

	plansCounter    metrics.Counter
	failuresCounter metrics.Counter
	cacheHits       metrics.Counter
	latency         metrics.LatencyHistogram
	passes          metrics.Histogram
	copysets        metrics.Histogram
}

func New(options Options) (*Planner, error) {
	p := &Planner{
		log: slog.With(
			slog.String("component", "planner"),
		),
		plansCounter: metrics.NewCounter("copysets_planner_plans",
			"The total number of plans computed", metrics.Dimensionless, nil),
		failuresCounter: metrics.NewCounter("copysets_planner_failures",
			"The total number of configs that could not be planned", metrics.Dimensionless, nil),
		cacheHits: metrics.NewCounter("copysets_planner_cache_hits",
			"The total number of plans served from the cache", metrics.Dimensionless, nil),
		latency: metrics.NewLatencyHistogram("copysets_planner_latency",
			"The time taken to compute a plan", nil),
		passes: metrics.NewCountHistogram("copysets_planner_passes",
			"The number of passes over the nodes per plan", nil),
		copysets: metrics.NewCountHistogram("copysets_planner_copysets",
			"The number of copysets per plan", nil),
	}

	if options.CacheSize > 0 {
		var err error
		p.cache, err = ristretto.NewCache(&ristretto.Config{
			NumCounters: options.CacheSize * 10,
			MaxCost:     options.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create plan cache")
		}
	}
	return p, nil
}

// Plan computes the copysets of cfg. Plans may be served from the cache and
// shared between callers, so they must be treated as read-only.
func (p *Planner) Plan(ctx context.Context, cfg *model.ClusterConfig) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := ConfigFingerprint(cfg)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if cached, found := p.cache.Get(key); found {
			p.cacheHits.Inc()
			return cached.(*Plan), nil
		}
	}

	timer := p.latency.Timer()
	plan, err := p.plan(ctx, cfg)
	if err != nil {
		p.failuresCounter.Inc()
		return nil, err
	}
	timer.Done()

	p.plansCounter.Inc()
	p.passes.Record(plan.Passes)
	p.copysets.Record(len(plan.Copysets))

	if p.cache != nil {
		p.cache.Set(key, plan, 1)
		p.cache.Wait()
	}

	p.log.Info(
		"Computed copyset plan",
		slog.String("config", key),
		slog.String("fingerprint", plan.Fingerprint),
		slog.Int("copysets", len(plan.Copysets)),
		slog.Int("min-scatter-width", plan.MinScatterWidth),
		slog.Bool("relaxed", plan.Relaxed),
	)
	return plan, nil
}

func (p *Planner) plan(ctx context.Context, cfg *model.ClusterConfig) (*Plan, error) {
	nl := cfg.NodeLabels()
	refresh, err := copyset.ParseRefresh(string(cfg.Refresh))
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	effective, err := p.satisfiablePolicies(cfg, nl, plan)
	if err != nil {
		return nil, err
	}

	stats := &copyset.Stats{}
	result, err := p.build(ctx, cfg, nl, effective, refresh, true, stats)
	if errors.Is(err, copyset.ErrInfeasibleConstraints) && effective.hasRelaxed() {
		p.log.Warn(
			"Unable to satisfy relaxed anti-affinities, retrying without them",
			slog.Any("error", err),
		)
		plan.Relaxed = true
		for _, a := range effective.AntiAffinities {
			if a.IsRelaxed() {
				plan.DroppedPolicies = append(plan.DroppedPolicies, a.Label)
			}
		}
		stats = &copyset.Stats{}
		result, err = p.build(ctx, cfg, nl, effective, refresh, false, stats)
	}
	if err != nil {
		return nil, err
	}

	plan.Copysets = make([][]string, len(result))
	for i, cs := range result {
		plan.Copysets[i] = cs
	}
	plan.ScatterWidths = copyset.ScatterWidths(result)
	for _, id := range cfg.NodeIDs() {
		if _, found := plan.ScatterWidths[id]; !found {
			plan.ScatterWidths[id] = 0
		}
	}
	plan.MinScatterWidth = copyset.MinScatterWidth(cfg.NodeIDs(), plan.ScatterWidths)
	plan.Fingerprint = Fingerprint(plan.Copysets)
	plan.Passes = stats.Passes
	plan.Evaluations = stats.Evaluations
	return plan, nil
}

type effectivePolicies struct {
	*policies.Policies
}

func (e effectivePolicies) hasRelaxed() bool {
	if e.Policies == nil {
		return false
	}
	for _, a := range e.AntiAffinities {
		if a.IsRelaxed() {
			return true
		}
	}
	return false
}

// satisfiablePolicies fails on strict anti-affinities that can never be met
// and drops the relaxed ones in the same situation.
func (p *Planner) satisfiablePolicies(cfg *model.ClusterConfig, nl policies.NodeLabels, plan *Plan) (effectivePolicies, error) {
	if cfg.Policies == nil {
		return effectivePolicies{}, nil
	}

	res := &policies.Policies{Tiered: cfg.Policies.Tiered}
	for _, a := range cfg.Policies.AntiAffinities {
		if err := a.Satisfiable(nl, cfg.Replicas); err != nil {
			if !a.IsRelaxed() {
				return effectivePolicies{}, err
			}
			p.log.Warn(
				"Dropping unsatisfiable relaxed anti-affinity",
				slog.String("label", a.Label),
				slog.Any("error", err),
			)
			plan.Relaxed = true
			plan.DroppedPolicies = append(plan.DroppedPolicies, a.Label)
			continue
		}
		res.AntiAffinities = append(res.AntiAffinities, a)
	}
	return effectivePolicies{res}, nil
}

func (p *Planner) build(ctx context.Context, cfg *model.ClusterConfig, nl policies.NodeLabels,
	effective effectivePolicies, refresh copyset.Refresh, includeRelaxed bool, stats *copyset.Stats) ([]copyset.Copyset[string], error) {
	checker, err := effective.Checker(nl, cfg.Replicas, includeRelaxed)
	if err != nil {
		return nil, err
	}

	initial := make([]copyset.Copyset[string], len(cfg.InitialCopysets))
	for i, cs := range cfg.InitialCopysets {
		initial[i] = copyset.NewCopyset(cs...)
	}

	return copyset.Build(cfg.NodeIDs(), cfg.Replicas, cfg.ScatterWidth, checker, initial,
		copyset.WithContext(ctx),
		copyset.WithLogger(p.log),
		copyset.WithRefresh(refresh),
		copyset.WithStats(stats),
	)
}

func (p *Planner) Close() error {
	if p.cache != nil {
		p.cache.Close()
	}
	return nil
}
