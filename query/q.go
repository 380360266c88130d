// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query is the entry point to the execution engine: it takes an
// optimized plan, compiles it to executors and runs them, returning the root
// node's dataset.
package query

import (
	"context"
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"
	otext "github.com/opentracing/opentracing-go/ext"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/ebay/katmai/query/exec"
	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
	"github.com/ebay/katmai/util/async"
	"github.com/ebay/katmai/util/clocks"
)

// Options controls one execution. The zero value runs everything inline on
// the calling goroutine against the wall clock.
type Options struct {
	// Runner schedules executor work and future continuations. Nil means
	// inline execution.
	Runner async.Runner
	// Clock is the time source for profiling. Nil means the wall clock.
	Clock clocks.Source
}

// Execute runs the plan to completion and returns the root node's dataset.
func Execute(ctx context.Context, p *plan.Plan, opts Options) (*model.DataSet, error) {
	ds, _, err := run(ctx, p, opts, false)
	return ds, err
}

// ExecuteProfiled runs the plan and additionally returns per-node profiling
// records, one per activation, keyed by plan node ID.
func ExecuteProfiled(ctx context.Context, p *plan.Plan, opts Options) (*model.DataSet, map[int64][]exec.ProfilingStats, error) {
	return run(ctx, p, opts, true)
}

func run(ctx context.Context, p *plan.Plan, opts Options, profiled bool) (*model.DataSet, map[int64][]exec.ProfilingStats, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "query.Execute")
	defer span.Finish()

	metrics.queries.Inc()
	timer := prometheus.NewTimer(metrics.queryDuration)
	defer timer.ObserveDuration()

	root := p.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("plan has no root node")
	}

	qctx := exec.NewQueryContext()
	if opts.Runner != nil {
		qctx.SetRunner(opts.Runner)
	}
	if opts.Clock != nil {
		qctx.SetClock(opts.Clock)
	}
	defer qctx.ObjectPool().Release()

	compileSpan, _ := opentracing.StartSpanFromContext(ctx, "query.Compile")
	compileTimer := prometheus.NewTimer(metrics.compileDuration)
	rootExec, err := exec.Create(root, qctx)
	compileTimer.ObserveDuration()
	compileSpan.Finish()
	if err != nil {
		metrics.queryFailures.Inc()
		otext.Error.Set(span, true)
		return nil, nil, fmt.Errorf("compiling plan: %w", err)
	}
	metrics.executorsPerPlan.Observe(float64(qctx.ObjectPool().Size()))

	scheduleSpan, ctx := opentracing.StartSpanFromContext(ctx, "query.Schedule")
	defer scheduleSpan.Finish()
	future := exec.NewScheduler(qctx).Schedule(ctx, rootExec)
	if err := future.Wait(ctx); err != nil {
		metrics.queryFailures.Inc()
		otext.Error.Set(span, true)
		log.WithFields(log.Fields{
			"root": root.String(),
		}).WithError(err).Warn("query execution failed")
		return nil, nil, err
	}

	res, ok := qctx.ExecutionContext().Result(root.OutputVar())
	if !ok {
		return nil, nil, fmt.Errorf("root output variable %q was never published", root.OutputVar())
	}
	ds, isDS := res.Value().DataSet()
	if !isDS {
		return nil, nil, fmt.Errorf("query produced %v, expected a DataSet", res.Value().Kind())
	}
	if !profiled {
		return ds, nil, nil
	}
	return ds, qctx.Profile(), nil
}
