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

package exec

import (
	"time"

	"github.com/ebay/katmai/util/async"
	"github.com/ebay/katmai/util/clocks"
	"github.com/puzpuzpuz/xsync/v3"
)

// ProfilingStats is one activation's profile for one plan node.
type ProfilingStats struct {
	// TotalDuration spans Open to Close, including time spent waiting for
	// scheduling; it is always >= ExecDuration.
	TotalDuration time.Duration
	// ExecDuration is the time spent inside the executor's own work.
	ExecDuration time.Duration
	// Rows is the row count of the published Result.
	Rows int
}

// QueryContext carries everything shared across one query's execution: the
// execution context, the arena owning the executors, the task runner, the
// clock, and the profiling sink.
type QueryContext struct {
	ectx    *ExecutionContext
	pool    *ObjectPool
	runner  async.Runner
	clock   clocks.Source
	profile *xsync.MapOf[int64, []ProfilingStats]
}

// NewQueryContext returns a QueryContext with a fresh execution context and
// arena, a wall clock, and no runner (executors fall back to async.Inline).
func NewQueryContext() *QueryContext {
	return &QueryContext{
		ectx:    NewExecutionContext(),
		pool:    NewObjectPool(),
		clock:   clocks.Wall,
		profile: xsync.NewMapOf[int64, []ProfilingStats](),
	}
}

// ExecutionContext returns the query's variable table.
func (q *QueryContext) ExecutionContext() *ExecutionContext {
	return q.ectx
}

// ObjectPool returns the arena owning the query's executors.
func (q *QueryContext) ObjectPool() *ObjectPool {
	return q.pool
}

// Runner returns the injected task runner, or nil if none was set.
func (q *QueryContext) Runner() async.Runner {
	return q.runner
}

// SetRunner injects the task runner that executor continuations are scheduled
// on.
func (q *QueryContext) SetRunner(r async.Runner) {
	q.runner = r
}

// Clock returns the time source used for profiling.
func (q *QueryContext) Clock() clocks.Source {
	return q.clock
}

// SetClock overrides the time source. Tests use this with clocks.NewMock().
func (q *QueryContext) SetClock(c clocks.Source) {
	q.clock = c
}

// AddProfilingStats appends one activation's stats for the given plan node
// ID. Each activation of a node adds its own record, so loop iterations are
// individually visible.
func (q *QueryContext) AddProfilingStats(id int64, stats ProfilingStats) {
	q.profile.Compute(id, func(old []ProfilingStats, _ bool) ([]ProfilingStats, bool) {
		return append(old, stats), false
	})
}

// ProfilingStats returns the recorded activations for the given plan node ID,
// oldest first. It returns nil for a node that never activated.
func (q *QueryContext) ProfilingStats(id int64) []ProfilingStats {
	stats, _ := q.profile.Load(id)
	return stats
}

// Profile snapshots all recorded stats keyed by plan node ID, for inclusion
// in query-explain output. It should be read after the query has settled.
func (q *QueryContext) Profile() map[int64][]ProfilingStats {
	out := make(map[int64][]ProfilingStats)
	q.profile.Range(func(id int64, stats []ProfilingStats) bool {
		out[id] = stats
		return true
	})
	return out
}
