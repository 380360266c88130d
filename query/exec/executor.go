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

// Package exec turns an optimized plan graph into a network of stateful
// executors and runs it. Compilation walks the plan depth-first, memoizing by
// node identity so a sub-plan reached through multiple paths yields exactly
// one executor. Execution chains futures over an injected runner: an executor
// opens only after all its dependencies have published, publishes its own
// result to the ExecutionContext, and flushes a profiling record when it
// closes. Select and Loop nodes carry nested sub-plans that are compiled
// eagerly but scheduled lazily.
package exec

import (
	"context"
	"fmt"
	"time"

	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
	"github.com/ebay/katmai/util/async"
	"github.com/ebay/katmai/util/clocks"
)

// Executor is the uniform contract every operator conforms to. An Executor is
// built once per distinct plan node and reused across activations: Open
// resets its per-activation state, Execute performs the work and publishes
// the result, Close flushes the activation's profiling record.
type Executor interface {
	// ID mirrors the source plan node's identity.
	ID() int64
	// Name names the executor for logs.
	Name() string
	// Node returns the source plan node.
	Node() plan.Node
	// Open clears per-activation state. It is called at the start of every
	// activation, including every iteration of a loop body.
	Open() error
	// Execute performs the executor's work. On success it must have
	// published a Result for its node's output variable. The returned
	// future settles on the query's runner.
	Execute(ctx context.Context) *async.Future
	// Close flushes the profiling record for the activation that just
	// settled. It is called after Execute settles, success or failure.
	Close() error
	// DependsOn registers dep as a dependency that must publish before this
	// executor runs.
	DependsOn(dep Executor)
	// Depends returns the registered dependencies, in plan order.
	Depends() []Executor
}

// Create compiles the plan sub-graph rooted at node into an executor graph
// and returns its root. Every executor is owned by qctx's ObjectPool. A
// malformed plan (unknown kind, impossible dependency count) fails
// compilation immediately; no partially built graph escapes.
func Create(node plan.Node, qctx *QueryContext) (Executor, error) {
	visited := make(map[int64]Executor)
	return makeExecutor(node, qctx, visited)
}

func makeExecutor(node plan.Node, qctx *QueryContext, visited map[int64]Executor) (Executor, error) {
	if node == nil {
		return nil, fmt.Errorf("plan contains a nil node")
	}
	if e, ok := visited[node.ID()]; ok {
		return e, nil
	}
	e, err := newExecutor(node, qctx)
	if err != nil {
		return nil, err
	}
	// Record the executor before recursing so re-entrant references to the
	// same identity resolve to this instance.
	visited[node.ID()] = e

	deps := node.Deps()
	switch len(deps) {
	case 0:
		// Leaf, no wiring.
	case 1:
		switch n := node.(type) {
		case *plan.Select:
			thenArm, err := makeExecutor(n.Then(), qctx, visited)
			if err != nil {
				return nil, err
			}
			elseArm, err := makeExecutor(n.Otherwise(), qctx, visited)
			if err != nil {
				return nil, err
			}
			e.(*selectExecutor).setArms(thenArm, elseArm)
		case *plan.Loop:
			body, err := makeExecutor(n.Body(), qctx, visited)
			if err != nil {
				return nil, err
			}
			e.(*loopExecutor).setBody(body)
		}
		dep, err := makeExecutor(deps[0], qctx, visited)
		if err != nil {
			return nil, err
		}
		e.DependsOn(dep)
	case 2:
		left, err := makeExecutor(deps[0], qctx, visited)
		if err != nil {
			return nil, err
		}
		right, err := makeExecutor(deps[1], qctx, visited)
		if err != nil {
			return nil, err
		}
		e.DependsOn(left)
		e.DependsOn(right)
	default:
		return nil, fmt.Errorf("plan node %d (%v) has unsupported dependency count %d",
			node.ID(), node.Kind(), len(deps))
	}
	return e, nil
}

// newExecutor is the total mapping from node kind to executor constructor.
func newExecutor(node plan.Node, qctx *QueryContext) (Executor, error) {
	pool := qctx.ObjectPool()
	switch n := node.(type) {
	case *plan.Start:
		return pool.Add(newStartExecutor(n, qctx)), nil
	case *plan.Enumerate:
		return pool.Add(newEnumerateExecutor(n, qctx)), nil
	case *plan.PassThrough:
		return pool.Add(newPassThroughExecutor(n, qctx)), nil
	case *plan.Select:
		return pool.Add(newSelectExecutor(n, qctx)), nil
	case *plan.Loop:
		return pool.Add(newLoopExecutor(n, qctx)), nil
	case *plan.Project:
		return pool.Add(newProjectExecutor(n, qctx)), nil
	case *plan.Filter:
		return pool.Add(newFilterExecutor(n, qctx)), nil
	case *plan.Limit:
		return pool.Add(newLimitExecutor(n, qctx)), nil
	case *plan.Dedup:
		return pool.Add(newDedupExecutor(n, qctx)), nil
	case *plan.Sort:
		return pool.Add(newSortExecutor(n, qctx)), nil
	case *plan.Union:
		return pool.Add(newUnionExecutor(n, qctx)), nil
	case *plan.Intersect:
		return pool.Add(newIntersectExecutor(n, qctx)), nil
	case *plan.Minus:
		return pool.Add(newMinusExecutor(n, qctx)), nil
	case *plan.Aggregate:
		return pool.Add(newAggregateExecutor(n, qctx)), nil
	case *plan.DataCollect:
		return pool.Add(newDataCollectExecutor(n, qctx)), nil
	}
	return nil, fmt.Errorf("unknown plan node kind %v (node %d)", node.Kind(), node.ID())
}

// baseExecutor carries the state and behavior shared by all executors.
// Concrete executors embed it and implement Execute.
type baseExecutor struct {
	id      int64
	name    string
	node    plan.Node
	qctx    *QueryContext
	ectx    *ExecutionContext
	depends []Executor

	// Per-activation state, cleared by Open.
	numRows      int
	execDuration time.Duration
	openedAt     time.Time
}

// newBaseExecutor registers the node's output variable slot so no
// registration-time synchronization is needed once executors run
// concurrently.
func newBaseExecutor(name string, node plan.Node, qctx *QueryContext) baseExecutor {
	ectx := qctx.ExecutionContext()
	if !ectx.Exists(node.OutputVar()) {
		ectx.InitVar(node.OutputVar())
	}
	return baseExecutor{
		id:   node.ID(),
		name: name,
		node: node,
		qctx: qctx,
		ectx: ectx,
	}
}

func (b *baseExecutor) ID() int64 {
	return b.id
}

func (b *baseExecutor) Name() string {
	return b.name
}

func (b *baseExecutor) Node() plan.Node {
	return b.node
}

func (b *baseExecutor) DependsOn(dep Executor) {
	b.depends = append(b.depends, dep)
}

func (b *baseExecutor) Depends() []Executor {
	return b.depends
}

// Open implements Executor.Open.
func (b *baseExecutor) Open() error {
	b.numRows = 0
	b.execDuration = 0
	b.openedAt = b.clock().Now()
	return nil
}

// Close implements Executor.Close.
func (b *baseExecutor) Close() error {
	b.qctx.AddProfilingStats(b.id, ProfilingStats{
		TotalDuration: b.clock().Now().Sub(b.openedAt),
		ExecDuration:  b.execDuration,
		Rows:          b.numRows,
	})
	return nil
}

func (b *baseExecutor) clock() clocks.Source {
	if b.qctx == nil || b.qctx.Clock() == nil {
		return clocks.Wall
	}
	return b.qctx.Clock()
}

// runner returns the injected runner, falling back to immediate execution on
// the current goroutine. The fallback is just for isolated tests.
func (b *baseExecutor) runner() async.Runner {
	if b.qctx == nil || b.qctx.Runner() == nil {
		return async.Inline
	}
	return b.qctx.Runner()
}

// run schedules fn on the runner and returns a future for its settlement,
// accounting the time fn spends as this activation's execution time.
func (b *baseExecutor) run(fn func() error) *async.Future {
	p := async.NewPromise()
	b.runner().Run(func() {
		started := b.clock().Now()
		err := fn()
		b.execDuration += b.clock().Now().Sub(started)
		p.Settle(err)
	})
	return p.Future()
}

// finish publishes res for this node's output variable and records the row
// count. It is the only way an executor communicates its output.
func (b *baseExecutor) finish(res Result) error {
	b.numRows = res.Size()
	b.ectx.SetResult(b.node.OutputVar(), res)
	return nil
}

// inputResult reads the first dependency's current result.
func (b *baseExecutor) inputResult() Result {
	return b.depResult(0)
}

// depResult reads the i'th dependency's current result.
func (b *baseExecutor) depResult(i int) Result {
	deps := b.node.Deps()
	if i >= len(deps) {
		return Result{}
	}
	res, _ := b.ectx.Result(deps[i].OutputVar())
	return res
}

// inputDataSet reads the first dependency's result as a dataset.
func (b *baseExecutor) inputDataSet() (*model.DataSet, error) {
	return b.depDataSet(0)
}

// depDataSet reads the i'th dependency's result as a dataset.
func (b *baseExecutor) depDataSet(i int) (*model.DataSet, error) {
	res := b.depResult(i)
	ds, ok := res.Value().DataSet()
	if !ok {
		return nil, fmt.Errorf("%s requires a DataSet input, got %v", b.name, res.Value().Kind())
	}
	return ds, nil
}

// rowLookup resolves names against a row's columns first, then the execution
// context's variables.
func (b *baseExecutor) rowLookup(cols []string, row []model.Value) plan.Lookup {
	vars := b.ectx.Lookup()
	return func(name string) (model.Value, bool) {
		for i, c := range cols {
			if c == name {
				return row[i], true
			}
		}
		return vars(name)
	}
}
