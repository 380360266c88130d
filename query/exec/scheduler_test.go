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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
	"github.com/ebay/katmai/util/clocks"
)

func TestScheduleLinearChain(t *testing.T) {
	p := plan.New()
	source := p.NewEnumerate([]string{"n"}, intRows(5))
	doubled := p.NewProject(source, []plan.Column{
		{Expr: plan.Multiply(plan.Var("n"), plan.ConstInt(2)), Alias: "n"},
	})
	plusOne := p.NewProject(doubled, []plan.Column{
		{Expr: plan.Add(plan.Var("n"), plan.ConstInt(1)), Alias: "n"},
	})
	p.SetRoot(plusOne)

	ds, qctx := execute(t, p)
	assert.True(t, ds.Equal(dataSet(t, []string{"n"}, ints(11))), "got %v", ds)

	// Each node activated exactly once.
	for _, node := range []plan.Node{source, doubled, plusOne} {
		assert.Len(t, qctx.ProfilingStats(node.ID()), 1, "node %v", node)
	}
}

// Two consumers of the same Enumerate must observe a single activation of it.
func TestScheduleSharedDependencyRunsOnce(t *testing.T) {
	p := plan.New()
	source := p.NewEnumerate([]string{"n"}, intRows(10))
	source.SetOutputVar("S")
	left := p.NewProject(source, []plan.Column{
		{Expr: plan.Add(plan.Var("n"), plan.ConstInt(1)), Alias: "c"},
	})
	left.SetOutputVar("L")
	right := p.NewProject(source, []plan.Column{
		{Expr: plan.Multiply(plan.Var("n"), plan.ConstInt(2)), Alias: "c"},
	})
	right.SetOutputVar("R")
	union := p.NewUnion(left, right)
	p.SetRoot(union)

	ds, qctx := execute(t, p)
	assert.True(t, ds.Equal(dataSet(t, []string{"c"}, ints(11), ints(20))), "got %v", ds)

	assert.Len(t, qctx.ProfilingStats(source.ID()), 1)
	assert.Len(t, qctx.ProfilingStats(union.ID()), 1)

	lookup := qctx.ExecutionContext().Lookup()
	l, ok := lookup("L")
	require.True(t, ok)
	assert.True(t, l.Equal(model.NewInt(11)))
	r, ok := lookup("R")
	require.True(t, ok)
	assert.True(t, r.Equal(model.NewInt(20)))
}

func TestScheduleSelectRunsOnlyChosenArm(t *testing.T) {
	for _, taken := range []bool{true, false} {
		p := plan.New()
		thenProj := p.NewProject(p.NewStart(), []plan.Column{
			{Expr: plan.ConstInt(1), Alias: "v"},
		})
		thenProj.SetOutputVar("then_out")
		elseProj := p.NewProject(p.NewStart(), []plan.Column{
			{Expr: plan.ConstInt(2), Alias: "v"},
		})
		elseProj.SetOutputVar("else_out")
		sel := p.NewSelect(p.NewStart(), plan.ConstBool(taken), thenProj, elseProj)
		p.SetRoot(sel)

		_, qctx := execute(t, p)

		chosen, skipped := thenProj, elseProj
		chosenVar, skippedVar := "then_out", "else_out"
		want := model.NewInt(1)
		if !taken {
			chosen, skipped = elseProj, thenProj
			chosenVar, skippedVar = "else_out", "then_out"
			want = model.NewInt(2)
		}

		assert.Len(t, qctx.ProfilingStats(chosen.ID()), 1, "taken=%v", taken)
		assert.Empty(t, qctx.ProfilingStats(skipped.ID()), "taken=%v", taken)

		lookup := qctx.ExecutionContext().Lookup()
		got, ok := lookup(chosenVar)
		require.True(t, ok)
		assert.True(t, got.Equal(want), "taken=%v got %v", taken, got)

		// The skipped arm's slot exists but was never published to.
		res, ok := qctx.ExecutionContext().Result(skippedVar)
		require.True(t, ok)
		assert.True(t, res.Value().IsNull(), "taken=%v", taken)
	}
}

// A loop counting to 3 must activate its body exactly three times, each
// iteration reading the counter the previous one published.
func TestScheduleLoopIterates(t *testing.T) {
	p := plan.New()
	init := p.NewProject(p.NewStart(), []plan.Column{
		{Expr: plan.ConstInt(0), Alias: "c"},
	})
	init.SetOutputVar("counter")

	increment := p.NewProject(p.NewStart(), []plan.Column{
		{Expr: plan.Add(plan.Var("counter"), plan.ConstInt(1)), Alias: "c"},
	})
	increment.SetOutputVar("counter")

	loop := p.NewLoop(init, plan.Less(plan.Var("counter"), plan.ConstInt(3)), increment)
	p.SetRoot(loop)

	_, qctx := execute(t, p)

	// 3 body passes, plus the initial publish by init.
	assert.Len(t, qctx.ProfilingStats(increment.ID()), 3)
	assert.Len(t, qctx.ProfilingStats(init.ID()), 1)
	// The loop evaluated its condition 4 times: 0<3, 1<3, 2<3, 3<3.
	assert.Len(t, qctx.ProfilingStats(loop.ID()), 4)

	counter, ok := qctx.ExecutionContext().Lookup()("counter")
	require.True(t, ok)
	assert.True(t, counter.Equal(model.NewInt(3)), "got %v", counter)
}

func TestScheduleLoopBodyNeverRuns(t *testing.T) {
	p := plan.New()
	body := p.NewProject(p.NewStart(), []plan.Column{
		{Expr: plan.ConstInt(1), Alias: "v"},
	})
	loop := p.NewLoop(p.NewStart(), plan.ConstBool(false), body)
	p.SetRoot(loop)

	_, qctx := execute(t, p)
	assert.Empty(t, qctx.ProfilingStats(body.ID()))
	assert.Len(t, qctx.ProfilingStats(loop.ID()), 1)
}

// failingExpr settles whatever evaluates it with a fixed error.
type failingExpr struct {
	err error
}

func (f failingExpr) Eval(plan.Lookup) (model.Value, error) {
	return model.Null, f.err
}

func (f failingExpr) String() string { return "boom()" }

// A failure must reach the root unchanged and skip everything downstream of
// it, while the failing executor itself still closes.
func TestScheduleFailureShortCircuits(t *testing.T) {
	boom := errors.New("boom")

	p := plan.New()
	source := p.NewEnumerate([]string{"n"}, intRows(1, 2, 3))
	filter := p.NewFilter(source, failingExpr{err: boom})
	project := p.NewProject(filter, []plan.Column{
		{Expr: plan.Var("n"), Alias: "n"},
	})
	p.SetRoot(project)

	qctx := NewQueryContext()
	_, err := executeOn(t, p, qctx)
	require.Error(t, err)
	assert.Same(t, boom, err)

	// The filter activated, failed, and was still closed.
	assert.Len(t, qctx.ProfilingStats(filter.ID()), 1)
	// The project downstream of the failure never activated.
	assert.Empty(t, qctx.ProfilingStats(project.ID()))
}

func TestScheduleCanceledContext(t *testing.T) {
	p := plan.New()
	p.SetRoot(p.NewEnumerate([]string{"n"}, intRows(1)))

	qctx := NewQueryContext()
	root, err := Create(p.Root(), qctx)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewScheduler(qctx).Schedule(ctx, root).Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, qctx.ProfilingStats(p.Root().ID()))
}

// advancingRunner moves a mock clock forward before every task, simulating
// scheduling delay without real sleeps.
type advancingRunner struct {
	clock *clocks.Mock
	step  time.Duration
}

func (r advancingRunner) Run(task func()) {
	r.clock.Advance(r.step)
	task()
}

func TestProfilingTotalCoversWait(t *testing.T) {
	clock := clocks.NewMock()

	p := plan.New()
	source := p.NewEnumerate([]string{"n"}, intRows(7))
	p.SetRoot(source)

	qctx := NewQueryContext()
	qctx.SetClock(clock)
	qctx.SetRunner(advancingRunner{clock: clock, step: time.Millisecond})

	_, err := executeOn(t, p, qctx)
	require.NoError(t, err)

	stats := qctx.ProfilingStats(source.ID())
	require.Len(t, stats, 1)
	assert.Greater(t, stats[0].TotalDuration, time.Duration(0))
	assert.GreaterOrEqual(t, stats[0].TotalDuration, stats[0].ExecDuration)
	assert.Equal(t, 1, stats[0].Rows)
}

// Each loop iteration is a fresh pass: the per-pass memo must not leak
// futures across iterations, so a node inside the body re-activates every
// time.
func TestScheduleLoopBodySharedNodeReactivates(t *testing.T) {
	p := plan.New()
	init := p.NewProject(p.NewStart(), []plan.Column{
		{Expr: plan.ConstInt(0), Alias: "c"},
	})
	init.SetOutputVar("counter")

	bodySource := p.NewEnumerate([]string{"k"}, intRows(1))
	increment := p.NewProject(bodySource, []plan.Column{
		{Expr: plan.Add(plan.Var("counter"), plan.Var("k")), Alias: "c"},
	})
	increment.SetOutputVar("counter")

	loop := p.NewLoop(init, plan.Less(plan.Var("counter"), plan.ConstInt(2)), increment)
	p.SetRoot(loop)

	_, qctx := execute(t, p)
	assert.Len(t, qctx.ProfilingStats(bodySource.ID()), 2)
	assert.Len(t, qctx.ProfilingStats(increment.ID()), 2)
}
