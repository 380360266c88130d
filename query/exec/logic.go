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
	"fmt"

	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
	"github.com/ebay/katmai/util/async"
)

// startExecutor seeds a chain with a dataset holding one empty row, so that
// downstream projections of constants produce exactly one output row.
type startExecutor struct {
	baseExecutor
}

func newStartExecutor(node *plan.Start, qctx *QueryContext) *startExecutor {
	return &startExecutor{
		baseExecutor: newBaseExecutor("StartExecutor", node, qctx),
	}
}

func (s *startExecutor) Execute(ctx context.Context) *async.Future {
	return s.run(func() error {
		ds := model.NewDataSet()
		if err := ds.AddRow(); err != nil {
			return err
		}
		return s.finish(DataSetResult(ds))
	})
}

// passThroughExecutor republishes its input unchanged under its own output
// variable.
type passThroughExecutor struct {
	baseExecutor
}

func newPassThroughExecutor(node *plan.PassThrough, qctx *QueryContext) *passThroughExecutor {
	return &passThroughExecutor{
		baseExecutor: newBaseExecutor("PassThroughExecutor", node, qctx),
	}
}

func (p *passThroughExecutor) Execute(ctx context.Context) *async.Future {
	return p.run(func() error {
		return p.finish(p.inputResult())
	})
}

// selectExecutor evaluates its condition once per activation and records
// which arm the scheduler should run. The arms are separate sub-plans, not
// dependencies: only the chosen one ever executes.
type selectExecutor struct {
	baseExecutor
	cond    plan.Expr
	thenArm Executor
	elseArm Executor
	// took is valid after a successful activation.
	took bool
}

func newSelectExecutor(node *plan.Select, qctx *QueryContext) *selectExecutor {
	return &selectExecutor{
		baseExecutor: newBaseExecutor("SelectExecutor", node, qctx),
		cond:         node.Condition,
	}
}

func (s *selectExecutor) setArms(then, otherwise Executor) {
	s.thenArm = then
	s.elseArm = otherwise
}

func (s *selectExecutor) Open() error {
	s.took = false
	return s.baseExecutor.Open()
}

func (s *selectExecutor) Execute(ctx context.Context) *async.Future {
	return s.run(func() error {
		v, err := s.cond.Eval(s.ectx.Lookup())
		if err != nil {
			return err
		}
		taken, ok := v.Bool()
		if !ok {
			return fmt.Errorf("select condition %v evaluated to non-boolean %v",
				s.cond, v.Kind())
		}
		s.took = taken
		return s.finish(s.inputResult())
	})
}

// chosenArm returns the arm selected by the last activation.
func (s *selectExecutor) chosenArm() Executor {
	if s.took {
		return s.thenArm
	}
	return s.elseArm
}

// loopExecutor evaluates its condition once per activation; the scheduler
// activates it again after each body pass until the condition turns false.
// The body is a separate sub-plan, not a dependency.
type loopExecutor struct {
	baseExecutor
	cond plan.Expr
	body Executor
	// more is valid after a successful activation.
	more bool
}

func newLoopExecutor(node *plan.Loop, qctx *QueryContext) *loopExecutor {
	return &loopExecutor{
		baseExecutor: newBaseExecutor("LoopExecutor", node, qctx),
		cond:         node.Condition,
	}
}

func (l *loopExecutor) setBody(body Executor) {
	l.body = body
}

func (l *loopExecutor) Open() error {
	l.more = false
	return l.baseExecutor.Open()
}

func (l *loopExecutor) Execute(ctx context.Context) *async.Future {
	return l.run(func() error {
		v, err := l.cond.Eval(l.ectx.Lookup())
		if err != nil {
			return err
		}
		more, ok := v.Bool()
		if !ok {
			return fmt.Errorf("loop condition %v evaluated to non-boolean %v",
				l.cond, v.Kind())
		}
		l.more = more
		return l.finish(l.inputResult())
	})
}

// conditionMet reports whether the last activation decided to run the body
// again.
func (l *loopExecutor) conditionMet() bool {
	return l.more
}

func (l *loopExecutor) bodyExecutor() Executor {
	return l.body
}
