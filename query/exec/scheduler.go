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

	log "github.com/sirupsen/logrus"

	"github.com/ebay/katmai/util/async"
)

// Scheduler drives an executor graph to completion. Each scheduling pass
// walks the graph once, memoizing one future per executor, so a shared
// dependency activates exactly once per pass no matter how many consumers it
// has. Select arms and Loop bodies each get their own pass: the same
// executors, fresh futures.
type Scheduler struct {
	qctx *QueryContext
}

// NewScheduler returns a Scheduler over the query's context.
func NewScheduler(qctx *QueryContext) *Scheduler {
	return &Scheduler{qctx: qctx}
}

// Schedule starts the graph rooted at root and returns a future that settles
// when the root has. A failure anywhere settles the returned future with that
// same error; executors downstream of a failure are never activated.
func (s *Scheduler) Schedule(ctx context.Context, root Executor) *async.Future {
	return s.schedule(ctx, root, make(map[int64]*async.Future))
}

func (s *Scheduler) runner() async.Runner {
	if s.qctx.Runner() == nil {
		return async.Inline
	}
	return s.qctx.Runner()
}

// schedule returns the future for e within the current pass, creating it (and
// its dependencies' futures) on first sight.
func (s *Scheduler) schedule(ctx context.Context, e Executor, futures map[int64]*async.Future) *async.Future {
	if f, ok := futures[e.ID()]; ok {
		return f
	}
	runner := s.runner()
	deps := e.Depends()
	depFutures := make([]*async.Future, len(deps))
	for i, dep := range deps {
		depFutures[i] = s.schedule(ctx, dep, futures)
	}
	f := async.All(runner, depFutures...).ThenFuture(runner, func(err error) *async.Future {
		if err != nil {
			// A dependency failed. Skip this executor entirely and pass the
			// error along unchanged.
			return async.Settled(runner, err)
		}
		return s.runExecutor(ctx, e)
	})
	futures[e.ID()] = f
	return f
}

// runExecutor performs one activation of e: Open, Execute, and Close once the
// execution settles, whatever the outcome. Select and Loop executors chain
// their nested pass onto the activation.
func (s *Scheduler) runExecutor(ctx context.Context, e Executor) *async.Future {
	runner := s.runner()
	if err := ctx.Err(); err != nil {
		return async.Settled(runner, err)
	}
	log.WithFields(log.Fields{
		"executor": e.Name(),
		"node":     e.ID(),
	}).Debug("activating executor")
	if err := e.Open(); err != nil {
		if cerr := e.Close(); cerr != nil {
			log.WithFields(log.Fields{
				"executor": e.Name(),
				"node":     e.ID(),
			}).WithError(cerr).Warn("executor close failed")
		}
		return async.Settled(runner, err)
	}
	settled := e.Execute(ctx).Then(runner, func(err error) error {
		cerr := e.Close()
		if err != nil {
			return err
		}
		return cerr
	})
	switch x := e.(type) {
	case *selectExecutor:
		return settled.ThenFuture(runner, func(err error) *async.Future {
			if err != nil {
				return async.Settled(runner, err)
			}
			return s.schedule(ctx, x.chosenArm(), make(map[int64]*async.Future))
		})
	case *loopExecutor:
		return settled.ThenFuture(runner, func(err error) *async.Future {
			if err != nil {
				return async.Settled(runner, err)
			}
			return s.iterateLoop(ctx, x)
		})
	}
	return settled
}

// iterateLoop runs the loop body if the last condition evaluation asked for
// it, then re-activates the loop executor, until the condition turns false.
// Iterations are strictly sequential and each one is a fresh pass over the
// body.
func (s *Scheduler) iterateLoop(ctx context.Context, l *loopExecutor) *async.Future {
	runner := s.runner()
	if !l.conditionMet() {
		return async.Settled(runner, nil)
	}
	body := s.schedule(ctx, l.bodyExecutor(), make(map[int64]*async.Future))
	return body.ThenFuture(runner, func(err error) *async.Future {
		if err != nil {
			return async.Settled(runner, err)
		}
		return s.runExecutor(ctx, l)
	})
}
