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

package async

import "sync"

// A Runner executes tasks, possibly on another goroutine, possibly later.
// Continuations of futures are always scheduled through a Runner.
type Runner interface {
	// Run schedules the task. It must not block waiting for the task to
	// complete.
	Run(task func())
}

// Inline runs every task immediately on the calling goroutine. It is the
// fallback when no Runner was supplied, which is mostly useful in tests.
var Inline Runner = inlineRunner{}

type inlineRunner struct{}

func (inlineRunner) Run(task func()) {
	task()
}

// Pool is a Runner backed by a fixed number of worker goroutines. The task
// queue is unbounded so that a task may safely schedule further tasks without
// risking deadlock.
type Pool struct {
	lock    sync.Mutex
	ready   *sync.Cond
	queue   []func()
	stopped bool
	workers sync.WaitGroup
}

// NewPool starts a Pool with the given number of workers (at least 1).
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{}
	p.ready = sync.NewCond(&p.lock)
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Run implements Runner. Calling Run after Stop panics.
func (p *Pool) Run(task func()) {
	p.lock.Lock()
	if p.stopped {
		p.lock.Unlock()
		panic("async: Run called on stopped Pool")
	}
	p.queue = append(p.queue, task)
	p.lock.Unlock()
	p.ready.Signal()
}

// Stop waits for queued tasks to drain, then shuts the workers down.
func (p *Pool) Stop() {
	p.lock.Lock()
	p.stopped = true
	p.lock.Unlock()
	p.ready.Broadcast()
	p.workers.Wait()
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for {
		p.lock.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.ready.Wait()
		}
		if len(p.queue) == 0 {
			p.lock.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.lock.Unlock()
		task()
	}
}
