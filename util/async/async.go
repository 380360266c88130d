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

// Package async provides a small future/promise library together with a
// pluggable task runner. A Future settles exactly once with an error status
// (nil meaning success); data produced by a task travels out of band, so
// futures stay cheap to chain. Continuations registered on a Future are
// scheduled through a Runner, which keeps the code that composes futures free
// of any assumptions about the threading model.
package async

import (
	"context"
	"sync"
	"sync/atomic"
)

// A Future represents the eventual settlement of an asynchronous task. It
// settles exactly once, either successfully (nil error) or with the error the
// task produced.
type Future struct {
	done chan struct{}
	err  error

	lock      sync.Mutex
	callbacks []func(error)
}

// A Promise is the producer side of a Future.
type Promise struct {
	future *Future
}

// NewPromise returns a Promise with an unsettled Future.
func NewPromise() *Promise {
	return &Promise{future: &Future{done: make(chan struct{})}}
}

// Future returns the Future that this Promise settles.
func (p *Promise) Future() *Future {
	return p.future
}

// Settle resolves the promised Future with the given error status (nil for
// success). Settle must be called at most once; calling it on an already
// settled Promise panics, as it indicates two tasks believe they own the same
// settlement.
func (p *Promise) Settle(err error) {
	f := p.future
	f.lock.Lock()
	select {
	case <-f.done:
		f.lock.Unlock()
		panic("async: promise settled twice")
	default:
	}
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.lock.Unlock()
	for _, cb := range callbacks {
		cb(err)
	}
}

// Settled returns a Future that settles with 'err' from a task scheduled on
// 'runner'.
func Settled(runner Runner, err error) *Future {
	p := NewPromise()
	runner.Run(func() {
		p.Settle(err)
	})
	return p.Future()
}

// subscribe arranges for cb to be called with the settled status. If the
// Future has already settled, cb is called on the current goroutine before
// subscribe returns.
func (f *Future) subscribe(cb func(error)) {
	f.lock.Lock()
	select {
	case <-f.done:
		f.lock.Unlock()
		cb(f.err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, cb)
	f.lock.Unlock()
}

// Then returns a Future that settles with the result of fn, which runs on
// 'runner' once f has settled. fn receives f's status and may replace it or
// pass it through unchanged.
func (f *Future) Then(runner Runner, fn func(error) error) *Future {
	p := NewPromise()
	f.subscribe(func(err error) {
		runner.Run(func() {
			p.Settle(fn(err))
		})
	})
	return p.Future()
}

// ThenFuture is like Then for continuations that are themselves asynchronous:
// the returned Future settles only once the Future produced by fn settles.
func (f *Future) ThenFuture(runner Runner, fn func(error) *Future) *Future {
	p := NewPromise()
	f.subscribe(func(err error) {
		runner.Run(func() {
			fn(err).subscribe(func(err error) {
				p.Settle(err)
			})
		})
	})
	return p.Future()
}

// All returns a Future that settles successfully once every given future has
// settled successfully, or with the first observed error as soon as any of
// them fails. It does not wait for the remaining futures after a failure.
func All(runner Runner, futures ...*Future) *Future {
	switch len(futures) {
	case 0:
		return Settled(runner, nil)
	case 1:
		return futures[0]
	}
	p := NewPromise()
	var settleOnce sync.Once
	pending := int32(len(futures))
	for _, f := range futures {
		f.subscribe(func(err error) {
			if err != nil {
				settleOnce.Do(func() {
					runner.Run(func() {
						p.Settle(err)
					})
				})
				return
			}
			if atomic.AddInt32(&pending, -1) == 0 {
				settleOnce.Do(func() {
					runner.Run(func() {
						p.Settle(nil)
					})
				})
			}
		})
	}
	return p.Future()
}

// Wait blocks the calling goroutine until f settles or ctx expires, whichever
// comes first, and returns the corresponding error. It is intended for the
// client at the root of a future chain; tasks themselves should chain
// continuations instead of blocking.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
