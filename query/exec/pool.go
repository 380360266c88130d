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

// ObjectPool is the query-scoped arena that owns every executor built for one
// execution. Executors reference each other through non-owning links; the
// pool is the single owner and releases them together when the query is torn
// down. It is populated only during the single-threaded compilation phase and
// read-only afterwards, so it needs no synchronization at run time.
type ObjectPool struct {
	executors []Executor
}

// NewObjectPool returns an empty pool.
func NewObjectPool() *ObjectPool {
	return &ObjectPool{}
}

// Add takes ownership of e and returns it, so constructor calls can be
// wrapped in place.
func (p *ObjectPool) Add(e Executor) Executor {
	p.executors = append(p.executors, e)
	return e
}

// Size returns how many executors the pool owns.
func (p *ObjectPool) Size() int {
	return len(p.executors)
}

// Release drops all owned executors. The pool is reusable but empty
// afterwards.
func (p *ObjectPool) Release() {
	p.executors = nil
}
