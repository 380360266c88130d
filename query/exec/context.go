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
	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
	"github.com/puzpuzpuz/xsync/v3"
)

// ExecutionContext is one query's table of output variables: the name each
// executor publishes its Result under, mapped to the most recently published
// Result. Every slot is registered before execution starts and each variable
// has exactly one writer (the executor whose output variable it is), so
// readers never observe a partially published value.
type ExecutionContext struct {
	results *xsync.MapOf[string, Result]
}

// NewExecutionContext returns an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{results: xsync.NewMapOf[string, Result]()}
}

// InitVar registers an empty slot for the named variable. It is called from
// executor constructors, during the single-threaded build of the executor
// graph.
func (e *ExecutionContext) InitVar(name string) {
	e.results.LoadOrStore(name, Result{})
}

// Exists reports whether the named variable has a slot.
func (e *ExecutionContext) Exists(name string) bool {
	_, ok := e.results.Load(name)
	return ok
}

// SetResult publishes a new Result for the named variable, replacing any
// previous one.
func (e *ExecutionContext) SetResult(name string, res Result) {
	e.results.Store(name, res)
}

// Result returns the most recently published Result for the named variable.
// ok is false if the variable was never registered.
func (e *ExecutionContext) Result(name string) (res Result, ok bool) {
	return e.results.Load(name)
}

// Lookup returns a plan.Lookup over the context's variables. A variable
// holding a single-cell dataset reads as that cell, so a condition can
// compare a loop counter without unwrapping the table around it.
func (e *ExecutionContext) Lookup() plan.Lookup {
	return func(name string) (model.Value, bool) {
		res, ok := e.results.Load(name)
		if !ok {
			return model.Null, false
		}
		v := res.Value()
		if ds, isDS := v.DataSet(); isDS && ds.NumRows() == 1 && ds.NumCols() == 1 {
			return ds.Rows[0][0], true
		}
		return v, true
	}
}
