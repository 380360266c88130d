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

import "github.com/ebay/katmai/query/model"

// IterKind tags how a consumer should traverse a Result.
type IterKind uint8

const (
	// IterDefault treats the payload as a single value: one row holding it.
	IterDefault IterKind = iota
	// IterSequential walks the rows of a DataSet payload in order.
	IterSequential
)

// Result is the immutable payload an executor publishes to the execution
// context. Once published it is never mutated in place; republishing replaces
// the whole Result. The zero value is an empty default-iteration Result.
type Result struct {
	value model.Value
	iter  IterKind
}

// ValueResult wraps a single value with default iteration.
func ValueResult(v model.Value) Result {
	return NewResultBuilder().Value(v).Build()
}

// DataSetResult wraps a dataset with sequential iteration.
func DataSetResult(ds *model.DataSet) Result {
	return NewResultBuilder().DataSet(ds).Iter(IterSequential).Build()
}

// ResultBuilder assembles a Result. Build may be called once per builder.
type ResultBuilder struct {
	res Result
}

// NewResultBuilder returns a builder for an empty default-iteration Result.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{}
}

// Value sets the payload.
func (b *ResultBuilder) Value(v model.Value) *ResultBuilder {
	b.res.value = v
	return b
}

// DataSet sets the payload to a dataset.
func (b *ResultBuilder) DataSet(ds *model.DataSet) *ResultBuilder {
	b.res.value = model.NewDataSetValue(ds)
	return b
}

// Iter sets the traversal tag.
func (b *ResultBuilder) Iter(kind IterKind) *ResultBuilder {
	b.res.iter = kind
	return b
}

// Build returns the assembled Result.
func (b *ResultBuilder) Build() Result {
	return b.res
}

// Value returns the payload.
func (r Result) Value() model.Value {
	return r.value
}

// IterKind returns the traversal tag.
func (r Result) IterKind() IterKind {
	return r.iter
}

// Size returns the number of rows this Result holds: the dataset's row count,
// 0 for Null, 1 otherwise.
func (r Result) Size() int {
	if ds, ok := r.value.DataSet(); ok {
		return ds.NumRows()
	}
	if r.value.IsNull() {
		return 0
	}
	return 1
}

// Iterator returns a row iterator positioned on the first row.
func (r Result) Iterator() *Iterator {
	if r.iter == IterSequential {
		if ds, ok := r.value.DataSet(); ok {
			return &Iterator{cols: ds.ColNames, rows: ds.Rows}
		}
	}
	if r.value.IsNull() {
		return &Iterator{}
	}
	return &Iterator{rows: [][]model.Value{{r.value}}}
}

// Iterator walks a Result's rows.
type Iterator struct {
	cols []string
	rows [][]model.Value
	pos  int
}

// Valid reports whether the iterator is positioned on a row.
func (it *Iterator) Valid() bool {
	return it.pos < len(it.rows)
}

// Next advances to the next row.
func (it *Iterator) Next() {
	it.pos++
}

// Row returns the current row.
func (it *Iterator) Row() []model.Value {
	return it.rows[it.pos]
}

// Col returns the named cell of the current row. ok is false if the column
// doesn't exist.
func (it *Iterator) Col(name string) (v model.Value, ok bool) {
	for i, c := range it.cols {
		if c == name {
			return it.Row()[i], true
		}
	}
	return model.Null, false
}

// Len returns the total row count, independent of position.
func (it *Iterator) Len() int {
	return len(it.rows)
}
