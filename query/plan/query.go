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

package plan

import "github.com/ebay/katmai/query/model"

// Enumerate is a leaf node that emits a fixed dataset. Besides carrying
// planner-computed constants, it is the workhorse input for tests.
type Enumerate struct {
	baseNode
	Cols []string
	Rows [][]model.Value
}

// NewEnumerate creates an Enumerate node emitting the given rows.
func (p *Plan) NewEnumerate(cols []string, rows [][]model.Value) *Enumerate {
	return &Enumerate{
		baseNode: newBaseNode(p.newID(), KindEnumerate),
		Cols:     cols,
		Rows:     rows,
	}
}

// Column is one projected output column: an expression and the name it is
// published under.
type Column struct {
	Expr  Expr
	Alias string
}

// Project evaluates an expression list against every input row.
type Project struct {
	baseNode
	Cols []Column
}

// NewProject creates a Project node over input.
func (p *Plan) NewProject(input Node, cols []Column) *Project {
	return &Project{baseNode: newBaseNode(p.newID(), KindProject, input), Cols: cols}
}

// Filter keeps the input rows its condition evaluates to true for.
type Filter struct {
	baseNode
	Condition Expr
}

// NewFilter creates a Filter node over input.
func (p *Plan) NewFilter(input Node, condition Expr) *Filter {
	return &Filter{baseNode: newBaseNode(p.newID(), KindFilter, input), Condition: condition}
}

// Limit paginates the input rows. A negative Count means no limit.
type Limit struct {
	baseNode
	Offset int64
	Count  int64
}

// NewLimit creates a Limit node over input.
func (p *Plan) NewLimit(input Node, offset, count int64) *Limit {
	return &Limit{baseNode: newBaseNode(p.newID(), KindLimit, input), Offset: offset, Count: count}
}

// Dedup removes duplicate rows, keeping first occurrences in input order.
type Dedup struct {
	baseNode
}

// NewDedup creates a Dedup node over input.
func (p *Plan) NewDedup(input Node) *Dedup {
	return &Dedup{baseNode: newBaseNode(p.newID(), KindDedup, input)}
}

// SortKey is one column of a sort order.
type SortKey struct {
	Col  string
	Desc bool
}

// Sort orders the input rows by the given keys. The sort is stable.
type Sort struct {
	baseNode
	Keys []SortKey
}

// NewSort creates a Sort node over input.
func (p *Plan) NewSort(input Node, keys []SortKey) *Sort {
	return &Sort{baseNode: newBaseNode(p.newID(), KindSort, input), Keys: keys}
}

// Union concatenates the rows of its two dependencies. Column sets must
// match.
type Union struct {
	baseNode
}

// NewUnion creates a Union of left and right.
func (p *Plan) NewUnion(left, right Node) *Union {
	return &Union{baseNode: newBaseNode(p.newID(), KindUnion, left, right)}
}

// Intersect keeps the left rows that also appear on the right.
type Intersect struct {
	baseNode
}

// NewIntersect creates an Intersect of left and right.
func (p *Plan) NewIntersect(left, right Node) *Intersect {
	return &Intersect{baseNode: newBaseNode(p.newID(), KindIntersect, left, right)}
}

// Minus keeps the left rows that do not appear on the right.
type Minus struct {
	baseNode
}

// NewMinus creates a Minus of left and right.
func (p *Plan) NewMinus(left, right Node) *Minus {
	return &Minus{baseNode: newBaseNode(p.newID(), KindMinus, left, right)}
}

// AggFunc enumerates the aggregate functions.
type AggFunc int

// The supported aggregate functions.
const (
	AggCount AggFunc = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAvg:
		return "avg"
	}
	return "AggFunc(?)"
}

// AggItem is one aggregate output column: a function over an input column,
// published under Alias. Col is ignored for AggCount.
type AggItem struct {
	Func  AggFunc
	Col   string
	Alias string
}

// Aggregate groups the input rows by GroupKeys and computes Items per group.
// With no GroupKeys the whole input forms one group.
type Aggregate struct {
	baseNode
	GroupKeys []string
	Items     []AggItem
}

// NewAggregate creates an Aggregate node over input.
func (p *Plan) NewAggregate(input Node, groupKeys []string, items []AggItem) *Aggregate {
	return &Aggregate{
		baseNode:  newBaseNode(p.newID(), KindAggregate, input),
		GroupKeys: groupKeys,
		Items:     items,
	}
}

// DataCollect gathers the datasets published under Vars into one dataset, in
// order. Its dependency only sequences it after the producers have run.
type DataCollect struct {
	baseNode
	Vars []string
}

// NewDataCollect creates a DataCollect node over input.
func (p *Plan) NewDataCollect(input Node, vars []string) *DataCollect {
	return &DataCollect{baseNode: newBaseNode(p.newID(), KindDataCollect, input), Vars: vars}
}
