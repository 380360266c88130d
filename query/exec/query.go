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
	"strings"

	"github.com/google/btree"

	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
	"github.com/ebay/katmai/util/async"
	"github.com/ebay/katmai/util/cmp"
)

// row gives rows a canonical form for dedup and the set operations.
type row []model.Value

// Key implements cmp.Key.
func (r row) Key(b *strings.Builder) {
	for i, cell := range r {
		if i > 0 {
			b.WriteByte('\x00')
		}
		cell.Key(b)
	}
}

func rowKey(cells []model.Value) string {
	return cmp.GetKey(row(cells))
}

// enumerateExecutor emits the fixed dataset its node carries.
type enumerateExecutor struct {
	baseExecutor
	cols []string
	rows [][]model.Value
}

func newEnumerateExecutor(node *plan.Enumerate, qctx *QueryContext) *enumerateExecutor {
	return &enumerateExecutor{
		baseExecutor: newBaseExecutor("EnumerateExecutor", node, qctx),
		cols:         node.Cols,
		rows:         node.Rows,
	}
}

func (e *enumerateExecutor) Execute(ctx context.Context) *async.Future {
	return e.run(func() error {
		ds := model.NewDataSet(e.cols...)
		for _, row := range e.rows {
			if err := ds.AddRow(row...); err != nil {
				return err
			}
		}
		return e.finish(DataSetResult(ds))
	})
}

// projectExecutor evaluates its column expressions against every input row.
type projectExecutor struct {
	baseExecutor
	cols []plan.Column
}

func newProjectExecutor(node *plan.Project, qctx *QueryContext) *projectExecutor {
	return &projectExecutor{
		baseExecutor: newBaseExecutor("ProjectExecutor", node, qctx),
		cols:         node.Cols,
	}
}

func (p *projectExecutor) Execute(ctx context.Context) *async.Future {
	return p.run(func() error {
		in, err := p.inputDataSet()
		if err != nil {
			return err
		}
		colNames := make([]string, len(p.cols))
		for i, c := range p.cols {
			colNames[i] = c.Alias
		}
		out := model.NewDataSet(colNames...)
		for _, row := range in.Rows {
			lookup := p.rowLookup(in.ColNames, row)
			cells := make([]model.Value, len(p.cols))
			for i, c := range p.cols {
				v, err := c.Expr.Eval(lookup)
				if err != nil {
					return err
				}
				cells[i] = v
			}
			if err := out.AddRow(cells...); err != nil {
				return err
			}
		}
		return p.finish(DataSetResult(out))
	})
}

// filterExecutor keeps the input rows its condition holds for.
type filterExecutor struct {
	baseExecutor
	cond plan.Expr
}

func newFilterExecutor(node *plan.Filter, qctx *QueryContext) *filterExecutor {
	return &filterExecutor{
		baseExecutor: newBaseExecutor("FilterExecutor", node, qctx),
		cond:         node.Condition,
	}
}

func (f *filterExecutor) Execute(ctx context.Context) *async.Future {
	return f.run(func() error {
		in, err := f.inputDataSet()
		if err != nil {
			return err
		}
		out := model.NewDataSet(in.ColNames...)
		for _, row := range in.Rows {
			v, err := f.cond.Eval(f.rowLookup(in.ColNames, row))
			if err != nil {
				return err
			}
			keep, ok := v.Bool()
			if !ok {
				return fmt.Errorf("filter condition %v evaluated to non-boolean %v",
					f.cond, v.Kind())
			}
			if keep {
				out.Rows = append(out.Rows, row)
			}
		}
		return f.finish(DataSetResult(out))
	})
}

// limitExecutor paginates the input rows.
type limitExecutor struct {
	baseExecutor
	offset int64
	count  int64
}

func newLimitExecutor(node *plan.Limit, qctx *QueryContext) *limitExecutor {
	return &limitExecutor{
		baseExecutor: newBaseExecutor("LimitExecutor", node, qctx),
		offset:       node.Offset,
		count:        node.Count,
	}
}

func (l *limitExecutor) Execute(ctx context.Context) *async.Future {
	return l.run(func() error {
		in, err := l.inputDataSet()
		if err != nil {
			return err
		}
		start := l.offset
		if start < 0 {
			start = 0
		}
		if start > int64(len(in.Rows)) {
			start = int64(len(in.Rows))
		}
		end := int64(len(in.Rows))
		if l.count >= 0 && start+l.count < end {
			end = start + l.count
		}
		out := model.NewDataSet(in.ColNames...)
		out.Rows = in.Rows[start:end]
		return l.finish(DataSetResult(out))
	})
}

// dedupExecutor removes duplicate rows, keeping first occurrences in input
// order.
type dedupExecutor struct {
	baseExecutor
}

func newDedupExecutor(node *plan.Dedup, qctx *QueryContext) *dedupExecutor {
	return &dedupExecutor{
		baseExecutor: newBaseExecutor("DedupExecutor", node, qctx),
	}
}

func (d *dedupExecutor) Execute(ctx context.Context) *async.Future {
	return d.run(func() error {
		in, err := d.inputDataSet()
		if err != nil {
			return err
		}
		out := model.NewDataSet(in.ColNames...)
		seen := make(map[string]struct{}, len(in.Rows))
		for _, row := range in.Rows {
			key := rowKey(row)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out.Rows = append(out.Rows, row)
		}
		return d.finish(DataSetResult(out))
	})
}

// sortRow is a btree item: a row plus its input position, which breaks ties
// to keep the sort stable.
type sortRow struct {
	row []model.Value
	seq int
}

// sortExecutor orders the input rows by its node's keys.
type sortExecutor struct {
	baseExecutor
	keys []plan.SortKey
}

func newSortExecutor(node *plan.Sort, qctx *QueryContext) *sortExecutor {
	return &sortExecutor{
		baseExecutor: newBaseExecutor("SortExecutor", node, qctx),
		keys:         node.Keys,
	}
}

func (s *sortExecutor) Execute(ctx context.Context) *async.Future {
	return s.run(func() error {
		in, err := s.inputDataSet()
		if err != nil {
			return err
		}
		idx := make([]int, len(s.keys))
		for i, k := range s.keys {
			col, ok := in.ColIndex(k.Col)
			if !ok {
				return fmt.Errorf("sort key %q is not a column of the input", k.Col)
			}
			idx[i] = col
		}
		less := func(a, b *sortRow) bool {
			for i, k := range s.keys {
				av, bv := a.row[idx[i]], b.row[idx[i]]
				if av.Equal(bv) {
					continue
				}
				if k.Desc {
					return bv.Less(av)
				}
				return av.Less(bv)
			}
			return a.seq < b.seq
		}
		tree := btree.NewG(8, less)
		for i, row := range in.Rows {
			tree.ReplaceOrInsert(&sortRow{row: row, seq: i})
		}
		out := model.NewDataSet(in.ColNames...)
		out.Rows = make([][]model.Value, 0, len(in.Rows))
		tree.Ascend(func(item *sortRow) bool {
			out.Rows = append(out.Rows, item.row)
			return true
		})
		return s.finish(DataSetResult(out))
	})
}

// checkSameCols verifies two inputs to a set operation share a column list.
func checkSameCols(name string, left, right *model.DataSet) error {
	if len(left.ColNames) != len(right.ColNames) {
		return fmt.Errorf("%s inputs have mismatched columns: %v vs %v",
			name, left.ColNames, right.ColNames)
	}
	for i := range left.ColNames {
		if left.ColNames[i] != right.ColNames[i] {
			return fmt.Errorf("%s inputs have mismatched columns: %v vs %v",
				name, left.ColNames, right.ColNames)
		}
	}
	return nil
}

// unionExecutor concatenates its two inputs, left rows first.
type unionExecutor struct {
	baseExecutor
}

func newUnionExecutor(node *plan.Union, qctx *QueryContext) *unionExecutor {
	return &unionExecutor{
		baseExecutor: newBaseExecutor("UnionExecutor", node, qctx),
	}
}

func (u *unionExecutor) Execute(ctx context.Context) *async.Future {
	return u.run(func() error {
		left, err := u.depDataSet(0)
		if err != nil {
			return err
		}
		right, err := u.depDataSet(1)
		if err != nil {
			return err
		}
		if err := checkSameCols("union", left, right); err != nil {
			return err
		}
		out := model.NewDataSet(left.ColNames...)
		out.Rows = make([][]model.Value, 0, len(left.Rows)+len(right.Rows))
		out.Rows = append(out.Rows, left.Rows...)
		out.Rows = append(out.Rows, right.Rows...)
		return u.finish(DataSetResult(out))
	})
}

// intersectExecutor keeps the left rows that also appear on the right.
type intersectExecutor struct {
	baseExecutor
}

func newIntersectExecutor(node *plan.Intersect, qctx *QueryContext) *intersectExecutor {
	return &intersectExecutor{
		baseExecutor: newBaseExecutor("IntersectExecutor", node, qctx),
	}
}

func (i *intersectExecutor) Execute(ctx context.Context) *async.Future {
	return i.run(func() error {
		left, err := i.depDataSet(0)
		if err != nil {
			return err
		}
		right, err := i.depDataSet(1)
		if err != nil {
			return err
		}
		if err := checkSameCols("intersect", left, right); err != nil {
			return err
		}
		keep := make(map[string]struct{}, len(right.Rows))
		for _, row := range right.Rows {
			keep[rowKey(row)] = struct{}{}
		}
		out := model.NewDataSet(left.ColNames...)
		for _, row := range left.Rows {
			if _, ok := keep[rowKey(row)]; ok {
				out.Rows = append(out.Rows, row)
			}
		}
		return i.finish(DataSetResult(out))
	})
}

// minusExecutor keeps the left rows that do not appear on the right.
type minusExecutor struct {
	baseExecutor
}

func newMinusExecutor(node *plan.Minus, qctx *QueryContext) *minusExecutor {
	return &minusExecutor{
		baseExecutor: newBaseExecutor("MinusExecutor", node, qctx),
	}
}

func (m *minusExecutor) Execute(ctx context.Context) *async.Future {
	return m.run(func() error {
		left, err := m.depDataSet(0)
		if err != nil {
			return err
		}
		right, err := m.depDataSet(1)
		if err != nil {
			return err
		}
		if err := checkSameCols("minus", left, right); err != nil {
			return err
		}
		drop := make(map[string]struct{}, len(right.Rows))
		for _, row := range right.Rows {
			drop[rowKey(row)] = struct{}{}
		}
		out := model.NewDataSet(left.ColNames...)
		for _, row := range left.Rows {
			if _, ok := drop[rowKey(row)]; !ok {
				out.Rows = append(out.Rows, row)
			}
		}
		return m.finish(DataSetResult(out))
	})
}

// aggAcc accumulates one aggregate item over one group.
type aggAcc struct {
	fn    plan.AggFunc
	count int64
	sum   model.Value
	min   model.Value
	max   model.Value
}

func (a *aggAcc) add(v model.Value) error {
	a.count++
	switch a.fn {
	case plan.AggCount:
		return nil
	case plan.AggSum, plan.AggAvg:
		if a.sum.IsNull() {
			a.sum = v
			return nil
		}
		sum, err := model.Add(a.sum, v)
		if err != nil {
			return err
		}
		a.sum = sum
	case plan.AggMin:
		if a.min.IsNull() || v.Less(a.min) {
			a.min = v
		}
	case plan.AggMax:
		if a.max.IsNull() || a.max.Less(v) {
			a.max = v
		}
	}
	return nil
}

func (a *aggAcc) result() (model.Value, error) {
	switch a.fn {
	case plan.AggCount:
		return model.NewInt(a.count), nil
	case plan.AggSum:
		return a.sum, nil
	case plan.AggAvg:
		if a.count == 0 {
			return model.Null, nil
		}
		return model.Divide(a.sum, model.NewFloat(float64(a.count)))
	case plan.AggMin:
		return a.min, nil
	case plan.AggMax:
		return a.max, nil
	}
	return model.Null, fmt.Errorf("unknown aggregate function %v", a.fn)
}

// aggGroup holds the group key cells and the per-item accumulators.
type aggGroup struct {
	keyCells []model.Value
	accs     []*aggAcc
}

// aggregateExecutor groups the input rows and computes its node's aggregate
// items per group. With no group keys the whole input forms a single group,
// even when empty.
type aggregateExecutor struct {
	baseExecutor
	groupKeys []string
	items     []plan.AggItem
}

func newAggregateExecutor(node *plan.Aggregate, qctx *QueryContext) *aggregateExecutor {
	return &aggregateExecutor{
		baseExecutor: newBaseExecutor("AggregateExecutor", node, qctx),
		groupKeys:    node.GroupKeys,
		items:        node.Items,
	}
}

func (a *aggregateExecutor) Execute(ctx context.Context) *async.Future {
	return a.run(func() error {
		in, err := a.inputDataSet()
		if err != nil {
			return err
		}
		keyIdx := make([]int, len(a.groupKeys))
		for i, k := range a.groupKeys {
			col, ok := in.ColIndex(k)
			if !ok {
				return fmt.Errorf("group key %q is not a column of the input", k)
			}
			keyIdx[i] = col
		}
		itemIdx := make([]int, len(a.items))
		for i, item := range a.items {
			if item.Func == plan.AggCount {
				itemIdx[i] = -1
				continue
			}
			col, ok := in.ColIndex(item.Col)
			if !ok {
				return fmt.Errorf("aggregate column %q is not a column of the input", item.Col)
			}
			itemIdx[i] = col
		}

		newGroup := func(keyCells []model.Value) *aggGroup {
			g := &aggGroup{keyCells: keyCells, accs: make([]*aggAcc, len(a.items))}
			for i, item := range a.items {
				g.accs[i] = &aggAcc{fn: item.Func}
			}
			return g
		}

		groups := make(map[string]*aggGroup)
		var order []*aggGroup
		if len(a.groupKeys) == 0 {
			g := newGroup(nil)
			groups[""] = g
			order = append(order, g)
		}
		for _, row := range in.Rows {
			keyCells := make([]model.Value, len(keyIdx))
			for i, col := range keyIdx {
				keyCells[i] = row[col]
			}
			key := rowKey(keyCells)
			g, ok := groups[key]
			if !ok {
				g = newGroup(keyCells)
				groups[key] = g
				order = append(order, g)
			}
			for i, acc := range g.accs {
				cell := model.Null
				if itemIdx[i] >= 0 {
					cell = row[itemIdx[i]]
				}
				if err := acc.add(cell); err != nil {
					return err
				}
			}
		}

		colNames := make([]string, 0, len(a.groupKeys)+len(a.items))
		colNames = append(colNames, a.groupKeys...)
		for _, item := range a.items {
			colNames = append(colNames, item.Alias)
		}
		out := model.NewDataSet(colNames...)
		for _, g := range order {
			cells := make([]model.Value, 0, len(colNames))
			cells = append(cells, g.keyCells...)
			for _, acc := range g.accs {
				v, err := acc.result()
				if err != nil {
					return err
				}
				cells = append(cells, v)
			}
			if err := out.AddRow(cells...); err != nil {
				return err
			}
		}
		return a.finish(DataSetResult(out))
	})
}

// dataCollectExecutor gathers the datasets published under its node's
// variables into one dataset, in variable order. Its dependency edge only
// sequences it after the producers.
type dataCollectExecutor struct {
	baseExecutor
	vars []string
}

func newDataCollectExecutor(node *plan.DataCollect, qctx *QueryContext) *dataCollectExecutor {
	return &dataCollectExecutor{
		baseExecutor: newBaseExecutor("DataCollectExecutor", node, qctx),
		vars:         node.Vars,
	}
}

func (d *dataCollectExecutor) Execute(ctx context.Context) *async.Future {
	return d.run(func() error {
		var out *model.DataSet
		for _, name := range d.vars {
			res, ok := d.ectx.Result(name)
			if !ok {
				return fmt.Errorf("collect variable %q is not registered", name)
			}
			ds, isDS := res.Value().DataSet()
			if !isDS {
				return fmt.Errorf("collect variable %q holds %v, not a DataSet",
					name, res.Value().Kind())
			}
			if out == nil {
				out = model.NewDataSet(ds.ColNames...)
			} else if err := checkSameCols("collect", out, ds); err != nil {
				return err
			}
			out.Rows = append(out.Rows, ds.Rows...)
		}
		if out == nil {
			out = model.NewDataSet()
		}
		return d.finish(DataSetResult(out))
	})
}
