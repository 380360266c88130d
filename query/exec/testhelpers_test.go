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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ebay/katmai/query/model"
	"github.com/ebay/katmai/query/plan"
)

// ints builds one row of Int values.
func ints(vals ...int64) []model.Value {
	row := make([]model.Value, len(vals))
	for i, v := range vals {
		row[i] = model.NewInt(v)
	}
	return row
}

// intRows builds rows of single Int cells.
func intRows(vals ...int64) [][]model.Value {
	rows := make([][]model.Value, len(vals))
	for i, v := range vals {
		rows[i] = ints(v)
	}
	return rows
}

// execute compiles and runs p inline and returns the root's dataset along
// with the query context, for profile and variable assertions.
func execute(t *testing.T, p *plan.Plan) (*model.DataSet, *QueryContext) {
	t.Helper()
	qctx := NewQueryContext()
	ds, err := executeOn(t, p, qctx)
	require.NoError(t, err)
	return ds, qctx
}

// executeOn is like execute but uses the caller's query context and returns
// the settlement error instead of failing on it.
func executeOn(t *testing.T, p *plan.Plan, qctx *QueryContext) (*model.DataSet, error) {
	t.Helper()
	root, err := Create(p.Root(), qctx)
	require.NoError(t, err)
	ctx := context.Background()
	if err := NewScheduler(qctx).Schedule(ctx, root).Wait(ctx); err != nil {
		return nil, err
	}
	res, ok := qctx.ExecutionContext().Result(p.Root().OutputVar())
	require.True(t, ok, "root output variable missing")
	ds, ok := res.Value().DataSet()
	require.True(t, ok, "root did not publish a DataSet")
	return ds, nil
}

// dataSet builds a DataSet literal for expected values.
func dataSet(t *testing.T, cols []string, rows ...[]model.Value) *model.DataSet {
	t.Helper()
	ds := model.NewDataSet(cols...)
	for _, row := range rows {
		require.NoError(t, ds.AddRow(row...))
	}
	return ds
}
