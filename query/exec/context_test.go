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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebay/katmai/query/model"
)

func TestExecutionContextVariables(t *testing.T) {
	ectx := NewExecutionContext()
	assert.False(t, ectx.Exists("v"))

	ectx.InitVar("v")
	assert.True(t, ectx.Exists("v"))
	res, ok := ectx.Result("v")
	require.True(t, ok)
	assert.True(t, res.Value().IsNull())

	ectx.SetResult("v", ValueResult(model.NewInt(7)))
	res, ok = ectx.Result("v")
	require.True(t, ok)
	assert.True(t, res.Value().Equal(model.NewInt(7)))

	// InitVar on a published variable must not clobber it.
	ectx.InitVar("v")
	res, _ = ectx.Result("v")
	assert.True(t, res.Value().Equal(model.NewInt(7)))
}

func TestLookupScalarizesSingleCell(t *testing.T) {
	ectx := NewExecutionContext()
	ectx.InitVar("counter")
	ds := model.NewDataSet("c")
	require.NoError(t, ds.AddRow(model.NewInt(3)))
	ectx.SetResult("counter", DataSetResult(ds))

	v, ok := ectx.Lookup()("counter")
	require.True(t, ok)
	assert.True(t, v.Equal(model.NewInt(3)), "got %v", v)
}

func TestLookupLeavesWideDataSetsAlone(t *testing.T) {
	ectx := NewExecutionContext()
	ectx.InitVar("rows")
	ds := model.NewDataSet("c")
	require.NoError(t, ds.AddRow(model.NewInt(1)))
	require.NoError(t, ds.AddRow(model.NewInt(2)))
	ectx.SetResult("rows", DataSetResult(ds))

	v, ok := ectx.Lookup()("rows")
	require.True(t, ok)
	assert.Equal(t, model.KindDataSet, v.Kind())

	_, ok = ectx.Lookup()("unregistered")
	assert.False(t, ok)
}

func TestResultSize(t *testing.T) {
	ds := model.NewDataSet("c")
	require.NoError(t, ds.AddRow(model.NewInt(1)))
	require.NoError(t, ds.AddRow(model.NewInt(2)))

	assert.Equal(t, 2, DataSetResult(ds).Size())
	assert.Equal(t, 1, ValueResult(model.NewInt(9)).Size())
	assert.Equal(t, 0, ValueResult(model.Null).Size())
	assert.Equal(t, 0, Result{}.Size())
}

func TestResultIterator(t *testing.T) {
	ds := model.NewDataSet("a", "b")
	require.NoError(t, ds.AddRow(model.NewInt(1), model.NewString("x")))
	require.NoError(t, ds.AddRow(model.NewInt(2), model.NewString("y")))

	it := DataSetResult(ds).Iterator()
	require.Equal(t, 2, it.Len())
	var got []int64
	for ; it.Valid(); it.Next() {
		v, ok := it.Col("a")
		require.True(t, ok)
		n, _ := v.Int()
		got = append(got, n)
	}
	assert.Equal(t, []int64{1, 2}, got)

	_, ok := DataSetResult(ds).Iterator().Col("missing")
	assert.False(t, ok)

	// A scalar result iterates as a single anonymous row.
	it = ValueResult(model.NewInt(5)).Iterator()
	require.True(t, it.Valid())
	assert.True(t, it.Row()[0].Equal(model.NewInt(5)))
	it.Next()
	assert.False(t, it.Valid())

	// Null iterates as nothing.
	assert.False(t, ValueResult(model.Null).Iterator().Valid())
}
