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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ValueKinds(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.Equal(t, KindBool, NewBool(true).Kind())
	assert.Equal(t, KindInt, NewInt(5).Kind())
	assert.Equal(t, KindFloat, NewFloat(1.5).Kind())
	assert.Equal(t, KindString, NewString("x").Kind())
	assert.Equal(t, KindList, NewList(NewInt(1)).Kind())

	i, ok := NewInt(42).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)
	_, ok = NewString("nope").Int()
	assert.False(t, ok)
}

func Test_Add(t *testing.T) {
	tests := []struct {
		a, b     Value
		expected Value
		fails    bool
	}{
		{a: NewInt(2), b: NewInt(3), expected: NewInt(5)},
		{a: NewInt(2), b: NewFloat(0.5), expected: NewFloat(2.5)},
		{a: NewFloat(1.5), b: NewFloat(1.5), expected: NewFloat(3.0)},
		{a: NewString("foo"), b: NewString("bar"), expected: NewString("foobar")},
		{a: NewBool(true), b: NewInt(1), fails: true},
		{a: Null, b: NewInt(1), fails: true},
	}
	for _, test := range tests {
		got, err := Add(test.a, test.b)
		if test.fails {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.True(t, test.expected.Equal(got), "%v + %v = %v, expected %v", test.a, test.b, got, test.expected)
	}
}

func Test_Arithmetic(t *testing.T) {
	v, err := Subtract(NewInt(5), NewInt(3))
	require.NoError(t, err)
	assert.True(t, NewInt(2).Equal(v))

	v, err = Multiply(NewInt(5), NewInt(2))
	require.NoError(t, err)
	assert.True(t, NewInt(10).Equal(v))

	v, err = Divide(NewInt(10), NewInt(2))
	require.NoError(t, err)
	assert.True(t, NewInt(5).Equal(v))

	_, err = Divide(NewInt(1), NewInt(0))
	assert.Error(t, err)
}

func Test_Compare(t *testing.T) {
	c, err := Compare(NewInt(1), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(NewInt(2), NewFloat(2.0))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = Compare(NewString("b"), NewString("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare(NewString("a"), NewInt(1))
	assert.Error(t, err)
}

func Test_EqualAndLess(t *testing.T) {
	assert.True(t, NewInt(3).Equal(NewInt(3)))
	assert.False(t, NewInt(3).Equal(NewFloat(3)))
	assert.True(t, NewInt(1).Less(NewInt(2)))
	assert.False(t, NewInt(2).Less(NewInt(1)))
	// Kind rank makes mixed-kind ordering deterministic.
	assert.True(t, NewBool(true).Less(NewInt(0)))
	assert.True(t, NewList(NewInt(1)).Equal(NewList(NewInt(1))))
}

func Test_DataSet(t *testing.T) {
	ds := NewDataSet("a", "b")
	require.NoError(t, ds.AddRow(NewInt(1), NewString("x")))
	require.NoError(t, ds.AddRow(NewInt(2), NewString("y")))
	assert.Error(t, ds.AddRow(NewInt(3)))

	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, 2, ds.NumCols())
	idx, ok := ds.ColIndex("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = ds.ColIndex("c")
	assert.False(t, ok)

	other := NewDataSet("a", "b")
	require.NoError(t, other.AddRow(NewInt(1), NewString("x")))
	require.NoError(t, other.AddRow(NewInt(2), NewString("y")))
	assert.True(t, ds.Equal(other))
	require.NoError(t, other.AddRow(NewInt(3), NewString("z")))
	assert.False(t, ds.Equal(other))

	v := NewDataSetValue(ds)
	got, ok := v.DataSet()
	assert.True(t, ok)
	assert.Same(t, ds, got)
}
