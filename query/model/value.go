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

// Package model defines the values that flow through the query execution
// engine: scalar Values and the tabular DataSet they travel in.
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ebay/katmai/util/cmp"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

// The closed set of value kinds.
const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindDataSet
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindDataSet:
		return "DataSet"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is a single datum. The zero value is Null.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	ds   *DataSet
}

// Null is the absent value.
var Null = Value{}

// NewBool returns a Bool Value.
func NewBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// NewInt returns an Int Value.
func NewInt(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// NewFloat returns a Float Value.
func NewFloat(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// NewString returns a String Value.
func NewString(s string) Value {
	return Value{kind: KindString, s: s}
}

// NewList returns a List Value of the given elements.
func NewList(elems ...Value) Value {
	return Value{kind: KindList, list: elems}
}

// NewDataSetValue wraps a DataSet in a Value.
func NewDataSetValue(ds *DataSet) Value {
	return Value{kind: KindDataSet, ds: ds}
}

// Kind returns which variant this Value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether this is the Null value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Bool returns the boolean payload. ok is false if the Value is not a Bool.
func (v Value) Bool() (b bool, ok bool) {
	return v.b, v.kind == KindBool
}

// Int returns the integer payload. ok is false if the Value is not an Int.
func (v Value) Int() (i int64, ok bool) {
	return v.i, v.kind == KindInt
}

// Float returns the float payload. ok is false if the Value is not a Float.
func (v Value) Float() (f float64, ok bool) {
	return v.f, v.kind == KindFloat
}

// Str returns the string payload. ok is false if the Value is not a String.
func (v Value) Str() (s string, ok bool) {
	return v.s, v.kind == KindString
}

// List returns the list payload. ok is false if the Value is not a List.
func (v Value) List() (elems []Value, ok bool) {
	return v.list, v.kind == KindList
}

// DataSet returns the dataset payload. ok is false if the Value is not a
// DataSet.
func (v Value) DataSet() (ds *DataSet, ok bool) {
	return v.ds, v.kind == KindDataSet
}

// asFloat widens Int to Float for mixed arithmetic.
func (v Value) asFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Equal reports whether two Values hold the same kind and payload. DataSets
// compare by contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindDataSet:
		return v.ds.Equal(o.ds)
	}
	return false
}

// Less defines a total order over all Values: first by kind, then by payload.
// It exists so rows can be sorted and deduplicated deterministically even
// when a column holds mixed kinds.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		return v.kind < o.kind
	}
	switch v.kind {
	case KindBool:
		return !v.b && o.b
	case KindInt:
		return v.i < o.i
	case KindFloat:
		return v.f < o.f
	case KindString:
		return v.s < o.s
	case KindList:
		for i := range v.list {
			if i >= len(o.list) {
				return false
			}
			if v.list[i].Less(o.list[i]) {
				return true
			}
			if o.list[i].Less(v.list[i]) {
				return false
			}
		}
		return len(v.list) < len(o.list)
	}
	return false
}

// Key implements cmp.Key.
func (v Value) Key(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b.WriteByte('"')
		b.WriteString(v.s)
		b.WriteByte('"')
	case KindList:
		b.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			e.Key(b)
		}
		b.WriteByte(']')
	case KindDataSet:
		b.WriteString(v.ds.String())
	}
}

func (v Value) String() string {
	return cmp.GetKey(v)
}

// Add returns a+b: Int+Int, any numeric mix as Float, or String
// concatenation.
func Add(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return NewInt(a.i + b.i), nil
	}
	if af, ok := a.asFloat(); ok {
		if bf, ok := b.asFloat(); ok {
			return NewFloat(af + bf), nil
		}
	}
	if a.kind == KindString && b.kind == KindString {
		return NewString(a.s + b.s), nil
	}
	return Null, fmt.Errorf("cannot add %v and %v", a.kind, b.kind)
}

// Subtract returns a-b for numeric values.
func Subtract(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return NewInt(a.i - b.i), nil
	}
	if af, ok := a.asFloat(); ok {
		if bf, ok := b.asFloat(); ok {
			return NewFloat(af - bf), nil
		}
	}
	return Null, fmt.Errorf("cannot subtract %v from %v", b.kind, a.kind)
}

// Multiply returns a*b for numeric values.
func Multiply(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return NewInt(a.i * b.i), nil
	}
	if af, ok := a.asFloat(); ok {
		if bf, ok := b.asFloat(); ok {
			return NewFloat(af * bf), nil
		}
	}
	return Null, fmt.Errorf("cannot multiply %v and %v", a.kind, b.kind)
}

// Divide returns a/b for numeric values. Integer division by zero is an
// error.
func Divide(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return Null, fmt.Errorf("division by zero")
		}
		return NewInt(a.i / b.i), nil
	}
	if af, ok := a.asFloat(); ok {
		if bf, ok := b.asFloat(); ok {
			if bf == 0 {
				return Null, fmt.Errorf("division by zero")
			}
			return NewFloat(af / bf), nil
		}
	}
	return Null, fmt.Errorf("cannot divide %v by %v", a.kind, b.kind)
}

// Compare returns -1, 0 or 1 for comparable values (numerics against
// numerics, strings against strings, bools against bools).
func Compare(a, b Value) (int, error) {
	if af, aok := a.asFloat(); aok {
		if bf, bok := b.asFloat(); bok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			}
			return 0, nil
		}
	}
	if a.kind != b.kind {
		return 0, fmt.Errorf("cannot compare %v with %v", a.kind, b.kind)
	}
	switch a.kind {
	case KindString:
		return strings.Compare(a.s, b.s), nil
	case KindBool:
		switch {
		case a.b == b.b:
			return 0, nil
		case b.b:
			return -1, nil
		}
		return 1, nil
	}
	return 0, fmt.Errorf("cannot compare %v values", a.kind)
}
