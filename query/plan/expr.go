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

import (
	"fmt"
	"strings"

	"github.com/ebay/katmai/query/model"
)

// A Lookup resolves a variable name to its current value. Executors decide
// what the namespace is: a row's columns, the execution context's variables,
// or one falling back to the other.
type Lookup func(name string) (model.Value, bool)

// Expr is an expression evaluated during execution, used for filter and loop
// conditions and projection columns.
type Expr interface {
	// Eval computes the expression's value, resolving variables via lookup.
	Eval(lookup Lookup) (model.Value, error)
	String() string
}

// Const returns an expression that always evaluates to v.
func Const(v model.Value) Expr {
	return &constExpr{val: v}
}

type constExpr struct {
	val model.Value
}

func (c *constExpr) Eval(Lookup) (model.Value, error) {
	return c.val, nil
}

func (c *constExpr) String() string {
	return c.val.String()
}

// Var returns an expression that evaluates to the named variable's value.
func Var(name string) Expr {
	return &varExpr{name: name}
}

type varExpr struct {
	name string
}

func (v *varExpr) Eval(lookup Lookup) (model.Value, error) {
	val, ok := lookup(v.name)
	if !ok {
		return model.Null, fmt.Errorf("unbound variable %q", v.name)
	}
	return val, nil
}

func (v *varExpr) String() string {
	return "$" + v.name
}

// BinaryOp enumerates the binary operators.
type BinaryOp int

// The supported binary operators.
const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
)

var binaryOpNames = map[BinaryOp]string{
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpAnd:          "&&",
	OpOr:           "||",
}

func (op BinaryOp) String() string {
	if name, ok := binaryOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// Binary returns the expression (lhs op rhs).
func Binary(op BinaryOp, lhs, rhs Expr) Expr {
	return &binaryExpr{op: op, lhs: lhs, rhs: rhs}
}

type binaryExpr struct {
	op       BinaryOp
	lhs, rhs Expr
}

func (e *binaryExpr) Eval(lookup Lookup) (model.Value, error) {
	lhs, err := e.lhs.Eval(lookup)
	if err != nil {
		return model.Null, err
	}
	rhs, err := e.rhs.Eval(lookup)
	if err != nil {
		return model.Null, err
	}
	switch e.op {
	case OpAdd:
		return model.Add(lhs, rhs)
	case OpSubtract:
		return model.Subtract(lhs, rhs)
	case OpMultiply:
		return model.Multiply(lhs, rhs)
	case OpDivide:
		return model.Divide(lhs, rhs)
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		c, err := model.Compare(lhs, rhs)
		if err != nil {
			return model.Null, err
		}
		switch e.op {
		case OpLess:
			return model.NewBool(c < 0), nil
		case OpLessEqual:
			return model.NewBool(c <= 0), nil
		case OpGreater:
			return model.NewBool(c > 0), nil
		default:
			return model.NewBool(c >= 0), nil
		}
	case OpEqual:
		return model.NewBool(lhs.Equal(rhs)), nil
	case OpNotEqual:
		return model.NewBool(!lhs.Equal(rhs)), nil
	case OpAnd, OpOr:
		lb, lok := lhs.Bool()
		rb, rok := rhs.Bool()
		if !lok || !rok {
			return model.Null, fmt.Errorf("%v requires Bool operands, got %v and %v",
				e.op, lhs.Kind(), rhs.Kind())
		}
		if e.op == OpAnd {
			return model.NewBool(lb && rb), nil
		}
		return model.NewBool(lb || rb), nil
	}
	return model.Null, fmt.Errorf("unknown binary operator %v", e.op)
}

func (e *binaryExpr) String() string {
	b := strings.Builder{}
	b.Grow(32)
	b.WriteByte('(')
	b.WriteString(e.lhs.String())
	b.WriteByte(' ')
	b.WriteString(e.op.String())
	b.WriteByte(' ')
	b.WriteString(e.rhs.String())
	b.WriteByte(')')
	return b.String()
}

// Not returns the boolean negation of operand.
func Not(operand Expr) Expr {
	return &notExpr{operand: operand}
}

type notExpr struct {
	operand Expr
}

func (e *notExpr) Eval(lookup Lookup) (model.Value, error) {
	v, err := e.operand.Eval(lookup)
	if err != nil {
		return model.Null, err
	}
	b, ok := v.Bool()
	if !ok {
		return model.Null, fmt.Errorf("! requires a Bool operand, got %v", v.Kind())
	}
	return model.NewBool(!b), nil
}

func (e *notExpr) String() string {
	return "!" + e.operand.String()
}

// Shorthands for the common comparisons and arithmetic.

// Add returns (lhs + rhs).
func Add(lhs, rhs Expr) Expr { return Binary(OpAdd, lhs, rhs) }

// Multiply returns (lhs * rhs).
func Multiply(lhs, rhs Expr) Expr { return Binary(OpMultiply, lhs, rhs) }

// Less returns (lhs < rhs).
func Less(lhs, rhs Expr) Expr { return Binary(OpLess, lhs, rhs) }

// Equal returns (lhs == rhs).
func Equal(lhs, rhs Expr) Expr { return Binary(OpEqual, lhs, rhs) }

// ConstInt returns a constant Int expression.
func ConstInt(i int64) Expr { return Const(model.NewInt(i)) }

// ConstBool returns a constant Bool expression.
func ConstBool(b bool) Expr { return Const(model.NewBool(b)) }
