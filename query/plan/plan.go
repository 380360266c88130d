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

// Package plan defines the optimized plan graph that the planner hands to the
// execution engine: a DAG of typed nodes, each with a stable identity, a
// fixed number of dependencies (0, 1 or 2, known statically from its kind)
// and an output variable its result is published under. Two kinds, Select and
// Loop, additionally reference nested sub-plans (branch arms / loop body)
// that are not ordinary dependencies.
package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the closed enumeration of plan node kinds.
type Kind int

// The supported node kinds. KindUnknown is never produced by a planner; it
// exists so the zero value is invalid.
const (
	KindUnknown Kind = iota
	KindStart
	KindEnumerate
	KindPassThrough
	KindSelect
	KindLoop
	KindProject
	KindFilter
	KindLimit
	KindDedup
	KindSort
	KindUnion
	KindIntersect
	KindMinus
	KindAggregate
	KindDataCollect
)

var kindNames = map[Kind]string{
	KindStart:       "Start",
	KindEnumerate:   "Enumerate",
	KindPassThrough: "PassThrough",
	KindSelect:      "Select",
	KindLoop:        "Loop",
	KindProject:     "Project",
	KindFilter:      "Filter",
	KindLimit:       "Limit",
	KindDedup:       "Dedup",
	KindSort:        "Sort",
	KindUnion:       "Union",
	KindIntersect:   "Intersect",
	KindMinus:       "Minus",
	KindAggregate:   "Aggregate",
	KindDataCollect: "DataCollect",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a vertex of the plan graph. Concrete node types embed baseNode and
// add kind-specific fields.
type Node interface {
	// ID is the node's identity, unique within one Plan.
	ID() int64
	// Kind identifies the operation this node performs.
	Kind() Kind
	// OutputVar is the variable name the node's result is published under.
	OutputVar() string
	// Deps are the node's data dependencies, in order. Their count is fixed
	// by the node's kind.
	Deps() []Node
	// Dep returns the i'th dependency, or nil if out of range.
	Dep(i int) Node
	String() string
}

type baseNode struct {
	id        int64
	kind      Kind
	outputVar string
	deps      []Node
}

func newBaseNode(id int64, kind Kind, deps ...Node) baseNode {
	return baseNode{
		id:        id,
		kind:      kind,
		outputVar: "__" + kind.String() + "_" + strconv.FormatInt(id, 10),
		deps:      deps,
	}
}

func (n *baseNode) ID() int64 {
	return n.id
}

func (n *baseNode) Kind() Kind {
	return n.kind
}

func (n *baseNode) OutputVar() string {
	return n.outputVar
}

// SetOutputVar overrides the generated output variable name. The planner uses
// this when a variable is referenced by name elsewhere in the plan.
func (n *baseNode) SetOutputVar(name string) {
	n.outputVar = name
}

func (n *baseNode) Deps() []Node {
	return n.deps
}

func (n *baseNode) Dep(i int) Node {
	if i < 0 || i >= len(n.deps) {
		return nil
	}
	return n.deps[i]
}

func (n *baseNode) String() string {
	b := strings.Builder{}
	b.Grow(32)
	b.WriteString(n.kind.String())
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(n.id, 10))
	return b.String()
}

// A Plan is one query's plan graph. It owns the node identity space: all
// nodes of a graph must be created through the same Plan so their IDs are
// unique within it.
type Plan struct {
	nextID int64
	root   Node
}

// New returns an empty Plan.
func New() *Plan {
	return &Plan{}
}

// SetRoot marks the node the engine drives; its output variable holds the
// query's final result.
func (p *Plan) SetRoot(n Node) {
	p.root = n
}

// Root returns the root node, or nil if SetRoot was never called.
func (p *Plan) Root() Node {
	return p.root
}

func (p *Plan) newID() int64 {
	id := p.nextID
	p.nextID++
	return id
}
