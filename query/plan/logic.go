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

// Start is the leaf node that begins an execution chain. It emits a dataset
// with a single empty row, the seed that makes constant projections over it
// produce one output row.
type Start struct {
	baseNode
}

// NewStart creates a Start node.
func (p *Plan) NewStart() *Start {
	return &Start{baseNode: newBaseNode(p.newID(), KindStart)}
}

// PassThrough republishes its dependency's result unchanged. The planner
// inserts it where two sub-plans need a common join point.
type PassThrough struct {
	baseNode
}

// NewPassThrough creates a PassThrough node over input.
func (p *Plan) NewPassThrough(input Node) *PassThrough {
	return &PassThrough{baseNode: newBaseNode(p.newID(), KindPassThrough, input)}
}

// Select is the conditional branch node. Both arms are compiled eagerly, but
// at run time only the arm matching the evaluated condition is activated.
// The arms are nested sub-plan roots, not ordinary dependencies.
type Select struct {
	baseNode
	// Condition is evaluated against the execution context when the node
	// activates; it must produce a Bool.
	Condition Expr
	then      Node
	otherwise Node
}

// NewSelect creates a Select node over input with the given arms.
func (p *Plan) NewSelect(input Node, condition Expr, then, otherwise Node) *Select {
	return &Select{
		baseNode:  newBaseNode(p.newID(), KindSelect, input),
		Condition: condition,
		then:      then,
		otherwise: otherwise,
	}
}

// Then returns the root of the arm taken when the condition holds.
func (s *Select) Then() Node {
	return s.then
}

// Otherwise returns the root of the arm taken when the condition does not
// hold.
func (s *Select) Otherwise() Node {
	return s.otherwise
}

// Loop re-activates its nested body sub-plan while its condition holds. The
// condition is re-evaluated before every iteration; when it no longer holds,
// control passes to the Loop node's ordinary successor.
type Loop struct {
	baseNode
	// Condition is evaluated against the execution context at the start of
	// every iteration; it must produce a Bool.
	Condition Expr
	body      Node
}

// NewLoop creates a Loop node over input with the given body sub-plan.
func (p *Plan) NewLoop(input Node, condition Expr, body Node) *Loop {
	return &Loop{
		baseNode:  newBaseNode(p.newID(), KindLoop, input),
		Condition: condition,
		body:      body,
	}
}

// Body returns the root of the loop body sub-plan.
func (l *Loop) Body() Node {
	return l.body
}
