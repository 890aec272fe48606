// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package unsafeescape

import (
	"go/token"

	"github.com/awslabs/argot-unsafe/analysis/lang"
	"github.com/awslabs/argot-unsafe/internal/graphutil"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
)

// valueFlowGraph is a graph over value handles, where an edge from u to v means that the contents of u may flow to
// v. It contains:
//   - def-use edges, from the operands of an instruction to its value;
//   - memory edges, from a stored value to its address and to the objects the address may point to, and from the
//     objects an address may point to, to the value loaded from it;
//   - call edges, from arguments to parameters, and from returned values to the call;
//   - closure edges, from the bindings of a closure to its free variables.
type valueFlowGraph struct {
	arena   *ValueArena
	result  *pointer.Result
	g       *graphutil.FlowGraph
	returns map[*ssa.Function][]*ssa.Return
	sites   map[*ssa.Function]map[ssa.CallInstruction][]*ssa.Function
}

func buildValueFlowGraph(prog *ssa.Program, funcs []*ssa.Function, arena *ValueArena,
	result *pointer.Result) *valueFlowGraph {
	vf := &valueFlowGraph{
		arena:   arena,
		result:  result,
		g:       graphutil.NewFlowGraph(),
		returns: map[*ssa.Function][]*ssa.Return{},
		sites:   map[*ssa.Function]map[ssa.CallInstruction][]*ssa.Function{},
	}
	if result != nil && result.CallGraph != nil {
		vf.indexCallGraph(result.CallGraph)
	}
	for _, fn := range funcs {
		if lang.IsGenericBody(fn) {
			continue
		}
		lang.IterateInstructions(fn, func(_ *ssa.BasicBlock, _ int, instr ssa.Instruction) {
			if ret, ok := instr.(*ssa.Return); ok {
				vf.returns[fn] = append(vf.returns[fn], ret)
			}
		})
	}
	for _, fn := range funcs {
		if lang.IsGenericBody(fn) {
			continue
		}
		lang.IterateInstructions(fn, func(_ *ssa.BasicBlock, _ int, instr ssa.Instruction) {
			vf.addInstruction(instr)
		})
	}
	return vf
}

func (vf *valueFlowGraph) indexCallGraph(cg *callgraph.Graph) {
	for fn, node := range cg.Nodes {
		if fn == nil {
			continue
		}
		for _, e := range node.Out {
			if e.Site == nil || e.Callee == nil || e.Callee.Func == nil {
				continue
			}
			if vf.sites[fn] == nil {
				vf.sites[fn] = map[ssa.CallInstruction][]*ssa.Function{}
			}
			vf.sites[fn][e.Site] = append(vf.sites[fn][e.Site], e.Callee.Func)
		}
	}
}

func (vf *valueFlowGraph) edge(from, to ssa.Value) {
	if from == nil || to == nil || isOpaque(from) || isOpaque(to) {
		return
	}
	vf.g.AddEdge(int64(vf.arena.Intern(from)), int64(vf.arena.Intern(to)))
}

// isOpaque returns true for the values that do not carry data between instructions
func isOpaque(v ssa.Value) bool {
	switch v.(type) {
	case *ssa.Const, *ssa.Function, *ssa.Builtin:
		return true
	}
	return false
}

func (vf *valueFlowGraph) objects(addr ssa.Value) []ssa.Value {
	if g, ok := addr.(*ssa.Global); ok {
		return []ssa.Value{g}
	}
	if vf.result == nil {
		return nil
	}
	return lang.PointsToValues(lang.FindAllPointers(vf.result, addr))
}

func (vf *valueFlowGraph) addInstruction(instr ssa.Instruction) {
	if v, ok := instr.(ssa.Value); ok {
		for _, op := range instr.Operands(nil) {
			if op != nil && *op != nil {
				vf.edge(*op, v)
			}
		}
	}
	switch x := instr.(type) {
	case *ssa.Store:
		vf.edge(x.Val, x.Addr)
		for _, obj := range vf.objects(x.Addr) {
			vf.edge(x.Val, obj)
		}
	case *ssa.UnOp:
		if x.Op == token.MUL {
			for _, obj := range vf.objects(x.X) {
				vf.edge(obj, x)
			}
		}
	case *ssa.MapUpdate:
		vf.edge(x.Key, x.Map)
		vf.edge(x.Value, x.Map)
	case *ssa.Send:
		vf.edge(x.X, x.Chan)
	case *ssa.MakeClosure:
		if fn, ok := x.Fn.(*ssa.Function); ok {
			for i, b := range x.Bindings {
				if i < len(fn.FreeVars) {
					vf.edge(b, fn.FreeVars[i])
				}
			}
		}
	}
	if call, ok := instr.(ssa.CallInstruction); ok {
		vf.addCall(call)
	}
}

func (vf *valueFlowGraph) addCall(call ssa.CallInstruction) {
	common := call.Common()
	args := common.Args
	if common.IsInvoke() {
		args = append([]ssa.Value{common.Value}, args...)
	}
	callees := vf.sites[call.Parent()][call]
	if len(callees) == 0 {
		if callee := common.StaticCallee(); callee != nil {
			callees = []*ssa.Function{callee}
		}
	}
	res := call.Value()
	for _, callee := range callees {
		for i, arg := range args {
			if i < len(callee.Params) {
				vf.edge(arg, callee.Params[i])
			}
		}
		if res == nil {
			continue
		}
		for _, ret := range vf.returns[callee] {
			for _, r := range ret.Results {
				vf.edge(r, res)
			}
		}
	}
}

func (vf *valueFlowGraph) reachableAmong(def ValueID, from []ValueID) []ValueID {
	// a definition always reaches itself
	vf.g.AddNode(int64(def))
	targets := make([]int64, len(from))
	for i, id := range from {
		targets[i] = int64(id)
	}
	var res []ValueID
	for _, id := range vf.g.ReachableAmong(int64(def), targets) {
		res = append(res, ValueID(id))
	}
	return res
}
