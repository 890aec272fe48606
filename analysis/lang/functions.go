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

package lang

import (
	"go/token"

	"github.com/awslabs/argot-unsafe/internal/graphutil"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// IsExternal returns true if function is external (in ssa, when Blocks is nil)
func IsExternal(function *ssa.Function) bool {
	// This is indicated in the ssa documentation
	return function.Blocks == nil
}

// IsGenericBody returns true if function is the body of a generic function or method that has not been
// instantiated. Such bodies refer to type parameters and cannot be given to the pointer analysis.
func IsGenericBody(function *ssa.Function) bool {
	sig := function.Signature
	return sig.TypeParams().Len() > 0 || sig.RecvTypeParams().Len() > 0
}

// SortedFunctions returns all the functions of the program that have a body, ordered by position (filename, then
// offset) and then by name. Functions without position come last.
func SortedFunctions(prog *ssa.Program) []*ssa.Function {
	var funcs []*ssa.Function
	for f := range ssautil.AllFunctions(prog) {
		if !IsExternal(f) {
			funcs = append(funcs, f)
		}
	}
	slices.SortFunc(funcs, func(a, b *ssa.Function) bool {
		pa, pb := prog.Fset.Position(a.Pos()), prog.Fset.Position(b.Pos())
		if pa.IsValid() != pb.IsValid() {
			return pa.IsValid()
		}
		if pa.Filename != pb.Filename {
			return pa.Filename < pb.Filename
		}
		if pa.Offset != pb.Offset {
			return pa.Offset < pb.Offset
		}
		return a.String() < b.String()
	})
	return funcs
}

// IterateInstructions iterates through all the instructions in the blocks of the function that are reachable from
// its entry or recover block, in block index order.
func IterateInstructions(function *ssa.Function, f func(block *ssa.BasicBlock, index int, instruction ssa.Instruction)) {
	for _, block := range graphutil.ReachableBlocks(function) {
		for index, instruction := range block.Instrs {
			f(block, index, instruction)
		}
	}
}

// InstrPosition returns the position of the instruction, or an invalid position if the instruction has no
// position information.
func InstrPosition(fset *token.FileSet, instr ssa.Instruction) token.Position {
	pos := instr.Pos()
	if !pos.IsValid() {
		return token.Position{}
	}
	return fset.Position(pos)
}
