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
	"github.com/awslabs/argot-unsafe/analysis/lang"
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"golang.org/x/tools/go/ssa"
)

// Candidate is a pointer-like value observed at an instruction located inside an unsafe region
type Candidate struct {
	// Value is the pointer
	Value ValueID
	// Line is the line of the instruction
	Line int
	// Block is the block of the instruction
	Block BlockHandle
	// Region is the unsafe region that contains the instruction
	Region regions.Region
	// Filename is the filename of the region, as spelled in the region descriptor
	Filename string
	// PosFilename is the filename of the instruction's position
	PosFilename string
}

// CollectOptions parameterizes the candidate collection
type CollectOptions struct {
	// SkipUnnamedBlocks skips the blocks that have no comment
	SkipUnnamedBlocks bool

	// FunctionFilter returns false for the functions that must not be scanned. A nil filter accepts all functions.
	FunctionFilter func(*ssa.Function) bool

	// FileFilter returns false for the source files whose instructions must not be scanned. A nil filter accepts
	// all files.
	FileFilter func(filename string) bool
}

// CollectCandidates returns the candidates of the functions funcs for the regions in index. Functions are scanned in
// the order of funcs, blocks reachable from the entry of the function in index order, and instructions in block
// order. An instruction contributes its own value first, and then its operands, once per region that contains it.
// Instructions without position are ignored.
//
// The same value can appear in several candidates.
func CollectCandidates(prog *ssa.Program, funcs []*ssa.Function, index *regions.Index, arena *ValueArena,
	opts CollectOptions) []Candidate {
	var candidates []Candidate
	for _, fn := range funcs {
		if lang.IsGenericBody(fn) {
			continue
		}
		if opts.FunctionFilter != nil && !opts.FunctionFilter(fn) {
			continue
		}
		lang.IterateInstructions(fn, func(block *ssa.BasicBlock, _ int, instr ssa.Instruction) {
			if opts.SkipUnnamedBlocks && block.Comment == "" {
				return
			}
			pos := lang.InstrPosition(prog.Fset, instr)
			if !pos.IsValid() {
				return
			}
			if opts.FileFilter != nil && !opts.FileFilter(pos.Filename) {
				return
			}
			var values []ssa.Value
			for _, region := range index.Match(pos.Filename) {
				if !region.Contains(pos.Line) {
					continue
				}
				if values == nil {
					values = pointerValues(instr)
				}
				for _, v := range values {
					candidates = append(candidates, Candidate{
						Value:       arena.Intern(v),
						Line:        pos.Line,
						Block:       arena.Block(block),
						Region:      region,
						Filename:    region.Filename,
						PosFilename: pos.Filename,
					})
				}
			}
		})
	}
	return candidates
}

// pointerValues returns the pointer-like values of the instruction: its own value, then its operands. Function
// references and constants are not pointers to memory.
func pointerValues(instr ssa.Instruction) []ssa.Value {
	values := []ssa.Value{}
	if v, ok := instr.(ssa.Value); ok && lang.IsPointerLike(v.Type()) {
		values = append(values, v)
	}
	for _, op := range instr.Operands(nil) {
		if op == nil || *op == nil {
			continue
		}
		v := *op
		if lang.IsFunctionRef(v) {
			continue
		}
		if _, isConst := v.(*ssa.Const); isConst {
			continue
		}
		if lang.IsPointerLike(v.Type()) {
			values = append(values, v)
		}
	}
	return values
}
