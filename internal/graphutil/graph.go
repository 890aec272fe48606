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

// Package graphutil adapts SSA control-flow and value-flow graphs to existing graph libraries.
package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/tools/go/ssa"
)

// BlockGraph is the control-flow graph of a function. Vertices are block indices. It implements graph.Iterator.
type BlockGraph struct {
	fn *ssa.Function
}

// NewBlockGraph returns the control-flow graph of fn
func NewBlockGraph(fn *ssa.Function) BlockGraph {
	return BlockGraph{fn: fn}
}

// Order implements the order of the graph.Iterator interface for the BlockGraph
func (b BlockGraph) Order() int {
	return len(b.fn.Blocks)
}

// Visit implements the graph.Iterator interface for the BlockGraph
func (b BlockGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(b.fn.Blocks) {
		return false
	}
	for _, succ := range b.fn.Blocks[v].Succs {
		if do(succ.Index, 1) {
			return true
		}
	}
	return false
}

// ReachableBlocks returns the blocks of fn that are reachable from its entry block or from its recover block, in
// index order.
func ReachableBlocks(fn *ssa.Function) []*ssa.BasicBlock {
	if len(fn.Blocks) == 0 {
		return nil
	}
	g := NewBlockGraph(fn)
	reached := make([]bool, g.Order())
	mark := func(_, w int, _ int64) { reached[w] = true }

	reached[0] = true
	graph.BFS(g, 0, mark)
	if fn.Recover != nil {
		reached[fn.Recover.Index] = true
		graph.BFS(g, fn.Recover.Index, mark)
	}

	var blocks []*ssa.BasicBlock
	for i, b := range fn.Blocks {
		if reached[i] {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
