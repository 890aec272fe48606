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

package graphutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/go/ssa"
)

// mkFunction returns a function with n blocks and the given successor lists
func mkFunction(n int, succs map[int][]int) *ssa.Function {
	fn := &ssa.Function{}
	for i := 0; i < n; i++ {
		fn.Blocks = append(fn.Blocks, &ssa.BasicBlock{Index: i})
	}
	for i, ss := range succs {
		for _, s := range ss {
			fn.Blocks[i].Succs = append(fn.Blocks[i].Succs, fn.Blocks[s])
		}
	}
	return fn
}

func indices(blocks []*ssa.BasicBlock) []int {
	var res []int
	for _, b := range blocks {
		res = append(res, b.Index)
	}
	return res
}

func TestReachableBlocks(t *testing.T) {
	// 0 -> 1 -> 3, 0 -> 2 -> 3, 4 -> 3 (4 unreachable)
	fn := mkFunction(5, map[int][]int{0: {1, 2}, 1: {3}, 2: {3}, 4: {3}})
	if diff := cmp.Diff([]int{0, 1, 2, 3}, indices(ReachableBlocks(fn))); diff != "" {
		t.Errorf("reachable blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestReachableBlocksFromRecover(t *testing.T) {
	// 0 -> 1, recover block 2 -> 3
	fn := mkFunction(4, map[int][]int{0: {1}, 2: {3}})
	fn.Recover = fn.Blocks[2]
	if diff := cmp.Diff([]int{0, 1, 2, 3}, indices(ReachableBlocks(fn))); diff != "" {
		t.Errorf("reachable blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestReachableBlocksNoBody(t *testing.T) {
	if blocks := ReachableBlocks(&ssa.Function{}); blocks != nil {
		t.Errorf("external function should have no blocks, got %v", blocks)
	}
}

func TestFlowGraphReachable(t *testing.T) {
	g := NewFlowGraph()
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(3, 1)
	g.AddEdge(4, 5)
	g.AddEdge(6, 6)
	if !g.HasEdge(1, 2) || g.HasEdge(2, 1) {
		t.Errorf("edges should be directed")
	}
	if g.NumNodes() != 6 {
		t.Errorf("expected 6 nodes, got %d", g.NumNodes())
	}
	if diff := cmp.Diff([]int64{3, 1}, g.ReachableAmong(2, []int64{5, 3, 1})); diff != "" {
		t.Errorf("reachable mismatch (-want +got):\n%s", diff)
	}
	if r := g.Reachable(6); !r[6] || len(r) != 1 {
		t.Errorf("self-edge node should only reach itself, got %v", r)
	}
	if r := g.Reachable(42); len(r) != 0 {
		t.Errorf("absent node should reach nothing, got %v", r)
	}
}
