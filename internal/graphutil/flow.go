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
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// FlowGraph is a directed graph over integer node ids, used to answer reachability queries.
type FlowGraph struct {
	g *simple.DirectedGraph
}

// NewFlowGraph returns an empty flow graph
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{g: simple.NewDirectedGraph()}
}

// AddNode adds the node id to the graph if it is not already present
func (f *FlowGraph) AddNode(id int64) {
	if f.g.Node(id) == nil {
		f.g.AddNode(simple.Node(id))
	}
}

// AddEdge adds a directed edge from u to v. Self-edges carry no reachability information and are ignored.
func (f *FlowGraph) AddEdge(u, v int64) {
	if u == v {
		f.AddNode(u)
		return
	}
	f.AddNode(u)
	f.AddNode(v)
	f.g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
}

// HasEdge returns true when there is an edge from u to v
func (f *FlowGraph) HasEdge(u, v int64) bool {
	return f.g.HasEdgeFromTo(u, v)
}

// NumNodes returns the number of nodes in the graph
func (f *FlowGraph) NumNodes() int {
	return f.g.Nodes().Len()
}

// Reachable returns the set of nodes reachable from the node from, including from itself when it is in the graph.
func (f *FlowGraph) Reachable(from int64) map[int64]bool {
	res := map[int64]bool{}
	start := f.g.Node(from)
	if start == nil {
		return res
	}
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { res[n.ID()] = true },
	}
	bf.Walk(f.g, start, nil)
	return res
}

// ReachableAmong returns the members of targets that are reachable from the node from, preserving their order.
func (f *FlowGraph) ReachableAmong(from int64, targets []int64) []int64 {
	reached := f.Reachable(from)
	var res []int64
	for _, t := range targets {
		if reached[t] {
			res = append(res, t)
		}
	}
	return res
}
