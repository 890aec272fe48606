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
	"fmt"
	"go/token"

	"github.com/awslabs/argot-unsafe/analysis/config"
	"github.com/awslabs/argot-unsafe/analysis/lang"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Oracle answers points-to queries: PointsTo returns the allocation sites the value v may point to.
type Oracle interface {
	PointsTo(v ValueID) ([]ValueID, error)
}

// FlowOracle answers value-flow reachability queries: Reachable returns the members of from that are reachable from
// the definition def.
type FlowOracle interface {
	Reachable(def ValueID, from []ValueID) ([]ValueID, error)
}

// SessionOptions parameterizes an analysis session
type SessionOptions struct {
	// Reflection enables the modelling of reflection in the pointer analysis
	Reflection bool

	// ValueFlow prepares the session to answer Reachable queries: the call graph is built, and the addresses of
	// all the loads and stores of the program are queried.
	ValueFlow bool

	// Functions are the functions of the program, in a stable order. If nil, they are computed from the program.
	Functions []*ssa.Function

	Logger *config.LogGroup
}

// Session owns the results of the pointer analysis of a program. A session is created by NewSession, prepared
// with the values to query, and must be closed by its owner once the analysis is done.
// A Session implements Oracle and FlowOracle.
type Session struct {
	prog  *ssa.Program
	arena *ValueArena
	opts  SessionOptions

	// queried is the set of values registered as queries of the pointer analysis
	queried   map[ssa.Value]bool
	memQueued bool

	result   *pointer.Result
	pointsTo map[ValueID][]ValueID
	flow     *valueFlowGraph
	closed   bool
}

// NewSession returns a session for the program. The pointer analysis is not run until Prepare is called.
func NewSession(prog *ssa.Program, arena *ValueArena, opts SessionOptions) *Session {
	if opts.Functions == nil {
		opts.Functions = lang.SortedFunctions(prog)
	}
	return &Session{
		prog:     prog,
		arena:    arena,
		opts:     opts,
		queried:  map[ssa.Value]bool{},
		pointsTo: map[ValueID][]ValueID{},
	}
}

// Prepare runs the pointer analysis with a query for each of the values. Values that the analysis cannot track
// are ignored, and globals, which point to their own storage, do not need it. The analysis is not run when no value
// needs it. If the analysis has already been run and some values were not queried, it is run again for all the
// values queried so far.
func (s *Session) Prepare(values []ValueID) error {
	if s.closed {
		return ErrSessionClosed
	}
	added := 0
	for _, id := range values {
		if s.addQuery(s.arena.Value(id)) {
			added++
		}
	}
	if len(s.queried) == 0 {
		// no value needs the pointer analysis
		return nil
	}
	if s.opts.ValueFlow && !s.memQueued {
		s.memQueued = true
		added += s.addMemoryQueries()
	}
	if added == 0 && s.result != nil {
		return nil
	}
	return s.run()
}

func (s *Session) addQuery(v ssa.Value) bool {
	if v == nil || s.queried[v] || !pointer.CanPoint(v.Type()) {
		return false
	}
	if _, isGlobal := v.(*ssa.Global); isGlobal {
		return false
	}
	s.queried[v] = true
	return true
}

// addMemoryQueries queries the addresses of the loads and stores, which the value-flow graph needs for its memory
// edges.
func (s *Session) addMemoryQueries() int {
	added := 0
	for _, fn := range s.opts.Functions {
		if lang.IsGenericBody(fn) {
			continue
		}
		lang.IterateInstructions(fn, func(_ *ssa.BasicBlock, _ int, instr ssa.Instruction) {
			switch x := instr.(type) {
			case *ssa.Store:
				if s.addQuery(x.Addr) {
					added++
				}
			case *ssa.UnOp:
				if x.Op == token.MUL && s.addQuery(x.X) {
					added++
				}
			}
		})
	}
	return added
}

func (s *Session) run() error {
	mains := ssautil.MainPackages(s.prog.AllPackages())
	cfg := &pointer.Config{
		Mains:           mains,
		Reflection:      s.opts.Reflection,
		BuildCallGraph:  s.opts.ValueFlow,
		Queries:         make(map[ssa.Value]struct{}, len(s.queried)),
		IndirectQueries: make(map[ssa.Value]struct{}),
	}
	for v := range s.queried {
		cfg.AddQuery(v)
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Debugf("Running pointer analysis with %d queries", len(s.queried))
	}
	result, err := analyze(cfg)
	if err != nil {
		return err
	}
	s.result = result
	s.pointsTo = map[ValueID][]ValueID{}
	s.flow = nil
	return nil
}

// analyze runs the pointer analysis. Panics of the analysis on unsupported programs are returned as errors.
func analyze(cfg *pointer.Config) (res *pointer.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: pointer analysis failed: %v", ErrAnalysisUnavailable, r)
		}
	}()
	res, err = pointer.Analyze(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	return res, nil
}

// PointsTo implements Oracle. A value that was not prepared is queried by running the analysis again. A value the
// pointer analysis cannot track points to nothing. A global points to its own storage.
func (s *Session) PointsTo(id ValueID) ([]ValueID, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if sites, ok := s.pointsTo[id]; ok {
		return sites, nil
	}
	v := s.arena.Value(id)
	if g, ok := v.(*ssa.Global); ok {
		// the analysis has no node for a global whose address is only converted to unsafe.Pointer
		sites := []ValueID{s.arena.Intern(g)}
		s.pointsTo[id] = sites
		return sites, nil
	}
	if !pointer.CanPoint(v.Type()) {
		s.pointsTo[id] = nil
		return nil, nil
	}
	if s.result == nil || !s.queried[v] {
		if err := s.Prepare([]ValueID{id}); err != nil {
			return nil, err
		}
	}
	vals := lang.PointsToValues(lang.FindAllPointers(s.result, v))
	s.sortValues(vals)
	sites := make([]ValueID, 0, len(vals))
	for _, val := range vals {
		sites = append(sites, s.arena.Intern(val))
	}
	s.pointsTo[id] = sites
	return sites, nil
}

// sortValues orders values by position, then by their string representation, such that the handles of the values
// do not depend on the order of the labels returned by the pointer analysis.
func (s *Session) sortValues(vals []ssa.Value) {
	slices.SortStableFunc(vals, func(a, b ssa.Value) bool {
		pa, pb := s.prog.Fset.Position(a.Pos()), s.prog.Fset.Position(b.Pos())
		if pa.Filename != pb.Filename {
			return pa.Filename < pb.Filename
		}
		if pa.Offset != pb.Offset {
			return pa.Offset < pb.Offset
		}
		return a.String() < b.String()
	})
}

// Reachable implements FlowOracle. The value-flow graph is built on the first call.
func (s *Session) Reachable(def ValueID, from []ValueID) ([]ValueID, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if len(from) == 0 {
		return nil, nil
	}
	if s.result == nil {
		if err := s.Prepare(from); err != nil {
			return nil, err
		}
	}
	if s.flow == nil {
		s.flow = buildValueFlowGraph(s.prog, s.opts.Functions, s.arena, s.result)
		if s.opts.Logger != nil {
			s.opts.Logger.Debugf("Value-flow graph has %d nodes", s.flow.g.NumNodes())
		}
	}
	return s.flow.reachableAmong(def, from), nil
}

// Close releases the analysis results. Any query on a closed session returns ErrSessionClosed.
func (s *Session) Close() {
	s.closed = true
	s.result = nil
	s.flow = nil
	s.pointsTo = nil
	s.queried = nil
}
