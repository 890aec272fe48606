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

	"github.com/awslabs/argot-unsafe/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// Definition is the location of the defining instruction of an allocation site
type Definition struct {
	Filename string
	Line     int
	Block    BlockHandle
}

// Locator finds the definitions of allocation sites. The index of the allocation instructions of the program is
// built on the first call to Locate, and definitions are memoized.
type Locator struct {
	prog  *ssa.Program
	funcs []*ssa.Function
	arena *ValueArena

	built   bool
	allocs  map[ssa.Value][]Definition
	globals map[*ssa.Global][]Definition
	cache   map[ValueID]Definition
}

// NewLocator returns a locator for the allocations of the functions funcs
func NewLocator(prog *ssa.Program, funcs []*ssa.Function, arena *ValueArena) *Locator {
	return &Locator{
		prog:  prog,
		funcs: funcs,
		arena: arena,
		cache: map[ValueID]Definition{},
	}
}

// Locate returns the definition of the allocation site. A global is defined at its declaration. Other sites are
// defined by an allocation instruction (a local or heap allocation, or a make instruction) whose value is the site.
// When the allocation has no position, the next instruction of its block that has one is used. When several
// definitions match, the one with the earliest line is returned.
//
// If no definition exists, the returned error wraps ErrNotFound.
func (l *Locator) Locate(site ValueID) (Definition, error) {
	if def, ok := l.cache[site]; ok {
		return def, nil
	}
	l.build()
	v := l.arena.Value(site)
	var defs []Definition
	if g, ok := v.(*ssa.Global); ok {
		if pos := l.prog.Fset.Position(g.Pos()); pos.IsValid() {
			defs = []Definition{{Filename: pos.Filename, Line: pos.Line, Block: NoBlock}}
		} else {
			defs = l.globals[g]
		}
	} else {
		defs = l.allocs[v]
	}
	if len(defs) == 0 {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, v.Name())
	}
	best := defs[0]
	for _, d := range defs[1:] {
		if d.Line < best.Line {
			best = d
		}
	}
	l.cache[site] = best
	return best, nil
}

func (l *Locator) build() {
	if l.built {
		return
	}
	l.built = true
	l.allocs = map[ssa.Value][]Definition{}
	l.globals = map[*ssa.Global][]Definition{}
	for _, fn := range l.funcs {
		for _, block := range fn.Blocks {
			for i, instr := range block.Instrs {
				switch x := instr.(type) {
				case *ssa.Store:
					// a global without declaration is defined by the stores to it
					if g, ok := x.Addr.(*ssa.Global); ok {
						if def, ok := l.definitionAt(block, i); ok {
							l.globals[g] = append(l.globals[g], def)
						}
					}
				default:
					if !isAllocation(instr) {
						continue
					}
					if def, ok := l.definitionAt(block, i); ok {
						v := instr.(ssa.Value)
						l.allocs[v] = append(l.allocs[v], def)
					}
				}
			}
		}
	}
}

// definitionAt returns the position of the i-th instruction of the block, or the position of the first instruction
// following it that has one.
func (l *Locator) definitionAt(block *ssa.BasicBlock, i int) (Definition, bool) {
	for _, instr := range block.Instrs[i:] {
		pos := lang.InstrPosition(l.prog.Fset, instr)
		if pos.IsValid() {
			return Definition{Filename: pos.Filename, Line: pos.Line, Block: l.arena.Block(block)}, true
		}
	}
	return Definition{}, false
}

// isAllocation returns true if the instruction allocates an object the pointer analysis can label
func isAllocation(instr ssa.Instruction) bool {
	switch instr.(type) {
	case *ssa.Alloc, *ssa.MakeSlice, *ssa.MakeMap, *ssa.MakeChan, *ssa.MakeClosure, *ssa.MakeInterface:
		return true
	}
	return false
}

// position returns the position of the definition, for logging
func (d Definition) position() token.Position {
	return token.Position{Filename: d.Filename, Line: d.Line}
}
