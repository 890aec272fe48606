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
	"go/types"

	"github.com/awslabs/argot-unsafe/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// Namer gives names to the values of the analysis
type Namer interface {
	// SiteName returns the symbolic name of an allocation site: the source variable it is bound to, if any. An empty
	// name means the site cannot be reported.
	SiteName(ValueID) string

	// PointerName returns the name of a candidate pointer. It is never empty.
	PointerName(ValueID) string
}

// DebugNamer names values from the debug references of the program, which requires building the program with
// ssa.GlobalDebug. Without debug references, only allocations of named variables, globals, parameters and free
// variables have symbolic names.
type DebugNamer struct {
	arena      *ValueArena
	debugNames map[ssa.Value]string
}

// NewDebugNamer returns a namer for the values of the functions funcs. The first debug reference of a value,
// in the order of funcs, gives its name.
func NewDebugNamer(funcs []*ssa.Function, arena *ValueArena) *DebugNamer {
	names := map[ssa.Value]string{}
	for _, fn := range funcs {
		lang.IterateInstructions(fn, func(_ *ssa.BasicBlock, _ int, instr ssa.Instruction) {
			ref, ok := instr.(*ssa.DebugRef)
			if !ok {
				return
			}
			obj, ok := ref.Object().(*types.Var)
			if !ok || obj.Name() == "" || obj.Name() == "_" {
				return
			}
			if ref.IsAddr && !isVariableAddress(ref.X) {
				return
			}
			if _, named := names[ref.X]; !named {
				names[ref.X] = obj.Name()
			}
		})
	}
	return &DebugNamer{arena: arena, debugNames: names}
}

// isVariableAddress returns true if v is the storage of a variable, such that the address of the variable names
// the storage.
func isVariableAddress(v ssa.Value) bool {
	switch v.(type) {
	case *ssa.Alloc, *ssa.Global:
		return true
	}
	return false
}

// SiteName implements Namer
func (n *DebugNamer) SiteName(id ValueID) string {
	return n.symbolicName(n.arena.Value(id))
}

// PointerName implements Namer. Values without a symbolic name are named by their register.
func (n *DebugNamer) PointerName(id ValueID) string {
	v := n.arena.Value(id)
	if name := n.symbolicName(v); name != "" {
		return name
	}
	return v.Name()
}

func (n *DebugNamer) symbolicName(v ssa.Value) string {
	if name, ok := n.debugNames[v]; ok {
		return name
	}
	switch x := v.(type) {
	case *ssa.Alloc:
		return x.Comment
	case *ssa.Global:
		return x.Name()
	case *ssa.Parameter:
		return x.Name()
	case *ssa.FreeVar:
		return x.Name()
	}
	return ""
}
