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

	"golang.org/x/tools/go/ssa"
)

// ValueID is a handle on a value interned in a ValueArena
type ValueID int

// ValueArena interns the values of a program. Values are compared by identity, and each distinct value gets a
// stable handle, in order of interning.
type ValueArena struct {
	values []ssa.Value
	ids    map[ssa.Value]ValueID
}

// NewValueArena returns an empty arena
func NewValueArena() *ValueArena {
	return &ValueArena{ids: map[ssa.Value]ValueID{}}
}

// Intern returns the handle of v, creating it if v has not been seen before
func (a *ValueArena) Intern(v ssa.Value) ValueID {
	if id, ok := a.ids[v]; ok {
		return id
	}
	id := ValueID(len(a.values))
	a.values = append(a.values, v)
	a.ids[v] = id
	return id
}

// Lookup returns the handle of v if v has been interned
func (a *ValueArena) Lookup(v ssa.Value) (ValueID, bool) {
	id, ok := a.ids[v]
	return id, ok
}

// Value returns the value of the handle id. It panics if id was not returned by the arena.
func (a *ValueArena) Value(id ValueID) ssa.Value {
	if id < 0 || int(id) >= len(a.values) {
		panic(fmt.Sprintf("value handle %d is not in the arena", id))
	}
	return a.values[id]
}

// Len returns the number of values in the arena
func (a *ValueArena) Len() int {
	return len(a.values)
}

// Block returns the handle of block b
func (a *ValueArena) Block(b *ssa.BasicBlock) BlockHandle {
	if b == nil || b.Parent() == nil {
		return NoBlock
	}
	return BlockHandle{Func: a.Intern(b.Parent()), Index: b.Index}
}

// BlockHandle identifies a basic block by the handle of its function and its index
type BlockHandle struct {
	Func  ValueID
	Index int
}

// NoBlock is the block of definitions that are not in a function, such as globals
var NoBlock = BlockHandle{Func: -1, Index: -1}

func (b BlockHandle) String() string {
	if b == NoBlock {
		return "<no block>"
	}
	return fmt.Sprintf("%d#%d", b.Func, b.Index)
}
