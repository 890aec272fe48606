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
	"go/types"

	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
)

// IsUnsafePointer returns true if t is unsafe.Pointer or a named type whose underlying type is unsafe.Pointer
func IsUnsafePointer(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Kind() == types.UnsafePointer
}

// IsPointerLike returns true if values of type t may hold an address: the types the pointer analysis can track, and
// unsafe.Pointer, which it does not model.
func IsPointerLike(t types.Type) bool {
	if t == nil {
		return false
	}
	return IsUnsafePointer(t) || pointer.CanPoint(t)
}

// IsFunctionRef returns true if v is a reference to a function or a builtin rather than a value computed by the
// program.
func IsFunctionRef(v ssa.Value) bool {
	switch v.(type) {
	case *ssa.Function, *ssa.Builtin:
		return true
	}
	return false
}

// FindAllPointers returns all the pointers that point to v.
func FindAllPointers(res *pointer.Result, v ssa.Value) []pointer.Pointer {
	var allptr []pointer.Pointer
	if ptr, ptrExists := res.Queries[v]; ptrExists {
		allptr = append(allptr, ptr)
	}
	// By indirect query
	if ptr, ptrExists := res.IndirectQueries[v]; ptrExists {
		allptr = append(allptr, ptr)
	}
	return allptr
}

// PointsToValues returns the values labelling the objects the pointers may point to. Labels of synthetic objects
// have no value and are skipped.
func PointsToValues(ptrs []pointer.Pointer) []ssa.Value {
	var res []ssa.Value
	seen := map[ssa.Value]bool{}
	for _, ptr := range ptrs {
		for _, label := range ptr.PointsTo().Labels() {
			v := label.Value()
			if v == nil || seen[v] {
				continue
			}
			seen[v] = true
			res = append(res, v)
		}
	}
	return res
}
