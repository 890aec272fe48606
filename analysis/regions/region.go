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

package regions

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Region is an inclusive line range of a source file
type Region struct {
	Filename string
	Start    int
	End      int
}

// Contains returns true when line is within the region, bounds included
func (r Region) Contains(line int) bool {
	return r.Start <= line && line <= r.End
}

// ContainsRegion returns true when o is nested in r. Both regions must be in the same file.
func (r Region) ContainsRegion(o Region) bool {
	return SameFile(r.Filename, o.Filename) && r.Start <= o.Start && o.End <= r.End
}

func (r Region) String() string {
	return fmt.Sprintf("%s:(%d,%d)", r.Filename, r.Start, r.End)
}

// SameFile returns true when the filenames a and b designate the same file: either they are equal once cleaned, or
// one is a suffix of the other on a path separator boundary. The relation is symmetric, such that a descriptor
// filename relative to the root of a project designates the absolute filename of a source position.
func SameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ca := filepath.ToSlash(filepath.Clean(a))
	cb := filepath.ToSlash(filepath.Clean(b))
	if ca == cb {
		return true
	}
	if len(ca) < len(cb) {
		ca, cb = cb, ca
	}
	return strings.HasSuffix(ca, "/"+cb)
}
