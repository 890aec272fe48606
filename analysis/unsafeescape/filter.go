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
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"golang.org/x/exp/slices"
)

// EscapeRecord is a pointer that may reference an allocation from outside the allocation's unsafe region
type EscapeRecord struct {
	Name     string `json:"name"`
	Line     int    `json:"line"`
	Filename string `json:"filename"`
}

// FilterOptions parameterizes FilterEscapes
type FilterOptions struct {
	// ByValue deduplicates records by their underlying value instead of their name. Distinct pointers that share a
	// name and a line are then reported separately.
	ByValue bool

	// Ignore returns true if the pointers at line of filename must not be reported. filename is the filename of the
	// position of the instruction. A nil function ignores nothing.
	Ignore func(filename string, line int) bool
}

type recordKey struct {
	record EscapeRecord
	value  ValueID
}

// FilterEscapes returns the escape records of the bucket of candidates pointing to an allocation defined at def.
// A candidate is not an escape when its block is the block of the definition, or when the definition is inside the
// candidate's region. The records are deduplicated and sorted by filename, line and name.
func FilterEscapes(def Definition, bucket []Candidate, namer Namer, opts FilterOptions) []EscapeRecord {
	seen := map[recordKey]bool{}
	var records []EscapeRecord
	for _, c := range bucket {
		if IsSameBlock(c, def) || IsSameRegion(c, def) {
			continue
		}
		if opts.Ignore != nil && opts.Ignore(c.PosFilename, c.Line) {
			continue
		}
		r := EscapeRecord{Name: namer.PointerName(c.Value), Line: c.Line, Filename: c.Filename}
		key := recordKey{record: r, value: -1}
		if opts.ByValue {
			key.value = c.Value
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, r)
	}
	slices.SortStableFunc(records, func(a, b EscapeRecord) bool {
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Name < b.Name
	})
	return records
}

// IsSameBlock returns true if the candidate is in the block of the definition
func IsSameBlock(c Candidate, def Definition) bool {
	return def.Block != NoBlock && c.Block == def.Block
}

// IsSameRegion returns true if the definition is in the file of the candidate and inside the candidate's region
func IsSameRegion(c Candidate, def Definition) bool {
	return regions.SameFile(c.Filename, def.Filename) && c.Region.Contains(def.Line)
}
