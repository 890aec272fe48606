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
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Entry is the report of one allocation and the pointers escaping it
type Entry struct {
	AllocVar  string         `json:"allocvar"`
	AllocLine int            `json:"allocline"`
	Filename  string         `json:"filename"`
	Pointers  []EscapeRecord `json:"pointers"`
}

// FileGroup holds the entries found for the regions of one file
type FileGroup struct {
	Filename string  `json:"filename"`
	Results  []Entry `json:"results"`
}

// Report is the result of the analysis. When Grouped is set, the entries are in Groups, otherwise in Entries.
type Report struct {
	Grouped bool
	Entries []Entry
	Groups  []FileGroup
}

// BuildEntry returns the entry of the allocation named name defined at line of filename. No entry is built when
// there are no records.
func BuildEntry(name string, line int, filename string, records []EscapeRecord) (Entry, bool) {
	if len(records) == 0 {
		return Entry{}, false
	}
	return Entry{AllocVar: name, AllocLine: line, Filename: filename, Pointers: records}, true
}

// AllEntries returns all the entries of the report, in order
func (r Report) AllEntries() []Entry {
	if !r.Grouped {
		return r.Entries
	}
	var entries []Entry
	for _, g := range r.Groups {
		entries = append(entries, g.Results...)
	}
	return entries
}

// NumEntries returns the number of entries in the report
func (r Report) NumEntries() int {
	return len(r.AllEntries())
}

// WriteJSON writes the report as a JSON array to w, indented with indent if it is not empty
func (r Report) WriteJSON(w io.Writer, indent string) error {
	enc := json.NewEncoder(w)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	var v any
	if r.Grouped {
		groups := make([]FileGroup, len(r.Groups))
		copy(groups, r.Groups)
		for i := range groups {
			if groups[i].Results == nil {
				groups[i].Results = []Entry{}
			}
		}
		v = groups
	} else {
		entries := r.Entries
		if entries == nil {
			entries = []Entry{}
		}
		v = entries
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteReportFile writes the JSON report to the file at path, replacing it if it exists
func WriteReportFile(path string, r Report, indent string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}
	if err := r.WriteJSON(f, indent); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
