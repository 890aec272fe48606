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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrLocationsFile is returned when the region descriptor file cannot be read
var ErrLocationsFile = errors.New("could not read locations file")

// ParseError reports the line where parsing of a descriptor stopped. The regions read before that line are kept.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("locations parse stopped at line %d (%q): %s", e.Line, e.Text, e.Reason)
}

// Accepts "(12,30)" as well as "(12, 30)"
var rangeRegex = regexp.MustCompile(`^\(\s*(\d+)\s*,\s*(\d+)\s*\)`)

// Index maps filenames to their unsafe regions
type Index struct {
	// files in order of first appearance
	files   []string
	regions map[string][]Region

	// matches caches Match results per position filename
	matches map[string][]Region
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{
		regions: map[string][]Region{},
		matches: map[string][]Region{},
	}
}

// AddFile registers filename in the index, even if it has no regions
func (idx *Index) AddFile(filename string) {
	if _, ok := idx.regions[filename]; ok {
		return
	}
	idx.files = append(idx.files, filename)
	idx.regions[filename] = []Region{}
	idx.matches = map[string][]Region{}
}

// Add appends the region r to the regions of its file
func (idx *Index) Add(r Region) {
	idx.AddFile(r.Filename)
	idx.regions[r.Filename] = append(idx.regions[r.Filename], r)
	idx.matches = map[string][]Region{}
}

// Files returns the filenames of the index, in order of first appearance
func (idx *Index) Files() []string {
	return append([]string(nil), idx.files...)
}

// RegionsFor returns the regions of the file named filename, in descriptor order
func (idx *Index) RegionsFor(filename string) []Region {
	return append([]Region(nil), idx.regions[filename]...)
}

// Len returns the total number of regions
func (idx *Index) Len() int {
	n := 0
	for _, rs := range idx.regions {
		n += len(rs)
	}
	return n
}

// Match returns the regions whose filename designates posFilename (see SameFile). posFilename is typically the
// absolute filename of a source position.
func (idx *Index) Match(posFilename string) []Region {
	if rs, ok := idx.matches[posFilename]; ok {
		return rs
	}
	var rs []Region
	for _, f := range idx.files {
		if SameFile(f, posFilename) {
			rs = append(rs, idx.regions[f]...)
		}
	}
	idx.matches[posFilename] = rs
	return rs
}

// DescriptorName returns the name under which posFilename appears in the index
func (idx *Index) DescriptorName(posFilename string) (string, bool) {
	for _, f := range idx.files {
		if SameFile(f, posFilename) {
			return f, true
		}
	}
	return "", false
}

// Restrict returns an index containing only the regions of filename
func (idx *Index) Restrict(filename string) *Index {
	r := NewIndex()
	r.AddFile(filename)
	for _, reg := range idx.regions[filename] {
		r.Add(reg)
	}
	return r
}

// Format writes the index in the descriptor format
func (idx *Index) Format(w io.Writer) error {
	for _, f := range idx.files {
		if _, err := fmt.Fprintln(w, f); err != nil {
			return err
		}
		for _, r := range idx.regions[f] {
			if _, err := fmt.Fprintf(w, "(%d,%d)\n", r.Start, r.End); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads the descriptor file at path. If the file cannot be read, the error wraps ErrLocationsFile. If the file
// is malformed, the partial index is returned along with a *ParseError.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrLocationsFile, path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a region descriptor. Blank lines are ignored. A line that is not a range starts a new file block.
// Parsing stops at the first range that appears before any filename, that has its start after its end, or whose
// bounds do not fit in an int: the index built so far is returned with a *ParseError.
func Parse(r io.Reader) (*Index, error) {
	idx := NewIndex()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	current := ""
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := rangeRegex.FindStringSubmatch(line)
		if m == nil {
			current = line
			idx.AddFile(current)
			continue
		}
		if current == "" {
			return idx, &ParseError{Line: lineNum, Text: line, Reason: "range before any filename"}
		}
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return idx, &ParseError{Line: lineNum, Text: line, Reason: "line number out of range"}
		}
		if start > end {
			return idx, &ParseError{Line: lineNum, Text: line, Reason: "range start is after range end"}
		}
		idx.Add(Region{Filename: current, Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return idx, fmt.Errorf("%w: %v", ErrLocationsFile, err)
	}
	return idx, nil
}
