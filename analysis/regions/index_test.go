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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegionContains(t *testing.T) {
	r := Region{Filename: "a.go", Start: 10, End: 20}
	for line, expected := range map[int]bool{9: false, 10: true, 15: true, 20: true, 21: false} {
		if got := r.Contains(line); got != expected {
			t.Errorf("Contains(%d) = %v, want %v", line, got, expected)
		}
	}
	single := Region{Filename: "a.go", Start: 7, End: 7}
	if !single.Contains(7) || single.Contains(6) || single.Contains(8) {
		t.Errorf("single line region should only contain its line")
	}
}

func TestSameFile(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"main.go", "main.go", true},
		{"main.go", "/home/user/project/main.go", true},
		{"/home/user/project/main.go", "main.go", true},
		{"pkg/mem/copy.go", "/src/project/pkg/mem/copy.go", true},
		{"./main.go", "/src/project/main.go", true},
		{"ain.go", "/src/project/main.go", false},
		{"other/main.go", "/src/project/pkg/main.go", false},
		{"", "main.go", false},
	}
	for _, test := range tests {
		if got := SameFile(test.a, test.b); got != test.expected {
			t.Errorf("SameFile(%q, %q) = %v, want %v", test.a, test.b, got, test.expected)
		}
	}
}

func TestParse(t *testing.T) {
	descriptor := "foo.c\n(10,20)\n(30, 40)\r\n\nbar.go\nempty.go\nfoo.c\n(50,50)\n"
	idx, err := Parse(strings.NewReader(descriptor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"foo.c", "bar.go", "empty.go"}, idx.Files()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	expected := []Region{
		{Filename: "foo.c", Start: 10, End: 20},
		{Filename: "foo.c", Start: 30, End: 40},
		{Filename: "foo.c", Start: 50, End: 50},
	}
	if diff := cmp.Diff(expected, idx.RegionsFor("foo.c")); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
	if len(idx.RegionsFor("empty.go")) != 0 {
		t.Errorf("empty.go should have no regions")
	}
	if idx.Len() != 3 {
		t.Errorf("expected 3 regions, got %d", idx.Len())
	}
}

func TestParseTruncatesOnRangeBeforeFilename(t *testing.T) {
	idx, err := Parse(strings.NewReader("(1,2)\nfoo.c\n(10,20)\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if perr.Line != 1 {
		t.Errorf("parse error should be at line 1, got %d", perr.Line)
	}
	if idx == nil || idx.Len() != 0 || len(idx.Files()) != 0 {
		t.Errorf("nothing should have been parsed before the malformed line")
	}
}

func TestParseKeepsRowsBeforeMalformedLine(t *testing.T) {
	idx, err := Parse(strings.NewReader("foo.c\n(10,20)\n(30,25)\n(40,50)\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if perr.Line != 3 {
		t.Errorf("parse error should be at line 3, got %d", perr.Line)
	}
	expected := []Region{{Filename: "foo.c", Start: 10, End: 20}}
	if diff := cmp.Diff(expected, idx.RegionsFor("foo.c")); diff != "" {
		t.Errorf("partial regions mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch(t *testing.T) {
	idx, err := Parse(strings.NewReader("main.go\n(5,8)\npkg/util.go\n(1,3)\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := idx.Match("/src/project/main.go")
	expected := []Region{{Filename: "main.go", Start: 5, End: 8}}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("match mismatch (-want +got):\n%s", diff)
	}
	if len(idx.Match("/src/project/other.go")) != 0 {
		t.Errorf("other.go should not match any region")
	}
	if name, ok := idx.DescriptorName("/src/project/pkg/util.go"); !ok || name != "pkg/util.go" {
		t.Errorf("descriptor name should be pkg/util.go, got %q", name)
	}
	r := idx.Restrict("pkg/util.go")
	if diff := cmp.Diff([]string{"pkg/util.go"}, r.Files()); diff != "" {
		t.Errorf("restricted files mismatch (-want +got):\n%s", diff)
	}
	if len(r.Match("/src/project/main.go")) != 0 {
		t.Errorf("restricted index should not match main.go")
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	idx := NewIndex()
	idx.Add(Region{Filename: "a.go", Start: 1, End: 4})
	idx.Add(Region{Filename: "b.go", Start: 7, End: 9})
	idx.Add(Region{Filename: "a.go", Start: 10, End: 12})
	var sb strings.Builder
	if err := idx.Format(&sb); err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if sb.String() != "a.go\n(1,4)\n(10,12)\nb.go\n(7,9)\n" {
		t.Errorf("unexpected format:\n%s", sb.String())
	}
	idx2, err := Parse(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if diff := cmp.Diff(idx.RegionsFor("a.go"), idx2.RegionsFor("a.go")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrLocationsFile) {
		t.Errorf("missing file should return ErrLocationsFile, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "locations.txt")
	if err := os.WriteFile(path, []byte("main.go\n(11,14)\n"), 0600); err != nil {
		t.Fatalf("failed to write locations: %v", err)
	}
	idx, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("expected one region, got %d", idx.Len())
	}
}
