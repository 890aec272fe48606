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

package analysis

import (
	"path"
	"path/filepath"
	"runtime"
	"testing"
)

func programLoadTest(t *testing.T, name string, files ...string) LoadedProgram {
	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "../testdata/src/unsafeescape", name)
	var args []string
	for _, f := range files {
		args = append(args, filepath.Join(dir, f))
	}
	lp, err := LoadProgram(nil, "", DefaultBuildMode, false, args)
	if err != nil {
		t.Fatalf("error loading packages: %s", err)
	}
	for _, pkg := range lp.Program.AllPackages() {
		t.Logf("%s loaded\n", pkg.String())
	}
	return lp
}

func TestLoadMultipleFiles(t *testing.T) {
	lp := programLoadTest(t, "multifile", "main.go", "util.go")
	if len(lp.Packages) != 1 {
		t.Fatalf("expected one initial package, got %d", len(lp.Packages))
	}
	if n := len(lp.Packages[0].Syntax); n != 2 {
		t.Errorf("expected the syntax of 2 files, got %d", n)
	}
	if dirs := lp.Directives.All(); len(dirs) != 0 {
		t.Errorf("expected no directive, got %v", dirs)
	}
}

func TestLoadFindsIgnoreDirective(t *testing.T) {
	lp := programLoadTest(t, "ignore", "main.go")
	dirs := lp.Directives.All()
	if len(dirs) != 1 {
		t.Fatalf("expected one directive, got %v", dirs)
	}
	d := dirs[0]
	if filepath.Base(d.Filename) != "main.go" || d.Line != 12 || d.Kind != DirectiveIgnore {
		t.Errorf("unexpected directive %+v", d)
	}
	if !lp.Directives.Ignores(d.Filename, 12) || lp.Directives.Ignores(d.Filename, 13) {
		t.Errorf("only line 12 should be ignored")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadProgram(nil, "", DefaultBuildMode, false, []string{"does-not-exist.go"}); err == nil {
		t.Errorf("loading a missing file should fail")
	}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		text  string
		valid bool
	}{
		{"//argot:ignore", true},
		{"// argot:ignore ", true},
		{"//argot:unknown", false},
		{"// ignore", false},
		{"// see argot:ignore", false},
	}
	for _, test := range tests {
		kind, ok := ParseDirective(test.text)
		if ok != test.valid || (ok && kind != DirectiveIgnore) {
			t.Errorf("directive %q: expected valid=%v, got %v %q", test.text, test.valid, ok, kind)
		}
	}
}

func TestDirectivesOrder(t *testing.T) {
	var d Directives
	d.Add(Directive{Kind: DirectiveIgnore, Filename: "b.go", Line: 1})
	d.Add(Directive{Kind: DirectiveIgnore, Filename: "a.go", Line: 9})
	d.Add(Directive{Kind: DirectiveIgnore, Filename: "a.go", Line: 3})
	var got []int
	for _, dir := range d.All() {
		got = append(got, dir.Line)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 9 || got[2] != 1 {
		t.Errorf("unexpected order %v", got)
	}
}
