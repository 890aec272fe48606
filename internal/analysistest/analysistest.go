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

// Package analysistest loads the test programs of the escape analysis and reads the expected results from their
// annotations.
package analysistest

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/argot-unsafe/analysis"
	"github.com/awslabs/argot-unsafe/analysis/config"
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"github.com/awslabs/argot-unsafe/internal/funcutil"
	"golang.org/x/tools/go/packages"
)

// LoadedTestProgram is a test program loaded with its configuration and unsafe regions
type LoadedTestProgram struct {
	Config  *config.Config
	Program analysis.LoadedProgram
	Regions *regions.Index
	Dir     string
}

// LoadTest loads the program in the directory dir, looking for a main.go, a locations.txt and an optional
// config.yaml. If additional files are specified as extraFiles, the program will be loaded using those files too.
// When there is no config file, the default config is used.
func LoadTest(t *testing.T, dir string, extraFiles []string) LoadedTestProgram {
	t.Helper()
	dir, err := filepath.Abs(dir)
	if err != nil {
		t.Fatalf("could not resolve test directory %s: %v", dir, err)
	}
	files := []string{filepath.Join(dir, "main.go")}
	for _, extraFile := range extraFiles {
		files = append(files, filepath.Join(dir, extraFile))
	}

	pcfg := &packages.Config{Mode: analysis.PkgLoadMode, Fset: token.NewFileSet()}
	lp, err := analysis.LoadProgram(pcfg, "", analysis.DefaultBuildMode, false, files)
	if err != nil {
		t.Fatalf("error loading packages in %s: %v", dir, err)
	}

	cfg := config.NewDefault()
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		config.SetGlobalConfig(configFile)
		cfg, err = config.LoadGlobal()
		if err != nil {
			t.Fatalf("error loading config %s: %v", configFile, err)
		}
	}

	index, err := regions.Load(filepath.Join(dir, "locations.txt"))
	if err != nil {
		t.Fatalf("error loading locations of %s: %v", dir, err)
	}
	return LoadedTestProgram{Config: cfg, Program: lp, Regions: index, Dir: dir}
}

// AllocRegex matches annotations of the form "@Alloc(id1, id2)" marking the definition of allocations
var AllocRegex = regexp.MustCompile(`//.*@Alloc\(((?:\s*\w+\s*,?)+)\)`)

// EscapeRegex matches annotations of the form "@Escape(id1, id2)" marking the pointers escaping allocations
var EscapeRegex = regexp.MustCompile(`//.*@Escape\(((?:\s*\w+\s*,?)+)\)`)

// LPos is a position without column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn drops the column of the position and keeps the base name of its file
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: filepath.Base(pos.Filename)}
}

// GetExpectedEscapes parses the Go files in dir and looks for comments @Alloc(id) and @Escape(id) to construct the
// expected escapes, in the form of a map from allocation positions to the positions of the pointers escaping it.
// Filenames are base names.
func GetExpectedEscapes(t *testing.T, dir string) map[LPos]map[LPos]bool {
	t.Helper()
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("could not parse %s: %v", dir, err)
	}
	var files []*ast.File
	for _, name := range funcutil.SortedKeys(pkgs) {
		pkg := pkgs[name]
		for _, filename := range funcutil.SortedKeys(pkg.Files) {
			files = append(files, pkg.Files[filename])
		}
	}

	allocs := map[string]LPos{}
	forEachAnnotation(fset, files, AllocRegex, func(id string, pos LPos) {
		allocs[id] = pos
	})
	expected := map[LPos]map[LPos]bool{}
	forEachAnnotation(fset, files, EscapeRegex, func(id string, pos LPos) {
		alloc, ok := allocs[id]
		if !ok {
			t.Fatalf("escape %s at %s has no allocation annotation", id, pos)
		}
		if _, ok := expected[alloc]; !ok {
			expected[alloc] = map[LPos]bool{}
		}
		expected[alloc][pos] = true
	})
	return expected
}

func forEachAnnotation(fset *token.FileSet, files []*ast.File, re *regexp.Regexp, f func(id string, pos LPos)) {
	for _, file := range files {
		for _, group := range file.Comments {
			for _, c := range group.List {
				a := re.FindStringSubmatch(c.Text)
				if len(a) <= 1 {
					continue
				}
				for _, ident := range strings.Split(a[1], ",") {
					f(strings.TrimSpace(ident), RemoveColumn(fset.Position(c.Pos())))
				}
			}
		}
	}
}
