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
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"golang.org/x/exp/slices"
)

const unsafePkgPath = "unsafe"

// ScanFile returns the unsafe regions of the Go source file filename. If src is nil, the file is read from disk,
// otherwise src is the contents of the file (see parser.ParseFile).
//
// A region is the line span of the innermost function declaration or function literal that references package unsafe.
// References outside any function produce the span of the enclosing top-level declaration. Regions nested in other
// regions are dropped, and the result is sorted by start line.
func ScanFile(fset *token.FileSet, filename string, src any) ([]Region, error) {
	astFile, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	dec := decorator.NewDecorator(fset)
	file, err := dec.DecorateFile(astFile)
	if err != nil {
		return nil, fmt.Errorf("failed to decorate %s: %w", filename, err)
	}

	names := unsafeImportNames(file)
	if len(names) == 0 {
		return nil, nil
	}

	var stack []dst.Node
	var scopes []dst.Node
	seen := map[dst.Node]bool{}
	dst.Inspect(file, func(n dst.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return true
		}
		stack = append(stack, n)
		if isUnsafeRef(n, names) {
			if scope := innermostScope(stack); scope != nil && !seen[scope] {
				seen[scope] = true
				scopes = append(scopes, scope)
			}
		}
		return true
	})

	var regions []Region
	for _, scope := range scopes {
		astNode, ok := dec.Ast.Nodes[scope]
		if !ok {
			continue
		}
		regions = append(regions, Region{
			Filename: filename,
			Start:    fset.Position(astNode.Pos()).Line,
			End:      fset.Position(astNode.End()).Line,
		})
	}
	return dropNested(regions), nil
}

// ScanDir scans all the Go files under root, skipping vendor, testdata and hidden directories. Filenames in the
// returned index are relative to root and use forward slashes. Files without unsafe regions are not in the index.
func ScanDir(root string) (*Index, error) {
	idx := NewIndex()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		name := filepath.ToSlash(rel)
		regions, err := ScanFile(fset, name, src)
		if err != nil {
			return err
		}
		for _, r := range regions {
			idx.Add(r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// unsafeImportNames returns the names package unsafe is imported under. Blank and dot imports are ignored.
func unsafeImportNames(file *dst.File) map[string]bool {
	names := map[string]bool{}
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != unsafePkgPath {
			continue
		}
		if imp.Name == nil {
			names[unsafePkgPath] = true
		} else if imp.Name.Name != "_" && imp.Name.Name != "." {
			names[imp.Name.Name] = true
		}
	}
	return names
}

func isUnsafeRef(n dst.Node, names map[string]bool) bool {
	switch x := n.(type) {
	case *dst.SelectorExpr:
		id, ok := x.X.(*dst.Ident)
		// a local variable shadowing the package name is resolved to an object
		return ok && names[id.Name] && id.Obj == nil
	case *dst.Ident:
		// qualified identifiers are only represented this way when a resolver is used
		return x.Path == unsafePkgPath
	}
	return false
}

// innermostScope returns the innermost function in the stack of nodes, or the top-level declaration when the stack
// is not inside a function.
func innermostScope(stack []dst.Node) dst.Node {
	for i := len(stack) - 1; i >= 0; i-- {
		switch stack[i].(type) {
		case *dst.FuncDecl, *dst.FuncLit:
			return stack[i]
		}
	}
	if len(stack) > 1 {
		if _, ok := stack[1].(dst.Decl); ok {
			return stack[1]
		}
	}
	return nil
}

func dropNested(regions []Region) []Region {
	slices.SortFunc(regions, func(a, b Region) bool {
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})
	var res []Region
	for _, r := range regions {
		if len(res) > 0 && res[len(res)-1].ContainsRegion(r) {
			continue
		}
		res = append(res, r)
	}
	return res
}
