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
	"go/ast"
	"go/token"
	"strings"

	"github.com/awslabs/argot-unsafe/analysis/lang"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"
)

// DirectiveKind is the kind of a directive comment
type DirectiveKind string

// DirectiveIgnore marks a line whose pointers must not be reported as escapes
const DirectiveIgnore DirectiveKind = "ignore"

const directivePrefix = "argot:"

// Directive is a comment of the form `//argot:<kind>` in the analyzed source
type Directive struct {
	Kind     DirectiveKind
	Filename string
	Line     int
}

type lineKey struct {
	filename string
	line     int
}

// Directives indexes the directives of a program by line
type Directives struct {
	byLine map[lineKey][]Directive
}

// ParseDirective returns the kind of the directive in the comment text, if the comment is a directive
func ParseDirective(text string) (DirectiveKind, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(text, "//"))
	kind, ok := strings.CutPrefix(body, directivePrefix)
	if !ok {
		return "", false
	}
	switch k := DirectiveKind(strings.TrimSpace(kind)); k {
	case DirectiveIgnore:
		return k, true
	}
	return "", false
}

// FindDirectives returns the directives in the comments of the packages
func FindDirectives(pkgs []*packages.Package, fset *token.FileSet) Directives {
	d := Directives{byLine: map[lineKey][]Directive{}}
	lang.MapComments(pkgs, func(c *ast.Comment) {
		kind, ok := ParseDirective(c.Text)
		if !ok {
			return
		}
		pos := fset.Position(c.Pos())
		if pos.IsValid() {
			d.Add(Directive{Kind: kind, Filename: pos.Filename, Line: pos.Line})
		}
	})
	return d
}

// Add records the directive
func (d *Directives) Add(dir Directive) {
	if d.byLine == nil {
		d.byLine = map[lineKey][]Directive{}
	}
	k := lineKey{dir.Filename, dir.Line}
	d.byLine[k] = append(d.byLine[k], dir)
}

// Ignores returns true if the line of filename carries an ignore directive
func (d Directives) Ignores(filename string, line int) bool {
	for _, dir := range d.byLine[lineKey{filename, line}] {
		if dir.Kind == DirectiveIgnore {
			return true
		}
	}
	return false
}

// All returns the directives ordered by filename and line
func (d Directives) All() []Directive {
	var res []Directive
	for _, dirs := range d.byLine {
		res = append(res, dirs...)
	}
	slices.SortFunc(res, func(a, b Directive) bool {
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Line < b.Line
	})
	return res
}
