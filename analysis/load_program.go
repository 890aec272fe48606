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
	"errors"
	"fmt"
	"go/token"
	"os"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// PkgLoadMode is the loading mode of the programs: the syntax and types of all the packages are needed to build
// the SSA of the whole program.
const PkgLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedExportFile |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedModule

// DefaultBuildMode is the SSA build mode of the escape analysis. Debug information is needed to recover the source
// names of the values.
const DefaultBuildMode = ssa.InstantiateGenerics | ssa.GlobalDebug

// LoadedProgram is a program built in SSA form, with the packages it was built from and the directives found in
// their comments.
type LoadedProgram struct {
	Program    *ssa.Program
	Packages   []*packages.Package
	Directives Directives
}

// LoadProgram loads the packages designated by args (see packages.Load), for the GOOS platform when it is not
// empty, and builds the SSA of the whole program with buildmode.
// If config is nil, packages are loaded with PkgLoadMode, and with their tests when withTests is set.
func LoadProgram(config *packages.Config,
	platform string,
	buildmode ssa.BuilderMode,
	withTests bool,
	args []string) (LoadedProgram, error) {

	if config == nil {
		config = &packages.Config{Mode: PkgLoadMode, Tests: withTests}
	}
	if config.Fset == nil {
		config.Fset = token.NewFileSet()
	}
	if platform != "" {
		config.Env = append(os.Environ(), "GOOS="+platform)
	}

	pkgs, err := loadPackages(config, args)
	if err != nil {
		return LoadedProgram{}, err
	}
	program, err := buildProgram(pkgs, buildmode)
	if err != nil {
		return LoadedProgram{}, err
	}
	return LoadedProgram{
		Program:    program,
		Packages:   pkgs,
		Directives: FindDirectives(pkgs, program.Fset),
	}, nil
}

// loadPackages loads, parses and type checks the packages. The errors of all the packages are returned together.
func loadPackages(config *packages.Config, args []string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(config, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matching %v", args)
	}
	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("errors in loaded packages: %w", errors.Join(errs...))
	}
	return pkgs, nil
}

func buildProgram(pkgs []*packages.Package, buildmode ssa.BuilderMode) (*ssa.Program, error) {
	program, ssaPkgs := ssautil.AllPackages(pkgs, buildmode)
	for i, p := range ssaPkgs {
		if p == nil {
			return nil, fmt.Errorf("cannot build SSA for package %s", pkgs[i])
		}
	}
	program.Build()
	return program, nil
}
