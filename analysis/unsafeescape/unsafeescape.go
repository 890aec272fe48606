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
	"errors"
	"fmt"

	"github.com/awslabs/argot-unsafe/analysis"
	"github.com/awslabs/argot-unsafe/analysis/config"
	"github.com/awslabs/argot-unsafe/analysis/lang"
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"golang.org/x/tools/go/ssa"
)

// Result is the result of the escape analysis
type Result struct {
	Report Report

	// Candidates is the number of candidate pointers found in the regions
	Candidates int

	// Sites is the number of allocation sites the candidates may point to
	Sites int

	// Omitted is the number of sites omitted because their definition could not be located
	Omitted int
}

// regionGroup is a set of regions analyzed together
type regionGroup struct {
	filename   string
	index      *regions.Index
	candidates []Candidate
}

// Analyze runs the escape analysis on the loaded program, for the unsafe regions of index.
// The pointer analysis is run once for the candidates of all the regions. An error wrapping ErrAnalysisUnavailable
// is returned when it fails.
func Analyze(cfg *config.Config, lp analysis.LoadedProgram, index *regions.Index) (Result, error) {
	logger := config.NewLogGroup(cfg)
	prog := lp.Program
	if prog == nil {
		return Result{}, fmt.Errorf("no program to analyze")
	}

	funcs := lang.SortedFunctions(prog)
	arena := NewValueArena()
	namer := NewDebugNamer(funcs, arena)

	groups := splitRegions(cfg, index)
	rootFiles := RootFiles(lp)
	collectOpts := CollectOptions{
		SkipUnnamedBlocks: cfg.SkipUnnamedBlocks,
		FunctionFilter: func(fn *ssa.Function) bool {
			if fn.Pkg == nil {
				return cfg.PkgFilter == ""
			}
			return cfg.MatchPkgFilter(fn.Pkg.Pkg.Path())
		},
		FileFilter: func(filename string) bool {
			return len(rootFiles) == 0 || rootFiles[filename]
		},
	}

	res := Result{Report: Report{Grouped: cfg.GroupByFile}}
	var values []ValueID
	for _, g := range groups {
		g.candidates = CollectCandidates(prog, funcs, g.index, arena, collectOpts)
		logger.Debugf("Found %d candidates in regions of %s", len(g.candidates), g.filename)
		res.Candidates += len(g.candidates)
		for _, c := range g.candidates {
			values = append(values, c.Value)
		}
	}

	session := NewSession(prog, arena, SessionOptions{
		Reflection: cfg.PointerReflection,
		ValueFlow:  cfg.ValueFlowRefinement,
		Functions:  funcs,
		Logger:     logger,
	})
	defer session.Close()
	if err := session.Prepare(values); err != nil {
		return Result{}, err
	}

	locator := NewLocator(prog, funcs, arena)
	filterOpts := FilterOptions{
		ByValue: cfg.DedupByValueHandle(),
		Ignore:  lp.Directives.Ignores,
	}

	var errs []error
	for _, g := range groups {
		entries, err := analyzeGroup(g, session, locator, namer, index, filterOpts, cfg, logger, &res)
		if err != nil {
			errs = append(errs, fmt.Errorf("analysis of %s failed: %w", g.filename, err))
			continue
		}
		if cfg.GroupByFile {
			res.Report.Groups = append(res.Report.Groups, FileGroup{Filename: g.filename, Results: entries})
		} else {
			res.Report.Entries = append(res.Report.Entries, entries...)
		}
	}
	if len(errs) > 0 {
		return Result{}, errors.Join(errs...)
	}
	logger.Infof("%d candidates, %d allocation sites, %d escaping allocations",
		res.Candidates, res.Sites, res.Report.NumEntries())
	return res, nil
}

// RootFiles returns the source files of the packages the program was loaded from. Region descriptors name files by
// suffix, and only these files are matched against them, such that a region of util.go does not designate every
// util.go of the dependencies.
func RootFiles(lp analysis.LoadedProgram) map[string]bool {
	files := map[string]bool{}
	for _, pkg := range lp.Packages {
		for _, f := range pkg.GoFiles {
			files[f] = true
		}
		for _, f := range pkg.CompiledGoFiles {
			files[f] = true
		}
	}
	return files
}

func splitRegions(cfg *config.Config, index *regions.Index) []*regionGroup {
	if !cfg.GroupByFile {
		return []*regionGroup{{filename: "all files", index: index}}
	}
	var groups []*regionGroup
	for _, f := range index.Files() {
		groups = append(groups, &regionGroup{filename: f, index: index.Restrict(f)})
	}
	return groups
}

func analyzeGroup(g *regionGroup, session *Session, locator *Locator, namer Namer, index *regions.Index,
	filterOpts FilterOptions, cfg *config.Config, logger *config.LogGroup, res *Result) ([]Entry, error) {
	buckets, err := InvertPointsTo(g.candidates, session, namer)
	if err != nil {
		return nil, err
	}
	if cfg.ValueFlowRefinement {
		buckets, err = Refine(buckets, session)
		if err != nil {
			return nil, err
		}
	}
	res.Sites += buckets.Len()

	var entries []Entry
	for _, site := range buckets.Sites() {
		name := namer.SiteName(site)
		def, err := locator.Locate(site)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				if logger.Verbose() {
					logger.WithField("allocation", name).Debugf("omitted: %v", err)
				}
				res.Omitted++
				continue
			}
			return nil, err
		}
		records := FilterEscapes(def, buckets.Bucket(site), namer, filterOpts)
		filename := def.Filename
		if descName, ok := index.DescriptorName(def.Filename); ok {
			filename = descName
		}
		if entry, ok := BuildEntry(name, def.Line, filename, records); ok {
			logger.Tracef("Allocation %s at %s escapes through %d pointers", name, def.position(), len(records))
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
