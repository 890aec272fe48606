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

package unsafeescape_test

import (
	"bytes"
	"errors"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/awslabs/argot-unsafe/analysis"
	"github.com/awslabs/argot-unsafe/analysis/config"
	"github.com/awslabs/argot-unsafe/analysis/lang"
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"github.com/awslabs/argot-unsafe/analysis/unsafeescape"
	"github.com/awslabs/argot-unsafe/internal/analysistest"
	"github.com/google/go-cmp/cmp"
)

func testDir(name string) string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "../../testdata/src/unsafeescape", name)
}

func quietConfig(cfg *config.Config) *config.Config {
	c := *cfg
	c.LogLevel = int(config.ErrLevel)
	return &c
}

func parseRegions(t *testing.T, descriptor string) *regions.Index {
	index, err := regions.Parse(strings.NewReader(descriptor))
	if err != nil {
		t.Fatalf("failed to parse regions: %v", err)
	}
	return index
}

func runAnalysis(t *testing.T, cfg *config.Config, lt analysistest.LoadedTestProgram,
	index *regions.Index) unsafeescape.Result {
	t.Helper()
	res, err := unsafeescape.Analyze(cfg, lt.Program, index)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	return res
}

// reportedEscapes returns the escapes of the report in the format of the test annotations
func reportedEscapes(r unsafeescape.Report) map[analysistest.LPos]map[analysistest.LPos]bool {
	res := map[analysistest.LPos]map[analysistest.LPos]bool{}
	for _, e := range r.AllEntries() {
		alloc := analysistest.LPos{Filename: filepath.Base(e.Filename), Line: e.AllocLine}
		if _, ok := res[alloc]; !ok {
			res[alloc] = map[analysistest.LPos]bool{}
		}
		for _, p := range e.Pointers {
			res[alloc][analysistest.LPos{Filename: filepath.Base(p.Filename), Line: p.Line}] = true
		}
	}
	return res
}

func checkAnnotations(t *testing.T, lt analysistest.LoadedTestProgram, r unsafeescape.Report) {
	t.Helper()
	expected := analysistest.GetExpectedEscapes(t, lt.Dir)
	if diff := cmp.Diff(expected, reportedEscapes(r)); diff != "" {
		t.Errorf("escapes do not match annotations (-want +got):\n%s", diff)
	}
}

func TestBasicEscape(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("basic"), []string{})
	cfg := quietConfig(lt.Config)
	res := runAnalysis(t, cfg, lt, lt.Regions)
	expected := []unsafeescape.Entry{{
		AllocVar:  "buf",
		AllocLine: 6,
		Filename:  "main.go",
		Pointers:  []unsafeescape.EscapeRecord{{Name: "b", Line: 12, Filename: "main.go"}},
	}}
	if diff := cmp.Diff(expected, res.Report.Entries); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	checkAnnotations(t, lt, res.Report)
	if res.Candidates == 0 {
		t.Errorf("expected candidates in the unsafe region")
	}
}

func TestBasicNoEscapeCases(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("basic"), []string{})
	tests := []struct {
		name       string
		descriptor string
		pkgFilter  string
	}{
		{"allocation inside region", "main.go\n(5,14)\n", ""},
		{"same block", "main.go\n(7,8)\n", ""},
		{"other file", "other.go\n(1,100)\n", ""},
		{"filtered package", "main.go\n(11,14)\n", "nomatch"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := quietConfig(lt.Config)
			cfg.SetPkgFilter(test.pkgFilter)
			res := runAnalysis(t, cfg, lt, parseRegions(t, test.descriptor))
			if n := res.Report.NumEntries(); n != 0 {
				t.Errorf("expected no entry, got %v", res.Report.Entries)
			}
		})
	}
}

func TestBasicRefinementKeepsEscape(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("basic"), []string{})
	cfg := quietConfig(lt.Config)
	res := runAnalysis(t, cfg, lt, lt.Regions)
	cfg.ValueFlowRefinement = true
	refined := runAnalysis(t, cfg, lt, lt.Regions)
	if diff := cmp.Diff(res.Report, refined.Report); diff != "" {
		t.Errorf("refinement should keep the escape (-want +got):\n%s", diff)
	}
}

func TestDeterministicReport(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("multifile"), []string{"util.go"})
	cfg := quietConfig(lt.Config)
	var outputs []string
	for i := 0; i < 2; i++ {
		res := runAnalysis(t, cfg, lt, lt.Regions)
		var buf bytes.Buffer
		if err := res.Report.WriteJSON(&buf, cfg.ReportIndent); err != nil {
			t.Fatalf("failed to write report: %v", err)
		}
		outputs = append(outputs, buf.String())
	}
	if outputs[0] != outputs[1] {
		t.Errorf("two runs should produce the same report:\n%s\n%s", outputs[0], outputs[1])
	}
}

func TestGlobalEscape(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("global"), []string{})
	res := runAnalysis(t, quietConfig(lt.Config), lt, lt.Regions)
	expected := []unsafeescape.Entry{{
		AllocVar:  "table",
		AllocLine: 5,
		Filename:  "main.go",
		Pointers:  []unsafeescape.EscapeRecord{{Name: "table", Line: 12, Filename: "main.go"}},
	}}
	if diff := cmp.Diff(expected, res.Report.Entries); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	checkAnnotations(t, lt, res.Report)
}

func TestIgnoreDirective(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("ignore"), []string{})
	res := runAnalysis(t, quietConfig(lt.Config), lt, lt.Regions)
	if n := res.Report.NumEntries(); n != 0 {
		t.Errorf("ignored pointers should not be reported, got %v", res.Report.Entries)
	}
}

func TestMultipleFiles(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("multifile"), []string{"util.go"})
	local := unsafeescape.Entry{
		AllocVar:  "local",
		AllocLine: 8,
		Filename:  "main.go",
		Pointers:  []unsafeescape.EscapeRecord{{Name: "a", Line: 13, Filename: "main.go"}},
	}
	counter := unsafeescape.Entry{
		AllocVar:  "counter",
		AllocLine: 5,
		Filename:  "main.go",
		Pointers: []unsafeescape.EscapeRecord{
			{Name: "counter", Line: 6, Filename: "util.go"},
			{Name: "counter", Line: 8, Filename: "util.go"},
		},
	}

	t.Run("grouped", func(t *testing.T) {
		cfg := quietConfig(lt.Config)
		if !cfg.GroupByFile {
			t.Fatalf("test config should group by file")
		}
		res := runAnalysis(t, cfg, lt, lt.Regions)
		expected := []unsafeescape.FileGroup{
			{Filename: "main.go", Results: []unsafeescape.Entry{local}},
			{Filename: "util.go", Results: []unsafeescape.Entry{counter}},
		}
		if diff := cmp.Diff(expected, res.Report.Groups); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		checkAnnotations(t, lt, res.Report)
	})

	t.Run("flat", func(t *testing.T) {
		cfg := quietConfig(lt.Config)
		cfg.GroupByFile = false
		res := runAnalysis(t, cfg, lt, lt.Regions)
		if diff := cmp.Diff([]unsafeescape.Entry{local, counter}, res.Report.Entries); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestNoCandidatesNeedsNoEntryPoint(t *testing.T) {
	lp, err := analysis.LoadProgram(nil, "", analysis.DefaultBuildMode, false,
		[]string{filepath.Join(testDir("library"), "lib.go")})
	if err != nil {
		t.Fatalf("error loading library: %v", err)
	}
	cfg := quietConfig(config.NewDefault())

	res, err := unsafeescape.Analyze(cfg, lp, parseRegions(t, "other.go\n(1,9)\n"))
	if err != nil {
		t.Fatalf("regions matching nothing should give an empty report, got %v", err)
	}
	if res.Candidates != 0 || res.Report.NumEntries() != 0 {
		t.Errorf("expected an empty result, got %+v", res)
	}
	var buf bytes.Buffer
	if err := res.Report.WriteJSON(&buf, ""); err != nil || buf.String() != "[]\n" {
		t.Errorf("expected an empty JSON array, got %q (%v)", buf.String(), err)
	}

	_, err = unsafeescape.Analyze(cfg, lp, parseRegions(t, "lib.go\n(7,9)\n"))
	if !errors.Is(err, unsafeescape.ErrAnalysisUnavailable) {
		t.Errorf("pointers of a library need an entry point, got %v", err)
	}
}

func TestRegionsOnlyMatchLoadedFiles(t *testing.T) {
	lt := analysistest.LoadTest(t, testDir("shadow"), []string{})
	res := runAnalysis(t, quietConfig(lt.Config), lt, lt.Regions)
	if res.Candidates != 0 {
		t.Errorf("errors.go of the standard library is not a file of the program, got %d candidates",
			res.Candidates)
	}

	prog := lt.Program.Program
	funcs := lang.SortedFunctions(prog)
	all := unsafeescape.CollectCandidates(prog, funcs, lt.Regions, unsafeescape.NewValueArena(),
		unsafeescape.CollectOptions{})
	if len(all) == 0 {
		t.Fatalf("the region should designate errors.go of the dependencies")
	}
	rootFiles := unsafeescape.RootFiles(lt.Program)
	for _, c := range all {
		if rootFiles[c.PosFilename] {
			t.Errorf("candidate at %s:%d should not be in a loaded file", c.PosFilename, c.Line)
		}
	}
}
