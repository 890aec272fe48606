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

package escape

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/awslabs/argot-unsafe/analysis"
	"github.com/awslabs/argot-unsafe/analysis/config"
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"github.com/awslabs/argot-unsafe/analysis/unsafeescape"
	"github.com/awslabs/argot-unsafe/cmd/argot-unsafe/tools"
	"github.com/awslabs/argot-unsafe/internal/formatutil"
)

const usage = ` Report the pointers of unsafe regions that escape to allocations outside the regions.
Usage:
  argot-unsafe escape [options] <package path(s)> <locations file>
Examples:
  % argot-unsafe escape -o escapes.json ./cmd/server regions.txt
  % argot-unsafe escape -config config.yaml -group-by-file main.go regions.txt
`

// Flags represents the parsed flags for the escape analysis.
type Flags struct {
	tools.CommonFlags
	outputFile  string
	groupByFile bool
	refine      bool
	dedupKey    string
	pkgFilter   string
}

// NewFlags returns the parsed flags for the escape analysis with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("escape")
	outputFile := flags.FlagSet.String("o", "", "output file of the JSON report, overrides the config")
	groupByFile := flags.FlagSet.Bool("group-by-file", false, "group the report per unsafe source file")
	refine := flags.FlagSet.Bool("refine", false, "confirm every escape on the value-flow graph")
	dedupKey := flags.FlagSet.String("dedup-key", "",
		fmt.Sprintf("deduplication key of the escape records: %s or %s", config.DedupByNameLine, config.DedupByValue))
	pkgFilter := flags.FlagSet.String("pkg-filter", "", "only collect candidates in packages matching the regex")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	if common.FlagSet.NArg() < 2 {
		return Flags{}, fmt.Errorf("%w: expected package path(s) followed by a locations file", tools.ErrUsage)
	}
	switch *dedupKey {
	case "", config.DedupByNameLine, config.DedupByValue:
	default:
		return Flags{}, fmt.Errorf("%w: invalid -dedup-key %q", tools.ErrUsage, *dedupKey)
	}

	return Flags{
		CommonFlags: common,
		outputFile:  *outputFile,
		groupByFile: *groupByFile,
		refine:      *refine,
		dedupKey:    *dedupKey,
		pkgFilter:   *pkgFilter,
	}, nil
}

// Packages returns the package paths or files to load
func (f Flags) Packages() []string {
	args := f.FlagSet.Args()
	return args[:len(args)-1]
}

// LocationsFile returns the path of the locations file
func (f Flags) LocationsFile() string {
	args := f.FlagSet.Args()
	return args[len(args)-1]
}

// applyOverrides sets the options of cfg given on the command line
func (f Flags) applyOverrides(cfg *config.Config) {
	if f.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if f.outputFile != "" {
		cfg.OutputFile = f.outputFile
	}
	if f.groupByFile {
		cfg.GroupByFile = true
	}
	if f.refine {
		cfg.ValueFlowRefinement = true
	}
	if f.dedupKey != "" {
		cfg.DedupKey = f.dedupKey
	}
	if f.pkgFilter != "" {
		cfg.SetPkgFilter(f.pkgFilter)
	}
}

// Run runs the escape analysis with flags, and writes the report to the output file of the config.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	flags.applyOverrides(cfg)
	logger := config.NewLogGroup(cfg)

	logger.Infof(formatutil.Faint("argot-unsafe escape - " + analysis.Version))
	if cfg.SourceFile() != "" {
		logger.Debugf("Loaded config %s", cfg.SourceFile())
	}

	index, err := regions.Load(flags.LocationsFile())
	if err != nil {
		var parseErr *regions.ParseError
		if !errors.As(err, &parseErr) {
			return err
		}
		logger.Warnf("%s, keeping the %d regions read before", parseErr, index.Len())
	}
	logger.Infof(formatutil.Faint("Read %d unsafe regions in %d files"), index.Len(), len(index.Files()))

	logger.Infof(formatutil.Faint("Reading sources"))
	lp, err := analysis.LoadProgram(nil, "", analysis.DefaultBuildMode, flags.WithTest, flags.Packages())
	if err != nil {
		return fmt.Errorf("could not load program: %w", err)
	}

	start := time.Now()
	result, err := unsafeescape.Analyze(cfg, lp, index)
	if err != nil {
		return fmt.Errorf("escape analysis failed: %w", err)
	}
	logger.Infof(strings.Repeat("*", 80))
	logger.Infof("Analysis took %3.4f s", time.Since(start).Seconds())
	if result.Omitted > 0 {
		logger.Warnf("%d allocations omitted: their definition could not be located", result.Omitted)
	}
	if cfg.Verbose() {
		for _, e := range result.Report.AllEntries() {
			logger.Debugf("%s (%s:%d) escapes through %d pointers", e.AllocVar, e.Filename, e.AllocLine, len(e.Pointers))
		}
	}
	if n := result.Report.NumEntries(); n == 0 {
		logger.Infof("RESULT:\n\t\t%s", formatutil.Green("No escaping allocation detected ✓"))
	} else {
		logger.Infof("RESULT:\n\t\t%s", formatutil.Red(fmt.Sprintf("%d escaping allocations detected", n)))
	}

	if err := unsafeescape.WriteReportFile(cfg.OutputFile, result.Report, cfg.ReportIndent); err != nil {
		return err
	}
	logger.Infof("Report written to %s", formatutil.Bold(cfg.OutputFile))
	return nil
}
