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

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config holds the options of the escape auditor.
// If some field is not defined in the config file, it keeps the value set by NewDefault.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp
}

// Options are the user-settable options of the analysis
type Options struct {
	// OutputFile is the file the escape report is written to. Relative paths are resolved from the working
	// directory of the tool, not from the config file.
	OutputFile string `yaml:"output-file"`

	// PkgFilter restricts candidate collection to the functions whose package path matches the filter. The filter
	// is a regex, or a prefix when it does not compile.
	PkgFilter string `yaml:"pkg-filter"`

	// DedupKey selects how escape records of one allocation are deduplicated: DedupByNameLine or DedupByValue
	DedupKey string `yaml:"dedup-key"`

	// ValueFlowRefinement keeps only the candidates that are reachable from the allocation in the value-flow
	// graph. Without it, escapes through infeasible paths may be reported.
	ValueFlowRefinement bool `yaml:"value-flow-refinement"`

	// GroupByFile groups the report entries per unsafe source file
	GroupByFile bool `yaml:"group-by-file"`

	// SkipUnnamedBlocks ignores blocks that carry no comment when collecting candidates
	SkipUnnamedBlocks bool `yaml:"skip-unnamed-blocks"`

	// PointerReflection enables the reflection support of the pointer analysis
	PointerReflection bool `yaml:"pointer-reflection"`

	// ReportIndent is the indentation of the JSON report. Empty means a compact report.
	ReportIndent string `yaml:"report-indent"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a config with the default options.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			OutputFile:          DefaultOutputFile,
			PkgFilter:           "",
			DedupKey:            DedupByNameLine,
			ValueFlowRefinement: false,
			GroupByFile:         false,
			SkipUnnamedBlocks:   true,
			PointerReflection:   false,
			ReportIndent:        DefaultReportIndent,
			LogLevel:            int(InfoLevel),
			SilenceWarn:         false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.sourceFile = filename
	return cfg, nil
}

// Parse reads a configuration from the yaml contents b. Options that are not set in b keep their default value.
func Parse(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}

	switch cfg.DedupKey {
	case "":
		cfg.DedupKey = DedupByNameLine
	case DedupByNameLine, DedupByValue:
	default:
		return nil, fmt.Errorf("invalid dedup-key %q: must be %q or %q", cfg.DedupKey, DedupByNameLine, DedupByValue)
	}

	cfg.compileFilters()
	return cfg, nil
}

func (c *Config) compileFilters() {
	c.pkgFilterRegex = nil
	if c.PkgFilter != "" {
		r, err := regexp.Compile(c.PkgFilter)
		if err == nil {
			c.pkgFilterRegex = r
		}
	}
}

// SetPkgFilter sets the package filter and recompiles it
func (c *Config) SetPkgFilter(filter string) {
	c.PkgFilter = filter
	c.compileFilters()
}

// SourceFile returns the file the config was loaded from, or an empty string for the default config
func (c Config) SourceFile() string {
	return c.sourceFile
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// DedupByValueHandle returns true when escape records should be deduplicated by the underlying value rather than by
// the name of the pointer.
func (c Config) DedupByValueHandle() bool {
	return c.DedupKey == DedupByValue
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
