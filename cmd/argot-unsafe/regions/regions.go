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

// Package regions implements the front-end that generates a locations file from the unsafe code of a source tree.
package regions

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/argot-unsafe/analysis/config"
	"github.com/awslabs/argot-unsafe/analysis/regions"
	"github.com/awslabs/argot-unsafe/cmd/argot-unsafe/tools"
)

const usage = ` Print the unsafe regions of the Go files of a directory, in the locations file format.
Usage:
  argot-unsafe regions [options] <dir>
Examples:
  % argot-unsafe regions -o regions.txt .
`

// Flags represents the parsed flags of the regions command
type Flags struct {
	tools.CommonFlags
	outputFile string
}

// NewFlags returns the parsed flags of the regions command with args
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("regions")
	outputFile := flags.FlagSet.String("o", "", "output file, standard output if empty")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	if common.FlagSet.NArg() != 1 {
		return Flags{}, fmt.Errorf("%w: expected one directory", tools.ErrUsage)
	}
	return Flags{CommonFlags: common, outputFile: *outputFile}, nil
}

// Run scans the directory of flags and writes the locations file
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	logger := config.NewLogGroup(cfg)

	dir := flags.FlagSet.Arg(0)
	index, err := regions.ScanDir(dir)
	if err != nil {
		return fmt.Errorf("could not scan %s: %w", dir, err)
	}
	logger.Infof("Found %d unsafe regions in %d files of %s", index.Len(), len(index.Files()), dir)

	var w io.Writer = os.Stdout
	if flags.outputFile != "" {
		f, err := os.Create(flags.outputFile)
		if err != nil {
			return fmt.Errorf("could not create %s: %w", flags.outputFile, err)
		}
		defer f.Close()
		w = f
	}
	return index.Format(w)
}
