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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/awslabs/argot-unsafe/analysis"
	"github.com/awslabs/argot-unsafe/cmd/argot-unsafe/escape"
	"github.com/awslabs/argot-unsafe/cmd/argot-unsafe/regions"
	"github.com/awslabs/argot-unsafe/cmd/argot-unsafe/tools"
)

const usage = `argot-unsafe: escape auditing of unsafe regions in Go programs
Usage:
  argot-unsafe [tool] [options] <args>
Tools:
  - escape: reports the allocations referenced from unsafe regions by pointers they do not contain
  - regions: prints the unsafe regions of a source tree as a locations file
Examples:
  Generate the locations file: argot-unsafe regions -o regions.txt .
  Run the escape analysis: argot-unsafe escape -o escapes.json ./cmd/server regions.txt`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "escape":
		flags, err := escape.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := escape.Run(flags); err != nil {
			errExit(err)
		}
	case "regions":
		flags, err := regions.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := regions.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

// errExit exits with status 2 on usage errors, and 1 on any other error
func errExit(err error) {
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	if errors.Is(err, tools.ErrUsage) {
		os.Exit(2)
	}
	os.Exit(1)
}
