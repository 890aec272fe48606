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

package tools

import "regexp"

type errorHint struct {
	// context must match the error for any of the hints of the group to apply
	context *regexp.Regexp
	cases   []hintCase
	// fallback is returned when the context matches and no case does
	fallback string
}

type hintCase struct {
	pattern *regexp.Regexp
	hint    string
}

var errorHints = []errorHint{
	{
		context: regexp.MustCompile("could not load program"),
		cases: []hintCase{
			{
				pattern: regexp.MustCompile(`-: named files must be \.go files: -(\w)`),
				hint:    "flags go before the positional arguments: argot-unsafe escape [flags] <packages> <locations>",
			},
			{
				pattern: regexp.MustCompile("errors in loaded packages"),
				hint:    "the packages do not type check; the escape analysis only runs on programs that build",
			},
		},
		fallback: "check the package patterns or Go files given before the locations file",
	},
	{
		context:  regexp.MustCompile("no main/test packages to analyze"),
		fallback: "pointers are resolved from the entry points of the program; pass a main package, or use -with-test",
	},
	{
		context:  regexp.MustCompile("locations file"),
		fallback: "the last argument must be a locations file; generate one with `argot-unsafe regions <dir>`",
	},
}

// HintForErrorMessage returns a message that may help the user fix the problem reported by errMsg, or an empty
// string if the error is not a known one.
func HintForErrorMessage(errMsg string) string {
	for _, h := range errorHints {
		if !h.context.MatchString(errMsg) {
			continue
		}
		for _, c := range h.cases {
			if c.pattern.MatchString(errMsg) {
				return c.hint
			}
		}
		return h.fallback
	}
	return ""
}
