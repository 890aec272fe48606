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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. All the fields are options, nested under the top-level options key.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  output-file: escapes.json
	  pkg-filter: "github.com/example/.*"
	  dedup-key: value
	  group-by-file: true
	  value-flow-refinement: true

# Options

  - output-file: the file the JSON report is written to (default results.json)
  - pkg-filter: regex (or prefix) restricting which packages candidates are collected from
  - dedup-key: name-line (default) or value
  - value-flow-refinement: confirm every escape with a value-flow graph reachability query
  - group-by-file: group the report per unsafe source file
  - skip-unnamed-blocks: ignore blocks without a comment (default true)
  - pointer-reflection: model reflection in the pointer analysis
  - report-indent: indentation of the JSON report
  - log-level: 1 (errors) to 5 (trace)
  - silence-warn: suppress warnings
*/
package config
