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
Package escape implements the front-end to the escape auditor, which reports the pointers used inside unsafe regions
that reference memory allocated outside of those regions.

Usage:

	argot-unsafe escape [flags] <package path(s)> <locations file>

The locations file lists the unsafe regions, as produced by `argot-unsafe regions`. The flags are:

	-config path        a path to the configuration file

	-o file             the file the JSON report is written to, overrides the config

	-group-by-file      group the report per unsafe source file

	-refine             confirm every escape on the value-flow graph

	-dedup-key key      name-line or value

	-pkg-filter regex   only collect candidates in the packages matching the regex

	-verbose=false      setting verbose mode, overrides config file options if set
*/
package escape
