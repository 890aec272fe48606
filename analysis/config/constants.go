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

const (
	// DefaultOutputFile is the name of the report file, written in the working directory
	DefaultOutputFile = "results.json"
	// DefaultReportIndent is the indentation of the JSON report
	DefaultReportIndent = "  "
	// DedupByNameLine deduplicates escape records on (pointer name, line, filename). Distinct values sharing a name
	// and a line are merged.
	DedupByNameLine = "name-line"
	// DedupByValue deduplicates escape records on (value, line, filename)
	DedupByValue = "value"
)
