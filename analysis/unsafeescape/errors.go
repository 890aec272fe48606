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

import "errors"

var (
	// ErrAnalysisUnavailable is returned when the pointer analysis cannot be run on the program. No report is produced.
	ErrAnalysisUnavailable = errors.New("points-to analysis unavailable")

	// ErrNotFound is returned when the defining instruction of an allocation site cannot be found. The allocation
	// is omitted from the report.
	ErrNotFound = errors.New("allocation definition not found")

	// ErrSessionClosed is returned when a closed session is queried
	ErrSessionClosed = errors.New("analysis session is closed")
)
