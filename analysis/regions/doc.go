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
Package regions indexes the unsafe regions of a program: source files paired with inclusive line ranges.

A region descriptor file is a sequence of blocks. Each block starts with a line holding a filename and is followed by
zero or more lines of the form (start,end):

	pkg/mem/copy.go
	(12,30)
	(45,47)
	pkg/mem/view.go
	(8,19)

Use [Parse] or [Load] to build an [Index] from a descriptor file, and [ScanDir] to compute the descriptor of a source
tree from the functions that reference package unsafe.
*/
package regions
