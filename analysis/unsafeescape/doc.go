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
Package unsafeescape finds the pointers that are created or used inside unsafe regions of a program and that reference
memory allocated outside those regions.

The analysis proceeds in the following steps:
  - candidate collection: every pointer-like value produced or used by an instruction located in an unsafe region is
    a candidate (see [CollectCandidates]);
  - points-to resolution: a [Session] runs the pointer analysis once for all the candidates and answers
    points-to queries;
  - inversion: the points-to sets are inverted into allocation sites, each with the bucket of candidates that may
    point to it (see [InvertPointsTo]), optionally refined by value-flow reachability (see [Refine]);
  - location: each allocation site is mapped to its defining instruction (see [Locator]);
  - filtering: candidates in the same block as the allocation, or in the same unsafe region as the allocation, are
    not escapes (see [FilterEscapes]).

[Analyze] runs all the steps and builds a [Report].
*/
package unsafeescape
