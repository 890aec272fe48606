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

import (
	"fmt"
)

// SiteBuckets maps allocation sites to the candidates that may point to them. Sites are kept in order of discovery,
// and the candidates of a bucket in the order they were added.
type SiteBuckets struct {
	order   []ValueID
	buckets map[ValueID][]Candidate
}

// NewSiteBuckets returns an empty map of buckets
func NewSiteBuckets() *SiteBuckets {
	return &SiteBuckets{buckets: map[ValueID][]Candidate{}}
}

// Add appends c to the bucket of site
func (b *SiteBuckets) Add(site ValueID, c Candidate) {
	if _, ok := b.buckets[site]; !ok {
		b.order = append(b.order, site)
	}
	b.buckets[site] = append(b.buckets[site], c)
}

// Sites returns the allocation sites in order of discovery
func (b *SiteBuckets) Sites() []ValueID {
	return append([]ValueID(nil), b.order...)
}

// Bucket returns the candidates that may point to site
func (b *SiteBuckets) Bucket(site ValueID) []Candidate {
	return b.buckets[site]
}

// Len returns the number of sites
func (b *SiteBuckets) Len() int {
	return len(b.order)
}

// InvertPointsTo queries the oracle for each candidate, and returns the candidates grouped by the allocation sites
// they may point to. Sites without a symbolic name are skipped: they cannot be reported.
// Any error of the oracle is returned.
func InvertPointsTo(candidates []Candidate, oracle Oracle, namer Namer) (*SiteBuckets, error) {
	res := NewSiteBuckets()
	named := map[ValueID]bool{}
	for _, c := range candidates {
		sites, err := oracle.PointsTo(c.Value)
		if err != nil {
			return nil, fmt.Errorf("points-to query failed for %s: %w", namer.PointerName(c.Value), err)
		}
		for _, site := range sites {
			isNamed, ok := named[site]
			if !ok {
				isNamed = namer.SiteName(site) != ""
				named[site] = isNamed
			}
			if !isNamed {
				continue
			}
			res.Add(site, c)
		}
	}
	return res, nil
}

// Refine keeps, for each site, the candidates that are reachable from the site according to the flow oracle. Sites
// without any remaining candidate are dropped.
func Refine(b *SiteBuckets, flow FlowOracle) (*SiteBuckets, error) {
	res := NewSiteBuckets()
	for _, site := range b.order {
		bucket := b.buckets[site]
		values := make([]ValueID, 0, len(bucket))
		seen := map[ValueID]bool{}
		for _, c := range bucket {
			if !seen[c.Value] {
				seen[c.Value] = true
				values = append(values, c.Value)
			}
		}
		reached, err := flow.Reachable(site, values)
		if err != nil {
			return nil, fmt.Errorf("value-flow query failed: %w", err)
		}
		keep := map[ValueID]bool{}
		for _, v := range reached {
			keep[v] = true
		}
		for _, c := range bucket {
			if keep[c.Value] {
				res.Add(site, c)
			}
		}
	}
	return res, nil
}
