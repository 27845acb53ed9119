// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import "github.com/sourcegraph/plagdetect/region"

// ASTRegion identifies where a single k-gram sits, both in k-gram
// space (the half-open [StartKgramIndex, EndKgramIndex) run) and in
// source space (Location). Data, when requested by the caller, is the
// substring of tokens the k-gram spans (§3).
type ASTRegion struct {
	File            *File
	StartKgramIndex int
	EndKgramIndex   int
	Location        region.Region
	Data            []string
}

// KgramRange returns the ASTRegion's k-gram index span as a Range.
func (a ASTRegion) KgramRange() region.Range {
	return region.Range{From: a.StartKgramIndex, To: a.EndKgramIndex}
}
