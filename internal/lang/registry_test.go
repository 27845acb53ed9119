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

package lang

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		path   string
		want   Variant
		wantOK bool
	}{
		{"Main.java", Java, true},
		{"solution.py", Python, true},
		{"list.c", C, true},
		{"list.h", C, true},
		{"notes.txt", Unknown, false},
		{"README", Unknown, false},
	}
	for _, c := range cases {
		got, ok := Detect(c.path)
		if got != c.want || ok != c.wantOK {
			t.Errorf("Detect(%q) = (%v, %v), want (%v, %v)", c.path, got, ok, c.want, c.wantOK)
		}
	}
}

func TestDetectWithContent(t *testing.T) {
	content := []byte("def solve(n):\n    return n + 1\n")
	got, ok := DetectWithContent("solution", content)
	if !ok || got != Python {
		t.Errorf("DetectWithContent() = (%v, %v), want (Python, true)", got, ok)
	}
}

func TestVariantString(t *testing.T) {
	cases := []struct {
		v    Variant
		want string
	}{
		{Java, "java"},
		{Python, "python"},
		{C, "c"},
		{Unknown, "unknown"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%v.String() = %q, want %q", c.v, got, c.want)
		}
	}
}
