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

package regions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWritesLocationsFile(t *testing.T) {
	dir := t.TempDir()
	src := "package p\n\nimport \"unsafe\"\n\nfunc size() uintptr {\n\treturn unsafe.Sizeof(0)\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "p.go"), []byte(src), 0o600); err != nil {
		t.Fatalf("could not write source: %v", err)
	}
	out := filepath.Join(t.TempDir(), "regions.txt")
	flags, err := NewFlags([]string{"-o", out, dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Run(flags); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("could not read output: %v", err)
	}
	if got := strings.TrimSpace(string(b)); got != "p.go\n(5,7)" {
		t.Errorf("unexpected locations file:\n%s", got)
	}
}

func TestNewFlagsExpectsOneDirectory(t *testing.T) {
	if _, err := NewFlags([]string{"a", "b"}); err == nil {
		t.Errorf("expected an error with two directories")
	}
}
