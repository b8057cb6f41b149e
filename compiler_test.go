// Copyright 2025 goasm Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"reflect"
	"testing"
)

func TestNewCompileUnit_OutputPaths(t *testing.T) {
	listing := newCompileUnit("pkg/src.go", "go", false, "", "", "")
	if listing.Output != "pkg/src.o" {
		t.Errorf("listing output = %q, want %q", listing.Output, "pkg/src.o")
	}
	binary := newCompileUnit("pkg/src.go", "go", true, "", "", "")
	if binary.Output != "pkg/src" {
		t.Errorf("binary output = %q, want %q", binary.Output, "pkg/src")
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name   string
		binary bool
		want   []string
	}{
		{"listing", false, []string{"tool", "compile", "-o", "src.o", "-S", "src.go"}},
		{"binary", true, []string{"build", "-o", "src", "src.go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := newCompileUnit("src.go", "go", tt.binary, "", "", "")
			if got := unit.buildArgs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnviron_Overrides(t *testing.T) {
	unit := newCompileUnit("src.go", "go", false, "/opt/go", "arm64", "linux")
	env := unit.environ()
	for _, want := range []string{"GOROOT=/opt/go", "GOARCH=arm64", "GOOS=linux"} {
		found := false
		for _, entry := range env {
			if entry == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("environ() missing %q", want)
		}
	}
}

func TestEnviron_NoOverrides(t *testing.T) {
	unit := newCompileUnit("src.go", "go", false, "", "", "")
	for _, entry := range unit.environ() {
		if entry == "GOROOT=" || entry == "GOARCH=" || entry == "GOOS=" {
			t.Errorf("environ() injected empty override %q", entry)
		}
	}
}

func TestParseGoVersion(t *testing.T) {
	tests := []struct {
		out     string
		want    string
		wantErr bool
	}{
		{"go version go1.21.4 linux/amd64", "1.21.4", false},
		{"go version go1.4.1 darwin/amd64", "1.4.1", false},
		{"go version devel go1.23-4b4a0a358d linux/amd64", "1.23", false},
		{"not a version string", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			got, err := parseGoVersion(tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGoVersion(%q) error = %v, wantErr %v", tt.out, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseGoVersion(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}

func TestListingOnStdout(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"1.2", true},
		{"1.4", true},
		{"1.4.1", true},
		{"1.5", false},
		{"1.21.4", false},
		{"2.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := listingOnStdout(tt.version); got != tt.want {
				t.Errorf("listingOnStdout(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestListingStream(t *testing.T) {
	result := compileResult{Stdout: "out", Stderr: "err"}
	if got := result.listingStream("1.4.1"); got != "out" {
		t.Errorf("listingStream(1.4.1) = %q, want stdout", got)
	}
	if got := result.listingStream("1.21.4"); got != "err" {
		t.Errorf("listingStream(1.21.4) = %q, want stderr", got)
	}
}
