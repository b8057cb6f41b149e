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
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
)

// compileUnit describes one invocation of the Go compiler.
type compileUnit struct {
	Source   string // Go source file to compile
	Output   string // object or binary path
	Binary   bool   // build a binary instead of an assembly listing
	GoBinary string // compiler driver, normally "go"
	GoRoot   string // optional GOROOT override
	Target   string // optional GOARCH override
	TargetOS string // optional GOOS override
}

func newCompileUnit(source string, goBinary string, binary bool, goroot, target, targetOS string) compileUnit {
	sourceExt := filepath.Ext(source)
	noExtSourcePath := source[:len(source)-len(sourceExt)]
	output := noExtSourcePath + ".o"
	if binary {
		output = noExtSourcePath
	}
	return compileUnit{
		Source:   source,
		Output:   output,
		Binary:   binary,
		GoBinary: goBinary,
		GoRoot:   goroot,
		Target:   target,
		TargetOS: targetOS,
	}
}

// buildArgs assembles the compiler arguments for the requested output kind:
// an assembly listing via `go tool compile -S`, or a plain binary build.
func (u *compileUnit) buildArgs() []string {
	if u.Binary {
		return []string{"build", "-o", u.Output, u.Source}
	}
	return []string{"tool", "compile", "-o", u.Output, "-S", u.Source}
}

// environ returns the process environment with the unit's toolchain
// overrides applied.
func (u *compileUnit) environ() []string {
	env := os.Environ()
	if u.GoRoot != "" {
		env = append(env, "GOROOT="+u.GoRoot)
	}
	if u.Target != "" {
		env = append(env, "GOARCH="+u.Target)
	}
	if u.TargetOS != "" {
		env = append(env, "GOOS="+u.TargetOS)
	}
	return env
}

// compileResult carries both raw output streams of a compiler run. The
// streams are kept separate because which one holds the listing depends on
// the toolchain version.
type compileResult struct {
	Stdout string
	Stderr string
	Err    error
}

// compile runs the compiler. A non-zero exit is not fatal here: the
// captured streams still carry the diagnostics the caller extracts.
func (u *compileUnit) compile() compileResult {
	args := u.buildArgs()
	if verbose {
		_, _ = fmt.Fprintf(os.Stderr, "Running %v\n", append([]string{u.GoBinary}, args...))
	}
	cmd := exec.Command(u.GoBinary, args...)
	cmd.Env = u.environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return compileResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

var (
	goVersionPattern = regexp.MustCompile(`go(\d+(?:\.\d+)*)`)
	goMinorVersion   = regexp.MustCompile(`^1\.(\d+)`)
)

// goVersion probes the toolchain version ("1.21.4") reported by the
// compiler driver.
func (u *compileUnit) goVersion() (string, error) {
	out, err := runCommand(u.GoBinary, "version")
	if err != nil {
		return "", err
	}
	return parseGoVersion(out)
}

func parseGoVersion(out string) (string, error) {
	match := goVersionPattern.FindStringSubmatch(out)
	if match == nil {
		return "", fmt.Errorf("failed to parse go version from %q", out)
	}
	return match[1], nil
}

// listingOnStdout reports whether the toolchain prints the -S listing on
// stdout. go1.4 and older did; every later toolchain prints it on stderr.
func listingOnStdout(version string) bool {
	match := goMinorVersion.FindStringSubmatch(version)
	if match == nil {
		return false
	}
	minor, err := strconv.Atoi(match[1])
	if err != nil {
		return false
	}
	return minor <= 4
}

// listingStream selects the stream carrying the assembly listing for the
// given toolchain version.
func (r compileResult) listingStream(version string) string {
	if listingOnStdout(version) {
		return r.Stdout
	}
	return r.Stderr
}

// runCommand runs a command and extracts its output.
func runCommand(name string, arg ...string) (string, error) {
	if verbose {
		_, _ = fmt.Fprintf(os.Stderr, "Running %v\n", append([]string{name}, arg...))
	}
	cmd := exec.Command(name, arg...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return "", errors.New(string(output))
		}
		return "", err
	}
	return string(output), nil
}
