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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/asmfmt"
	"github.com/spf13/cobra"
)

var verbose bool

var command = &cobra.Command{
	Use:  "goasm source [-o output]",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.PersistentFlags().GetString("output")
		binary, _ := cmd.PersistentFlags().GetBool("binary")
		format, _ := cmd.PersistentFlags().GetBool("format")
		goBinary, _ := cmd.PersistentFlags().GetString("go")
		goroot, _ := cmd.PersistentFlags().GetString("goroot")
		target, _ := cmd.PersistentFlags().GetString("target")
		targetOS, _ := cmd.PersistentFlags().GetString("target-os")

		unit := newCompileUnit(args[0], goBinary, binary, goroot, target, targetOS)
		if err := run(unit, output, format); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// run drives the pipeline: compile, select the listing stream for the
// toolchain version, surface diagnostics on stderr, annotate the listing
// and write it out. The stream not carrying the listing is discarded.
func run(unit compileUnit, output string, format bool) error {
	result := unit.compile()
	if unit.Binary {
		if result.Err != nil {
			if result.Stderr != "" {
				return errors.New(strings.TrimSpace(result.Stderr))
			}
			return result.Err
		}
		return nil
	}

	version, err := unit.goVersion()
	if err != nil {
		return err
	}
	lines := strings.Split(result.listingStream(version), "\n")
	if diagnostics := extractDiagnostics(lines, unit.Source); diagnostics != "" {
		_, _ = fmt.Fprintln(os.Stderr, diagnostics)
	}
	if result.Err != nil {
		return fmt.Errorf("failed to compile %v", unit.Source)
	}

	listing := annotate(lines)
	if format {
		formatted, err := asmfmt.Format(strings.NewReader(listing))
		if err != nil {
			return err
		}
		listing = strings.TrimRight(string(formatted), "\n")
	}
	if output == "" {
		fmt.Println(listing)
		return nil
	}
	return os.WriteFile(output, []byte(listing+"\n"), 0o644)
}

func init() {
	command.PersistentFlags().StringP("output", "o", "", "write the annotated listing to this file instead of stdout")
	command.PersistentFlags().Bool("binary", false, "build a binary instead of producing an annotated listing")
	command.PersistentFlags().Bool("format", false, "format the annotated listing with asmfmt")
	command.PersistentFlags().String("go", "go", "compiler driver to invoke")
	command.PersistentFlags().String("goroot", "", "GOROOT override for the invoked compiler")
	command.PersistentFlags().StringP("target", "t", "", "target architecture (GOARCH override)")
	command.PersistentFlags().String("target-os", "", "target operating system (GOOS override)")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, increase verbosity level")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
