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
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// diagnosticLine matches compiler diagnostics of the form
// "path:line: message" or "path:line:col: message".
var diagnosticLine = regexp.MustCompile(`^[^:]+:\d+(:\d+)?:\s`)

// sourcePlaceholder stands in for the compiled file's path in extracted
// diagnostics.
const sourcePlaceholder = "<source>"

// extractDiagnostics returns the diagnostic lines found in a raw compiler
// stream, with every occurrence of the compiled file's relative path
// replaced by a generic placeholder, joined by newlines.
func extractDiagnostics(lines []string, source string) string {
	matched := lo.Filter(lines, func(line string, _ int) bool {
		return diagnosticLine.MatchString(line)
	})
	return strings.Join(lo.Map(matched, func(line string, _ int) string {
		return strings.ReplaceAll(line, source, sourcePlaceholder)
	}), "\n")
}
