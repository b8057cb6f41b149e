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

// jumpPrefixes identifies control-transfer mnemonics across the
// architectures the Go assembler targets: x86 JMP/Jcc, ARM and RISC-V
// branch families, ARM64 CBZ/CBNZ and TBZ/TBNZ, s390x compare-and-branch.
// Every control-transfer mnemonic in the listing starts with one of these,
// and no non-jump mnemonic with a bare decimal operand does.
var jumpPrefixes = []string{"j", "b", "cb", "tb", "cmpb", "cmpub"}

// trailingTarget matches a bare decimal as the final operand. Only jump
// mnemonics treat it as a program-counter target; for anything else it is
// an ordinary immediate and stays untouched.
var trailingTarget = regexp.MustCompile(`(\s+)(\d+)(\s*)$`)

// isJumpMnemonic reports whether a mnemonic transfers control, by
// case-insensitive prefix match.
func isJumpMnemonic(mnemonic string) bool {
	lower := strings.ToLower(mnemonic)
	return lo.SomeBy(jumpPrefixes, func(prefix string) bool {
		return strings.HasPrefix(lower, prefix)
	})
}

// resolveJump rewrites the trailing numeric target of a jump instruction
// into a pseudo-label reference and records that label as used. Operands
// come back unchanged when the instruction is not a jump or has no numeric
// target; the whitespace around the target is preserved exactly.
func resolveJump(function string, collision int, mnemonic, operands string, usedLabels map[string]bool) string {
	match := trailingTarget.FindStringSubmatch(operands)
	if match == nil || !isJumpMnemonic(mnemonic) {
		return operands
	}
	label := function + "_pc" + stripPCZeros(match[2]) + collisionSuffix(collision)
	usedLabels[label] = true
	return operands[:len(operands)-len(match[0])] + match[1] + label + match[3]
}
