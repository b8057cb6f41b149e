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
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Listing line grammars for `go tool compile -S` output.
var (
	// Instruction line with a source location, e.g.
	//	0x0000 00000 (main.go:3)	TEXT	main.compute(SB), $0-0
	fullLocationLine = regexp.MustCompile(`^\s*(0[xX][0-9a-fA-F]+)?\s*(\d+)\s*\(([^:]+):(\d+)\)\s*([A-Z]+)(.*)`)
	// Same shape with the compiler's marker for instructions it cannot
	// attribute to a source line.
	unknownLocationLine = regexp.MustCompile(`^\s*(0[xX][0-9a-fA-F]+)?\s*(\d+)\s*\(<unknown line number>\)\s*([A-Z]+)(.*)`)
	// Function definition marker. Older toolchains emit TEXT "".name(SB),
	// newer ones TEXT pkg.name(SB); the leading quote/dot noise is skipped.
	functionDefMarker = regexp.MustCompile(`TEXT\s+["\.]*(\S+)\(SB\)`)
	// Characters in a function name that are not label-safe.
	labelUnsafeChars = regexp.MustCompile(`[().*]`)
	// Program counters are zero-padded in the listing; strip the padding so
	// a label declaration and a jump target spell the counter the same way.
	// At least one digit is always kept, so counter zero stays "0".
	pcLeadingZeros = regexp.MustCompile(`^0{0,4}(\d)`)
)

// stripPCZeros normalizes a program counter's digit string: up to four
// leading zeros are dropped. Declarations and jump targets both go through
// here so their spellings agree.
func stripPCZeros(pc string) string {
	return pcLeadingZeros.ReplaceAllString(pc, "$1")
}

// fragment is one line of the annotated listing. Label declarations carry
// their identifier so the prune pass can drop the unreferenced ones.
type fragment struct {
	text  string
	label string
}

// annotationPass holds the bookkeeping for one annotate call. A fresh value
// is created per call and never shared, so concurrent annotations of
// unrelated listings are safe.
type annotationPass struct {
	function   string         // current function, label-normalized
	collision  int            // collision count when the current function was defined
	collisions map[string]int // definitions seen per normalized name
	labels     map[string]bool
	usedLabels map[string]bool
	file       string // last .file emitted
	line       string // last .loc emitted
	fileIndex  int
	fragments  []fragment
}

func newAnnotationPass() *annotationPass {
	return &annotationPass{
		collisions: make(map[string]int),
		labels:     make(map[string]bool),
		usedLabels: make(map[string]bool),
	}
}

// annotate converts a raw compiler listing into normalized pseudo-assembly:
// program-counter labels are synthesized, raw numeric jump targets become
// symbolic references, redundant .file/.loc directives are suppressed, and
// labels nothing jumps to are pruned. Lines matching neither instruction
// grammar contribute nothing; malformed input is never an error.
func annotate(lines []string) string {
	pass := newAnnotationPass()
	for _, line := range lines {
		pass.scanLine(line)
	}
	kept := lo.Filter(pass.fragments, func(f fragment, _ int) bool {
		return f.label == "" || pass.usedLabels[f.label]
	})
	return strings.Join(lo.Map(kept, func(f fragment, _ int) string {
		return f.text
	}), "\n")
}

func (p *annotationPass) scanLine(raw string) {
	var pc, file, line, mnemonic, operands string
	if match := fullLocationLine.FindStringSubmatch(raw); match != nil {
		pc, file, line, mnemonic, operands = match[2], match[3], match[4], match[5], match[6]
	} else if match := unknownLocationLine.FindStringSubmatch(raw); match != nil {
		pc, mnemonic, operands = match[2], match[3], match[4]
	} else {
		return
	}

	if match := functionDefMarker.FindStringSubmatch(raw); match != nil {
		name := labelUnsafeChars.ReplaceAllString(match[1], "_")
		// Two distinct functions can normalize to the same name. A running
		// count per name keeps their label namespaces disjoint: the first
		// definition gets no suffix, later ones _1, _2, ...
		p.collision = p.collisions[name]
		p.collisions[name] = p.collision + 1
		p.function = name
	}

	if pc != "" {
		label := p.labelName(pc)
		if !p.labels[label] {
			p.labels[label] = true
			p.fragments = append(p.fragments, fragment{text: label + ":", label: label})
		}
	}
	if file != "" && file != p.file {
		p.fileIndex++
		p.file = file
		p.emit(fmt.Sprintf("\t.file %d %q", p.fileIndex, file))
	}
	if line != "" && line != p.line {
		p.line = line
		p.emit(fmt.Sprintf("\t.loc %d %s 0", p.fileIndex, line))
	}
	p.emit("\t" + mnemonic + resolveJump(p.function, p.collision, mnemonic, operands, p.usedLabels))
}

func (p *annotationPass) emit(text string) {
	p.fragments = append(p.fragments, fragment{text: text})
}

// labelName builds the pseudo-label marking a program counter inside the
// current function, e.g. main_compute_pc12.
func (p *annotationPass) labelName(pc string) string {
	return p.function + "_pc" + stripPCZeros(pc) + collisionSuffix(p.collision)
}

func collisionSuffix(collision int) string {
	if collision == 0 {
		return ""
	}
	return fmt.Sprintf("_%d", collision)
}
