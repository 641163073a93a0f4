// Package stringtest builds document text for tests.
package stringtest

import (
	"fmt"
	"strings"
)

// JoinLF joins lines with LF terminators. A trailing "" yields a trailing
// newline.
//
//	stringtest.JoinLF("// File: a.go", "package a", "") // "// File: a.go\npackage a\n"
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}

// JoinCRLF joins lines with CRLF terminators.
func JoinCRLF(ss ...string) string {
	return strings.Join(ss, "\r\n")
}

// Filler returns n distinct placeholder lines ("line 1", "line 2", ...) that
// never look like a path comment.
func Filler(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}

	return lines
}

// Input strips one leading and one trailing newline from s and removes the
// indentation common to all non-blank lines, so documents can be written as
// indented raw strings.
func Input(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")

	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false

			continue
		}

		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
		}
	}

	return strings.Join(lines, "\n")
}
