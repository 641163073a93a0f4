package fshost

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 2

// Diff renders the line changes from before to after, with a header naming
// path. Unchanged runs are shortened to [diffContext] lines around each
// change. An empty string means nothing changed.
func (t DiffTheme) Diff(path, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder

	sb.WriteString(t.Header.Render("--- "+path) + "\n")
	sb.WriteString(t.Header.Render("+++ "+path) + "\n")

	for i, d := range diffs {
		text := splitLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range text {
				sb.WriteString(t.Delete.Render("-"+line) + "\n")
			}

		case diffmatchpatch.DiffInsert:
			for _, line := range text {
				sb.WriteString(t.Insert.Render("+"+line) + "\n")
			}

		case diffmatchpatch.DiffEqual:
			writeContext(&sb, text, i > 0, i < len(diffs)-1)
		}
	}

	return sb.String()
}

// writeContext writes the unchanged lines that border a change: the head
// when a change precedes them, the tail when one follows.
func writeContext(sb *strings.Builder, lines []string, afterChange, beforeChange bool) {
	var head, tail []string

	if afterChange {
		head = lines[:min(diffContext, len(lines))]
		lines = lines[len(head):]
	}

	if beforeChange {
		tail = lines[max(len(lines)-diffContext, 0):]
		lines = lines[:len(lines)-len(tail)]
	}

	for _, line := range head {
		sb.WriteString(" " + line + "\n")
	}

	if len(lines) > 0 {
		sb.WriteString("...\n")
	}

	for _, line := range tail {
		sb.WriteString(" " + line + "\n")
	}
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}

	return strings.Split(text, "\n")
}
