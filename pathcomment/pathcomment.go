package pathcomment

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/style"
)

// ScanLines is the number of leading lines searched for a path comment.
const ScanLines = 5

// Marker is the literal that introduces the path.
const Marker = "File:"

var patterns = []*regexp.Regexp{
	// Any common delimiter followed by the marker. Other delimiters are
	// recognised through the resolved style of the document.
	regexp.MustCompile(`(?i)^\s*(//|/\*|#|<!--|;;|%|--|\*|;|")\s*File:\s*.+$`),
	// Wrapped forms with the marker anywhere inside.
	regexp.MustCompile(`(?i)^\s*(/\*.*File:.*\*/)\s*$`),
	regexp.MustCompile(`(?i)^\s*(//.*File:.*)\s*$`),
	regexp.MustCompile(`(?i)^\s*(#.*File:.*)\s*$`),
	regexp.MustCompile(`(?i)^\s*(<!--.*File:.*-->)\s*$`),
}

// Lines is the part of a document the locator reads.
type Lines interface {
	LineCount() int
	LineAt(i int) string
}

// IsPathCommentLine reports whether line is a path comment. Styles extend the
// recognised delimiters, so comments written with a configured style are
// found as well.
func IsPathCommentLine(line string, styles ...style.CommentStyle) bool {
	line = strings.TrimSpace(line)

	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}

	for _, s := range styles {
		if s.Start == "" {
			continue
		}

		rest, ok := strings.CutPrefix(line, s.Start)
		if !ok {
			continue
		}

		rest = strings.TrimSpace(rest)
		if len(rest) > len(Marker) && strings.EqualFold(rest[:len(Marker)], Marker) {
			return true
		}
	}

	return false
}

// Locate returns the index of the first path comment among the first
// [ScanLines] lines of doc.
func Locate(doc Lines, styles ...style.CommentStyle) (int, bool) {
	n := min(ScanLines, doc.LineCount())
	for i := range n {
		if IsPathCommentLine(doc.LineAt(i), styles...) {
			return i, true
		}
	}

	return 0, false
}

// Format renders a path comment for path in style s. Trailing space is
// trimmed, so line comment styles produce "<start> File: <path>".
func Format(path string, s style.CommentStyle) string {
	return strings.TrimSpace(s.Start + " " + Marker + " " + path + " " + s.End)
}

// DisplayPath renders path according to format. Relative paths are taken
// from root when hasRoot is set and use forward slashes; without a root the
// path is returned unchanged.
func DisplayPath(path, root string, hasRoot bool, format settings.PathFormat) (string, error) {
	switch format {
	case settings.PathAbsolute:
		return path, nil

	case settings.PathFilename:
		return filepath.Base(path), nil

	case settings.PathRelative:
	}

	if !hasRoot {
		return path, nil
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", path, err)
	}

	return strings.ReplaceAll(rel, `\`, "/"), nil
}

// InsertLine returns the line a new path comment goes on: 1 when pos is
// [settings.InsertAfterShebang] and the first line is a shebang, else 0.
func InsertLine(doc Lines, pos settings.InsertPosition) int {
	if pos == settings.InsertAfterShebang && doc.LineCount() > 0 &&
		strings.HasPrefix(doc.LineAt(0), "#!") {
		return 1
	}

	return 0
}

// LineRange covers line i and its terminator, so deleting it shifts the
// following lines up by one.
func LineRange(i int) host.Range {
	return host.Range{
		Start: host.Position{Line: i},
		End:   host.Position{Line: i + 1},
	}
}

// TextRange covers the text of line i, excluding its terminator.
func TextRange(doc Lines, i int) host.Range {
	return host.Range{
		Start: host.Position{Line: i},
		End:   host.Position{Line: i, Character: len(doc.LineAt(i))},
	}
}
