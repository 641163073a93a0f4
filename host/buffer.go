package host

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Buffer is an in-memory [Document] that can apply [Edit] values.
//
// Line terminators may be LF or CRLF; the first terminator found decides
// which one inserted text is normalised to. A leading UTF-8 byte order mark
// is not part of any line: positions and [Buffer.LineAt] ignore it, and
// [Buffer.Bytes] and [Buffer.String] put it back. Safe for concurrent use.
//
// Create instances with [NewBuffer].
type Buffer struct {
	path       string
	languageID string
	eol        string
	text       []byte
	mu         sync.RWMutex
	bom        bool
}

var utf8BOM = []byte("\ufeff")

// NewBuffer creates a [Buffer] holding a copy of text.
func NewBuffer(path, languageID string, text []byte) *Buffer {
	rest, bom := bytes.CutPrefix(text, utf8BOM)

	b := &Buffer{
		path:       path,
		languageID: languageID,
		text:       slices.Clone(rest),
		bom:        bom,
	}
	b.eol = detectEOL(b.text)

	return b
}

func detectEOL(text []byte) string {
	i := bytes.IndexByte(text, '\n')
	if i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}

	return "\n"
}

// Path implements [Document].
func (b *Buffer) Path() string {
	return b.path
}

// LanguageID implements [Document].
func (b *Buffer) LanguageID() string {
	return b.languageID
}

// EOL returns the line terminator used by the buffer.
func (b *Buffer) EOL() string {
	return b.eol
}

// BOM reports whether the content starts with a UTF-8 byte order mark.
func (b *Buffer) BOM() bool {
	return b.bom
}

// Bytes returns a copy of the buffer content, including any byte order mark.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.bom {
		return slices.Clone(b.text)
	}

	return slices.Concat(utf8BOM, b.text)
}

// String returns the buffer content, including any byte order mark.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// LineCount implements [Document].
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return bytes.Count(b.text, []byte{'\n'}) + 1
}

// LineAt implements [Document]. Out of range lines are empty.
func (b *Buffer) LineAt(i int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start, end, ok := b.lineBounds(i)
	if !ok {
		return ""
	}

	return strings.TrimSuffix(string(b.text[start:end]), "\r")
}

// lineBounds returns the offsets of line i, excluding its terminator.
func (b *Buffer) lineBounds(i int) (int, int, bool) {
	if i < 0 {
		return 0, 0, false
	}

	start := 0
	for range i {
		next := bytes.IndexByte(b.text[start:], '\n')
		if next < 0 {
			return 0, 0, false
		}

		start += next + 1
	}

	end := len(b.text)
	if next := bytes.IndexByte(b.text[start:], '\n'); next >= 0 {
		end = start + next
	}

	return start, end, true
}

// offset converts pos to a byte offset. Positions past the end of a line clamp
// to the line end (before any CR), and lines past the end of the document
// clamp to the end of the text.
func (b *Buffer) offset(pos Position) (int, error) {
	if pos.Line < 0 || pos.Character < 0 {
		return 0, fmt.Errorf("%w: negative position %d:%d", ErrInvalidRange, pos.Line, pos.Character)
	}

	start, end, ok := b.lineBounds(pos.Line)
	if !ok {
		return len(b.text), nil
	}

	if end > start && b.text[end-1] == '\r' {
		end--
	}

	return min(start+pos.Character, end), nil
}

// Apply applies edits atomically. Overlapping edits are rejected with
// [ErrInvalidRange] and leave the buffer unchanged.
func (b *Buffer) Apply(edits ...Edit) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	type span struct {
		text       string
		start, end int
	}

	spans := make([]span, 0, len(edits))

	for _, e := range edits {
		start, err := b.offset(e.Range.Start)
		if err != nil {
			return err
		}

		end, err := b.offset(e.Range.End)
		if err != nil {
			return err
		}

		if end < start {
			return fmt.Errorf("%w: end %d:%d before start %d:%d", ErrInvalidRange,
				e.Range.End.Line, e.Range.End.Character, e.Range.Start.Line, e.Range.Start.Character)
		}

		spans = append(spans, span{start: start, end: end, text: b.normalize(e.NewText)})
	}

	slices.SortStableFunc(spans, func(x, y span) int {
		return x.start - y.start
	})

	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return fmt.Errorf("%w: overlapping edits", ErrInvalidRange)
		}
	}

	var out bytes.Buffer

	last := 0
	for _, s := range spans {
		out.Write(b.text[last:s.start])
		out.WriteString(s.text)

		last = s.end
	}

	out.Write(b.text[last:])
	b.text = out.Bytes()

	return nil
}

func (b *Buffer) normalize(text string) string {
	if b.eol == "\n" {
		return text
	}

	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", b.eol)
}
