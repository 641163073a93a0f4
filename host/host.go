package host

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidRange indicates an edit range that cannot be applied.
var ErrInvalidRange = errors.New("invalid range")

// Position is a zero-based line and byte offset within that line.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Edit replaces the text in Range with NewText. An empty range inserts and an
// empty NewText deletes.
type Edit struct {
	NewText string
	Range   Range
}

// Insert returns an [Edit] inserting text at pos.
func Insert(pos Position, text string) Edit {
	return Edit{Range: Range{Start: pos, End: pos}, NewText: text}
}

// Delete returns an [Edit] removing r.
func Delete(r Range) Edit {
	return Edit{Range: r}
}

// Replace returns an [Edit] replacing r with text.
func Replace(r Range, text string) Edit {
	return Edit{Range: r, NewText: text}
}

// Document is a read-only view of an open text buffer.
type Document interface {
	// Path is the file-system path, or a synthetic name such as
	// "Untitled-1" for unsaved buffers.
	Path() string
	// LanguageID is the host's language identifier, e.g. "typescript".
	LanguageID() string
	// LineCount is at least 1; an empty document has one empty line.
	LineCount() int
	// LineAt returns line i without its terminator.
	LineAt(i int) string
}

// Editor pairs a [Document] with the ability to edit it.
type Editor interface {
	Document() Document
	// Apply applies edits as one atomic change. Ranges refer to the
	// document before any of the edits are applied.
	Apply(ctx context.Context, edits ...Edit) error
}

// Status is the model of the persistent status indicator.
type Status struct {
	Text    string
	Tooltip string
	// Command is invoked when the indicator is activated.
	Command string
	Enabled bool
	Warning bool
}

// Command is a zero-argument user command.
type Command func(ctx context.Context)

// Host is the editor environment.
type Host interface {
	// ActiveEditor returns the focused editor, or false if there is none.
	ActiveEditor() (Editor, bool)
	// WorkspaceFolder returns the root folder containing path.
	WorkspaceFolder(path string) (string, bool)

	ShowInfo(msg string)
	ShowWarning(msg string)
	ShowError(msg string)
	// ShowOutput reveals the diagnostic log stream.
	ShowOutput()
	SetStatus(s Status)

	RegisterCommand(id string, fn Command) Disposable
	OnDidChangeActiveEditor(fn func(ctx context.Context, ed Editor)) Disposable
	OnDidSaveDocument(fn func(ctx context.Context, ed Editor)) Disposable
	OnDidChangeConfiguration(fn func(ctx context.Context, e ConfigurationChange)) Disposable
}

// ConfigurationChange describes which settings sections changed.
type ConfigurationChange interface {
	AffectsConfiguration(section string) bool
}

// Sections is a [ConfigurationChange] naming the changed sections.
type Sections []string

// AffectsConfiguration implements [ConfigurationChange]. A section is
// affected when it, a parent or a child changed.
func (s Sections) AffectsConfiguration(section string) bool {
	for _, changed := range s {
		if changed == section ||
			strings.HasPrefix(changed, section+".") ||
			strings.HasPrefix(section, changed+".") {
			return true
		}
	}

	return false
}
