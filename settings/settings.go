package settings

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.jacobcolvin.com/pathplease/style"
)

// Section is the namespace every option lives under.
const Section = "pathplease"

// Option keys, relative to [Section].
const (
	KeyAutoAddOnOpen         = "autoAddOnOpen"
	KeyAutoAddOnSave         = "autoAddOnSave"
	KeyShowSkipNotifications = "showSkipNotifications"
	KeyExcludePatterns       = "excludePatterns"
	KeyCommentStyles         = "commentStyles"
	KeyPathFormat            = "pathFormat"
	KeyInsertPosition        = "insertPosition"
	KeyEnableGitIntegration  = "enableGitIntegration"
)

// ErrInvalidOption indicates an unknown key or a value of the wrong type.
var ErrInvalidOption = errors.New("invalid option")

// PathFormat selects how the document path is rendered.
type PathFormat string

const (
	// PathRelative renders the path relative to the workspace root.
	PathRelative PathFormat = "relative"
	// PathAbsolute renders the absolute file-system path.
	PathAbsolute PathFormat = "absolute"
	// PathFilename renders the base name only.
	PathFilename PathFormat = "filename"
)

// PathFormats lists every [PathFormat].
func PathFormats() []string {
	return []string{string(PathRelative), string(PathAbsolute), string(PathFilename)}
}

// ParsePathFormat returns the [PathFormat] named s, or [PathRelative] with
// false when s is unknown.
func ParsePathFormat(s string) (PathFormat, bool) {
	if slices.Contains(PathFormats(), s) {
		return PathFormat(s), true
	}

	return PathRelative, false
}

// InsertPosition selects where a new path comment goes.
type InsertPosition string

const (
	// InsertTop inserts at the first line.
	InsertTop InsertPosition = "top"
	// InsertAfterShebang inserts below a leading "#!" line, if any.
	InsertAfterShebang InsertPosition = "after-shebang"
)

// InsertPositions lists every [InsertPosition].
func InsertPositions() []string {
	return []string{string(InsertTop), string(InsertAfterShebang)}
}

// ParseInsertPosition returns the [InsertPosition] named s, or [InsertTop]
// with false when s is unknown.
func ParseInsertPosition(s string) (InsertPosition, bool) {
	if slices.Contains(InsertPositions(), s) {
		return InsertPosition(s), true
	}

	return InsertTop, false
}

// Settings is a snapshot of the options under [Section].
type Settings struct {
	CommentStyles         map[string]style.CommentStyle `json:"commentStyles"         yaml:"commentStyles"`
	PathFormat            PathFormat                    `json:"pathFormat"            yaml:"pathFormat"`
	InsertPosition        InsertPosition                `json:"insertPosition"        yaml:"insertPosition"`
	ExcludePatterns       []string                      `json:"excludePatterns"       yaml:"excludePatterns"`
	AutoAddOnOpen         bool                          `json:"autoAddOnOpen"         yaml:"autoAddOnOpen"`
	AutoAddOnSave         bool                          `json:"autoAddOnSave"         yaml:"autoAddOnSave"`
	ShowSkipNotifications bool                          `json:"showSkipNotifications" yaml:"showSkipNotifications"`
	// EnableGitIntegration lets hosts treat the enclosing git repository as
	// the workspace root.
	EnableGitIntegration bool `json:"enableGitIntegration" yaml:"enableGitIntegration"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		AutoAddOnOpen:   true,
		ExcludePatterns: []string{},
		CommentStyles:   map[string]style.CommentStyle{},
		PathFormat:      PathRelative,
		InsertPosition:  InsertTop,
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	s.ExcludePatterns = slices.Clone(s.ExcludePatterns)
	s.CommentStyles = maps.Clone(s.CommentStyles)

	return s
}

// Source provides settings snapshots and persists single-option updates.
type Source interface {
	// Snapshot returns the current settings. Callers must not cache it
	// across operations.
	Snapshot() Settings
	// Update persists value for key (one of the Key constants).
	Update(key string, value any) error
}

// Keys lists every option key.
func Keys() []string {
	return []string{
		KeyAutoAddOnOpen,
		KeyAutoAddOnSave,
		KeyShowSkipNotifications,
		KeyExcludePatterns,
		KeyCommentStyles,
		KeyPathFormat,
		KeyInsertPosition,
		KeyEnableGitIntegration,
	}
}

// Apply returns a copy of s with key set to value.
func (s Settings) Apply(key string, value any) (Settings, error) {
	out := s.Clone()

	var ok bool

	switch key {
	case KeyAutoAddOnOpen:
		out.AutoAddOnOpen, ok = value.(bool)
	case KeyAutoAddOnSave:
		out.AutoAddOnSave, ok = value.(bool)
	case KeyShowSkipNotifications:
		out.ShowSkipNotifications, ok = value.(bool)
	case KeyEnableGitIntegration:
		out.EnableGitIntegration, ok = value.(bool)
	case KeyExcludePatterns:
		out.ExcludePatterns, ok = value.([]string)
	case KeyCommentStyles:
		out.CommentStyles, ok = value.(map[string]style.CommentStyle)
	case KeyPathFormat:
		var str string
		if str, ok = value.(string); ok {
			out.PathFormat, ok = ParsePathFormat(str)
		}
	case KeyInsertPosition:
		var str string
		if str, ok = value.(string); ok {
			out.InsertPosition, ok = ParseInsertPosition(str)
		}
	default:
		return s, fmt.Errorf("%w: unknown key %q", ErrInvalidOption, key)
	}

	if !ok {
		return s, fmt.Errorf("%w: %s: unexpected value %v (%T)", ErrInvalidOption, key, value, value)
	}

	return out, nil
}

// Memory is an in-memory [Source], used when no settings file is wanted.
//
// Create instances with [NewMemory].
type Memory struct {
	settings Settings
	mu       sync.RWMutex
}

// NewMemory creates a [Memory] source holding s.
func NewMemory(s Settings) *Memory {
	return &Memory{settings: s.Clone()}
}

// Snapshot implements [Source].
func (m *Memory) Snapshot() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.settings.Clone()
}

// Update implements [Source].
func (m *Memory) Update(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.settings.Apply(key, value)
	if err != nil {
		return err
	}

	m.settings = s

	return nil
}
