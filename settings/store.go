package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"go.jacobcolvin.com/pathplease/style"
)

// ErrReadSettings and ErrWriteSettings wrap settings file failures.
var (
	ErrReadSettings  = errors.New("read settings")
	ErrWriteSettings = errors.New("write settings")
)

// Store is a [Source] backed by a YAML settings file and the environment.
//
// Values resolve in order: environment (PATHPLEASE_<KEY>, e.g.
// PATHPLEASE_AUTOADDONOPEN), settings file, [Default]. The file is read by
// [NewStore] and [Store.Reload]; [Store.Snapshot] never touches the disk.
// Safe for concurrent use.
type Store struct {
	v    *viper.Viper
	path string
	mu   sync.RWMutex
}

// NewStore creates a [Store] for the settings file at path. A missing file
// is not an error.
func NewStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault(key(KeyAutoAddOnOpen), def.AutoAddOnOpen)
	v.SetDefault(key(KeyAutoAddOnSave), def.AutoAddOnSave)
	v.SetDefault(key(KeyShowSkipNotifications), def.ShowSkipNotifications)
	v.SetDefault(key(KeyExcludePatterns), def.ExcludePatterns)
	v.SetDefault(key(KeyCommentStyles), map[string]any{})
	v.SetDefault(key(KeyPathFormat), string(def.PathFormat))
	v.SetDefault(key(KeyInsertPosition), string(def.InsertPosition))
	v.SetDefault(key(KeyEnableGitIntegration), def.EnableGitIntegration)

	s := &Store{v: v, path: path}

	err := s.Reload()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func key(k string) string {
	return Section + "." + k
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the settings file.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.v.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrReadSettings, s.path, err)
	}

	return nil
}

// Snapshot implements [Source]. Unknown enum values fall back to their
// defaults and malformed comment styles are ignored.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Default()
	out.AutoAddOnOpen = s.v.GetBool(key(KeyAutoAddOnOpen))
	out.AutoAddOnSave = s.v.GetBool(key(KeyAutoAddOnSave))
	out.ShowSkipNotifications = s.v.GetBool(key(KeyShowSkipNotifications))
	out.EnableGitIntegration = s.v.GetBool(key(KeyEnableGitIntegration))
	out.PathFormat, _ = ParsePathFormat(s.v.GetString(key(KeyPathFormat)))
	out.InsertPosition, _ = ParseInsertPosition(s.v.GetString(key(KeyInsertPosition)))

	if patterns := s.v.GetStringSlice(key(KeyExcludePatterns)); patterns != nil {
		out.ExcludePatterns = patterns
	}

	var styles map[string]style.CommentStyle

	err := s.v.UnmarshalKey(key(KeyCommentStyles), &styles)
	if err == nil && styles != nil {
		out.CommentStyles = styles
	}

	return out
}

// Update implements [Source]. It rewrites the settings file with key set to
// value, preserving every other entry, then reloads.
func (s *Store) Update(k string, value any) error {
	_, err := Default().Apply(k, value)
	if err != nil {
		return err
	}

	doc := map[string]any{}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("%w: %w", ErrReadSettings, err)
	default:
		err = yaml.Unmarshal(data, &doc)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadSettings, s.path, err)
		}

		if doc == nil {
			doc = map[string]any{}
		}
	}

	section, ok := doc[Section].(map[string]any)
	if !ok {
		section = map[string]any{}
	}

	section[k] = value
	doc[Section] = section

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0o755)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}

	err = os.WriteFile(s.path, out, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}

	return s.Reload()
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	return filepath.Join(dir, Section, "settings.yaml")
}
