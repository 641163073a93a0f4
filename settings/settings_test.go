package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/style"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	def := settings.Default()

	assert.True(t, def.AutoAddOnOpen)
	assert.False(t, def.AutoAddOnSave)
	assert.False(t, def.ShowSkipNotifications)
	assert.False(t, def.EnableGitIntegration)
	assert.Empty(t, def.ExcludePatterns)
	assert.Empty(t, def.CommentStyles)
	assert.Equal(t, settings.PathRelative, def.PathFormat)
	assert.Equal(t, settings.InsertTop, def.InsertPosition)
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	pf, ok := settings.ParsePathFormat("filename")
	assert.True(t, ok)
	assert.Equal(t, settings.PathFilename, pf)

	pf, ok = settings.ParsePathFormat("weird")
	assert.False(t, ok)
	assert.Equal(t, settings.PathRelative, pf)

	ip, ok := settings.ParseInsertPosition("after-shebang")
	assert.True(t, ok)
	assert.Equal(t, settings.InsertAfterShebang, ip)

	ip, ok = settings.ParseInsertPosition("bottom")
	assert.False(t, ok)
	assert.Equal(t, settings.InsertTop, ip)
}

func TestApply(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		value   any
		check   func(*testing.T, settings.Settings)
		key     string
		wantErr bool
	}{
		"toggle auto add": {
			key:   settings.KeyAutoAddOnOpen,
			value: false,
			check: func(t *testing.T, s settings.Settings) {
				t.Helper()
				assert.False(t, s.AutoAddOnOpen)
			},
		},
		"path format": {
			key:   settings.KeyPathFormat,
			value: "absolute",
			check: func(t *testing.T, s settings.Settings) {
				t.Helper()
				assert.Equal(t, settings.PathAbsolute, s.PathFormat)
			},
		},
		"comment styles": {
			key:   settings.KeyCommentStyles,
			value: map[string]style.CommentStyle{"jinja": {Start: "{#", End: "#}"}},
			check: func(t *testing.T, s settings.Settings) {
				t.Helper()
				assert.Equal(t, "{#", s.CommentStyles["jinja"].Start)
			},
		},
		"exclude patterns": {
			key:   settings.KeyExcludePatterns,
			value: []string{"**/vendor/**"},
			check: func(t *testing.T, s settings.Settings) {
				t.Helper()
				assert.Equal(t, []string{"**/vendor/**"}, s.ExcludePatterns)
			},
		},
		"unknown key": {
			key:     "colour",
			value:   true,
			wantErr: true,
		},
		"wrong type": {
			key:     settings.KeyAutoAddOnSave,
			value:   "yes",
			wantErr: true,
		},
		"unknown enum value": {
			key:     settings.KeyInsertPosition,
			value:   "bottom",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			before := settings.Default()

			got, err := before.Apply(tc.key, tc.value)
			if tc.wantErr {
				require.ErrorIs(t, err, settings.ErrInvalidOption)
				assert.Equal(t, settings.Default(), got)

				return
			}

			require.NoError(t, err)
			tc.check(t, got)
			assert.Equal(t, settings.Default(), before)
		})
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	mem := settings.NewMemory(settings.Default())

	snap := mem.Snapshot()
	snap.ExcludePatterns = append(snap.ExcludePatterns, "x")

	assert.Empty(t, mem.Snapshot().ExcludePatterns)

	require.NoError(t, mem.Update(settings.KeyAutoAddOnOpen, false))
	assert.False(t, mem.Snapshot().AutoAddOnOpen)

	require.Error(t, mem.Update("nope", 1))
}
