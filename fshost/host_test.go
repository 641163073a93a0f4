package fshost_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/pathplease/annotator"
	"go.jacobcolvin.com/pathplease/fshost"
	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/stringtest"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestHostAnnotatesFiles(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		run  func(ctx context.Context, h *fshost.Host, path string) error
		file string
		text string
		want string
	}{
		"open adds": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				return h.Open(ctx, path)
			},
			file: "src/a.go",
			text: "package a\n",
			want: stringtest.JoinLF("// File: src/a.go", "package a", ""),
		},
		"add command": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				_, err := h.Activate(path)
				if err != nil {
					return err
				}

				return h.Execute(ctx, annotator.CommandAddPath)
			},
			file: "app.py",
			text: stringtest.JoinLF("# File: old.py", "print(1)", ""),
			want: stringtest.JoinLF("# File: app.py", "print(1)", ""),
		},
		"remove command": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				_, err := h.Activate(path)
				if err != nil {
					return err
				}

				return h.Execute(ctx, annotator.CommandRemovePath)
			},
			file: "lib/x.cpp",
			text: stringtest.JoinLF("// File: lib/x.cpp", "int x;", ""),
			want: stringtest.JoinLF("int x;", ""),
		},
		"crlf preserved": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				return h.Open(ctx, path)
			},
			file: "win.py",
			text: stringtest.JoinCRLF("print(1)", ""),
			want: stringtest.JoinCRLF("# File: win.py", "print(1)", ""),
		},
		"byte order mark stays first": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				return h.Open(ctx, path)
			},
			file: "a.py",
			text: "\ufeff" + stringtest.JoinLF("import os", ""),
			want: "\ufeff" + stringtest.JoinLF("# File: a.py", "import os", ""),
		},
		"byte order mark existing comment replaced": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				_, err := h.Activate(path)
				if err != nil {
					return err
				}

				err = h.Execute(ctx, annotator.CommandAddPath)
				if err != nil {
					return err
				}

				return h.Execute(ctx, annotator.CommandAddPath)
			},
			file: "b.py",
			text: "\ufeff" + stringtest.JoinLF("# File: old.py", "import os", ""),
			want: "\ufeff" + stringtest.JoinLF("# File: b.py", "import os", ""),
		},
		"byte order mark already annotated": {
			run: func(ctx context.Context, h *fshost.Host, path string) error {
				return h.Open(ctx, path)
			},
			file: "c.py",
			text: "\ufeff" + stringtest.JoinLF("# File: c.py", "import os", ""),
			want: "\ufeff" + stringtest.JoinLF("# File: c.py", "import os", ""),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			path := writeFile(t, filepath.Join(root, tc.file), tc.text)

			var out bytes.Buffer

			h, err := fshost.New(&out, fshost.WithRoots(root))
			require.NoError(t, err)

			m := annotator.New(h, settings.NewMemory(settings.Default()))
			t.Cleanup(m.Close)

			require.NoError(t, tc.run(t.Context(), h, path))
			assert.Equal(t, tc.want, readFile(t, path))
			assert.False(t, h.Errored(), out.String())
		})
	}
}

func TestHostDryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "main.go"), "package main\n")

	var out bytes.Buffer

	h, err := fshost.New(&out, fshost.WithRoots(root), fshost.WithDryRun(true))
	require.NoError(t, err)

	m := annotator.New(h, settings.NewMemory(settings.Default()))
	t.Cleanup(m.Close)

	require.NoError(t, h.Open(t.Context(), path))

	assert.Equal(t, "package main\n", readFile(t, path))
	assert.Contains(t, out.String(), "+// File: main.go\n")
	assert.Contains(t, out.String(), "--- "+path)
}

func TestHostWriteFailure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "gone.go"), "package gone\n")

	var out bytes.Buffer

	h, err := fshost.New(&out, fshost.WithRoots(root))
	require.NoError(t, err)

	ed, err := h.Activate(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	err = ed.Apply(t.Context(), host.Insert(host.Position{}, "// File: gone.go\n"))
	require.ErrorIs(t, err, fshost.ErrWriteDocument)
	assert.Equal(t, "package gone", ed.LineAt(0))
}

func TestHostApplyCanceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "a.go"), "package a\n")

	h, err := fshost.New(io.Discard, fshost.WithRoots(root))
	require.NoError(t, err)

	ed, err := h.Activate(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = ed.Apply(ctx, host.Insert(host.Position{}, "x\n"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "package a\n", readFile(t, path))
}

func TestHostLoad(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "notes.weird"), "hello\n")

	h, err := fshost.New(io.Discard, fshost.WithLanguage("python"))
	require.NoError(t, err)

	ed, err := h.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "python", ed.LanguageID())
	assert.Equal(t, path, ed.Path())

	_, err = h.Load(filepath.Join(root, "missing.go"))
	require.ErrorIs(t, err, fshost.ErrReadDocument)

	err = h.Open(t.Context(), filepath.Join(root, "missing.go"))
	require.ErrorIs(t, err, fshost.ErrReadDocument)

	_, ok := h.ActiveEditor()
	assert.False(t, ok)
}

func TestHostWorkspaceFolder(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	outer := filepath.Join(base, "ws")
	inner := filepath.Join(outer, "nested")
	repo := filepath.Join(base, "repo")

	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	tcs := map[string]struct {
		git      bool
		path     string
		wantRoot string
		wantOK   bool
	}{
		"most specific folder": {
			path:     filepath.Join(inner, "a.go"),
			wantRoot: inner,
			wantOK:   true,
		},
		"outer folder": {
			path:     filepath.Join(outer, "b.go"),
			wantRoot: outer,
			wantOK:   true,
		},
		"outside without git": {
			path: filepath.Join(repo, "pkg", "c.go"),
		},
		"outside with git": {
			git:      true,
			path:     filepath.Join(repo, "pkg", "c.go"),
			wantRoot: repo,
			wantOK:   true,
		},
		"no repository": {
			git:  true,
			path: filepath.Join(base, "loose", "d.go"),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := settings.Default()
			s.EnableGitIntegration = tc.git

			h, err := fshost.New(io.Discard,
				fshost.WithRoots(outer, inner),
				fshost.WithSettings(settings.NewMemory(s)),
			)
			require.NoError(t, err)

			root, ok := h.WorkspaceFolder(tc.path)
			assert.Equal(t, tc.wantOK, ok)

			if tc.wantOK {
				assert.Equal(t, tc.wantRoot, root)
			}
		})
	}
}

func TestHostNotifications(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	h, err := fshost.New(&out)
	require.NoError(t, err)

	h.ShowInfo("one")
	h.ShowWarning("two")
	assert.False(t, h.Errored())

	h.ShowError("three")
	assert.True(t, h.Errored())

	assert.Equal(t, stringtest.JoinLF("info: one", "warning: two", "error: three", ""), out.String())
}

func TestHostShowOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	h, err := fshost.New(&out, fshost.WithOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, "log line\n")

		return err
	}))
	require.NoError(t, err)

	h.ShowOutput()
	assert.Equal(t, "log line\n", out.String())

	bare, err := fshost.New(&out)
	require.NoError(t, err)

	bare.ShowOutput()
	assert.Equal(t, "log line\n", out.String())
}

func TestHostStatus(t *testing.T) {
	t.Parallel()

	var seen []host.Status

	h, err := fshost.New(io.Discard, fshost.WithStatusFunc(func(s host.Status) {
		seen = append(seen, s)
	}))
	require.NoError(t, err)

	src := settings.NewMemory(settings.Default())
	m := annotator.New(h, src)
	t.Cleanup(m.Close)

	assert.Equal(t, "PathPlease", h.Status().Text)

	require.NoError(t, h.Execute(t.Context(), annotator.CommandToggleAutoAdd))
	assert.Equal(t, "PathPlease OFF", h.Status().Text)
	assert.Len(t, seen, 2)

	assert.Equal(t, "PathPlease OFF", fshost.PlainTheme().RenderStatus(h.Status()))
}

func TestHostExecuteUnknown(t *testing.T) {
	t.Parallel()

	h, err := fshost.New(io.Discard)
	require.NoError(t, err)

	err = h.Execute(t.Context(), "nope")
	require.ErrorIs(t, err, fshost.ErrUnknownCommand)
}

func TestHostDispose(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "a.go"), "package a\n")

	h, err := fshost.New(io.Discard, fshost.WithRoots(root))
	require.NoError(t, err)

	var calls int

	d := h.OnDidChangeActiveEditor(func(context.Context, host.Editor) {
		calls++
	})

	require.NoError(t, h.Open(t.Context(), path))
	d.Dispose()
	require.NoError(t, h.Open(t.Context(), path))

	assert.Equal(t, 1, calls)
	require.ErrorIs(t, h.Execute(t.Context(), annotator.CommandAddPath), fshost.ErrUnknownCommand)
}
