package annotator_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/pathplease/annotator"
	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/host/hosttest"
	"go.jacobcolvin.com/pathplease/log"
	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/stringtest"
	"go.jacobcolvin.com/pathplease/style"
)

type fixture struct {
	host     *hosttest.Host
	settings *settings.Memory
	manager  *annotator.Manager
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, configure func(*settings.Settings)) *fixture {
	t.Helper()

	s := settings.Default()
	if configure != nil {
		configure(&s)
	}

	f := &fixture{
		host:     hosttest.New("/proj"),
		settings: settings.NewMemory(s),
		logs:     &bytes.Buffer{},
	}

	logger := slog.New(log.NewHandler(f.logs, log.LevelDebug, log.FormatLogfmt))
	f.manager = annotator.New(f.host, f.settings, annotator.WithLogger(logger))
	t.Cleanup(f.manager.Close)

	return f
}

func (f *fixture) open(path, language, text string) *hosttest.Editor {
	ed := hosttest.NewEditor(path, language, text)
	f.host.SetActive(ed)

	return ed
}

func TestAddPath(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		configure func(*settings.Settings)
		path      string
		language  string
		text      string
		want      string
	}{
		"relative path in typescript": {
			path:     "/proj/src/a.ts",
			language: "typescript",
			text:     stringtest.JoinLF("export const a = 1", ""),
			want:     stringtest.JoinLF("// File: src/a.ts", "export const a = 1", ""),
		},
		"after shebang without shebang": {
			configure: func(s *settings.Settings) {
				s.InsertPosition = settings.InsertAfterShebang
			},
			path:     "/proj/src/a.ts",
			language: "typescript",
			text:     stringtest.JoinLF("export const a = 1", ""),
			want:     stringtest.JoinLF("// File: src/a.ts", "export const a = 1", ""),
		},
		"after shebang": {
			configure: func(s *settings.Settings) {
				s.InsertPosition = settings.InsertAfterShebang
			},
			path:     "/proj/script.sh",
			language: "bash",
			text:     stringtest.JoinLF("#!/bin/sh", "echo hi", ""),
			want:     stringtest.JoinLF("#!/bin/sh", "# File: script.sh", "echo hi", ""),
		},
		"shebang ignored at top": {
			path:     "/proj/script.sh",
			language: "bash",
			text:     stringtest.JoinLF("#!/bin/sh", ""),
			want:     stringtest.JoinLF("# File: script.sh", "#!/bin/sh", ""),
		},
		"lone shebang without terminator": {
			configure: func(s *settings.Settings) {
				s.InsertPosition = settings.InsertAfterShebang
			},
			path:     "/proj/script.sh",
			language: "bash",
			text:     "#!/bin/sh",
			want:     stringtest.JoinLF("#!/bin/sh", "# File: script.sh"),
		},
		"absolute path": {
			configure: func(s *settings.Settings) {
				s.PathFormat = settings.PathAbsolute
			},
			path:     "/proj/src/style.css",
			language: "css",
			text:     "body {}\n",
			want:     stringtest.JoinLF("/* File: /proj/src/style.css */", "body {}", ""),
		},
		"filename": {
			configure: func(s *settings.Settings) {
				s.PathFormat = settings.PathFilename
			},
			path:     "/proj/docs/index.html",
			language: "html",
			text:     "<html></html>\n",
			want:     stringtest.JoinLF("<!-- File: index.html -->", "<html></html>", ""),
		},
		"outside workspace": {
			path:     "/tmp/q.sql",
			language: "sql",
			text:     "select 1;\n",
			want:     stringtest.JoinLF("-- File: /tmp/q.sql", "select 1;", ""),
		},
		"custom style": {
			configure: func(s *settings.Settings) {
				s.CommentStyles = map[string]style.CommentStyle{"jinja": {Start: "{#", End: "#}"}}
			},
			path:     "/proj/base.j2",
			language: "jinja",
			text:     "<html>\n",
			want:     stringtest.JoinLF("{# File: base.j2 #}", "<html>", ""),
		},
		"empty document": {
			path:     "/proj/a.py",
			language: "python",
			text:     "",
			want:     stringtest.JoinLF("# File: a.py", ""),
		},
		"replaces existing comment in place": {
			path:     "/proj/src/b.ts",
			language: "typescript",
			text:     stringtest.JoinLF("// File: src/a.ts", "export const b = 1", ""),
			want:     stringtest.JoinLF("// File: src/b.ts", "export const b = 1", ""),
		},
		"replaces comment below shebang": {
			path:     "/proj/run.py",
			language: "python",
			text:     stringtest.JoinLF("#!/usr/bin/env python", "# File: old.py", "print()", ""),
			want:     stringtest.JoinLF("#!/usr/bin/env python", "# File: run.py", "print()", ""),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tc.configure)
			ed := f.open(tc.path, tc.language, tc.text)

			f.manager.AddPath(t.Context())

			assert.Equal(t, tc.want, ed.String())
			assert.Empty(t, f.host.Notifications())
		})
	}
}

func TestAddPathKeepsLineCount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ed := f.open("/proj/src/a.ts", "typescript", stringtest.JoinLF("// File: elsewhere.ts", "a", "b", ""))

	before := ed.LineCount()

	f.manager.AddPath(t.Context())
	f.manager.AddPath(t.Context())

	assert.Equal(t, before, ed.LineCount())
	assert.Equal(t, "// File: src/a.ts", ed.LineAt(0))
	assert.Equal(t, 1, ed.Edits)
}

func TestAddPathUnknownLanguage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ed := f.open("/proj/a.bf", "brainfuck", "+++\n")

	f.manager.AddPath(t.Context())

	assert.Equal(t, "+++\n", ed.String())
	assert.Empty(t, f.host.Notifications())
	assert.Contains(t, f.logs.String(), "no comment style available")
}

func TestAddPathApplyFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ed := f.open("/proj/a.go", "go", "package a\n")
	ed.Err = errors.New("disk full")

	f.manager.AddPath(t.Context())

	require.Len(t, f.host.Notifications(), 1)
	got := f.host.Notifications()[0]
	assert.Equal(t, hosttest.Error, got.Severity)
	assert.Contains(t, got.Message, "Failed to add path comment")
	assert.Contains(t, got.Message, "disk full")
	assert.Contains(t, f.logs.String(), "disk full")
}

func TestCommandsWithoutEditor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	f.manager.AddPath(t.Context())
	f.manager.RemovePath(t.Context())
	f.manager.RefreshPath(t.Context())

	assert.Equal(t, []hosttest.Notification{
		{Severity: hosttest.Error, Message: "No active editor found"},
		{Severity: hosttest.Error, Message: "No active editor found"},
	}, f.host.Notifications())
}

func TestRemovePath(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		text      string
		want      string
		wantNotif hosttest.Notification
	}{
		"removes whole line": {
			text:      stringtest.JoinLF("// File: a.go", "package a", ""),
			want:      stringtest.JoinLF("package a", ""),
			wantNotif: hosttest.Notification{Severity: hosttest.Info, Message: "Path comment removed"},
		},
		"removes from line four": {
			text:      stringtest.JoinLF("a", "b", "c", "d", "/* File: a.go */", "e"),
			want:      stringtest.JoinLF("a", "b", "c", "d", "e"),
			wantNotif: hosttest.Notification{Severity: hosttest.Info, Message: "Path comment removed"},
		},
		"nothing to remove": {
			text:      stringtest.JoinLF("package a", ""),
			want:      stringtest.JoinLF("package a", ""),
			wantNotif: hosttest.Notification{Severity: hosttest.Warning, Message: "No path comment found"},
		},
		"comment past the scan window": {
			text:      stringtest.JoinLF("a", "b", "c", "d", "e", "// File: a.go"),
			want:      stringtest.JoinLF("a", "b", "c", "d", "e", "// File: a.go"),
			wantNotif: hosttest.Notification{Severity: hosttest.Warning, Message: "No path comment found"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, nil)
			ed := f.open("/proj/a.go", "go", tc.text)

			f.manager.RemovePath(t.Context())

			assert.Equal(t, tc.want, ed.String())
			assert.Equal(t, []hosttest.Notification{tc.wantNotif}, f.host.Notifications())
		})
	}
}

func TestRemovePathOnAbsentDoesNotEdit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ed := f.open("/proj/a.go", "go", "package a\n")

	f.manager.RemovePath(t.Context())

	assert.Zero(t, ed.Edits)
}

func TestRefreshPath(t *testing.T) {
	t.Parallel()

	t.Run("replaces stale comment", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)
		ed := f.open("/proj/new.rb", "ruby", stringtest.JoinLF("puts 1", "# File: old.rb", ""))

		f.manager.RefreshPath(t.Context())

		assert.Equal(t, stringtest.JoinLF("# File: new.rb", "puts 1", ""), ed.String())
		assert.Equal(t, 2, ed.Edits)
		assert.Equal(t, []hosttest.Notification{
			{Severity: hosttest.Info, Message: "Path comment removed"},
		}, f.host.Notifications())
	})

	t.Run("adds when absent", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)
		ed := f.open("/proj/a.lua", "lua", "print(1)\n")

		f.manager.RefreshPath(t.Context())

		assert.Equal(t, stringtest.JoinLF("-- File: a.lua", "print(1)", ""), ed.String())
		assert.Empty(t, f.host.Notifications())
	})
}

func TestToggleAutoAdd(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.host.Execute(t.Context(), annotator.CommandToggleAutoAdd))
	assert.False(t, f.settings.Snapshot().AutoAddOnOpen)

	require.NoError(t, f.host.Execute(t.Context(), annotator.CommandToggleAutoAdd))
	assert.True(t, f.settings.Snapshot().AutoAddOnOpen)

	assert.Equal(t, []hosttest.Notification{
		{Severity: hosttest.Info, Message: "PathPlease auto-add disabled"},
		{Severity: hosttest.Info, Message: "PathPlease auto-add enabled"},
	}, f.host.Notifications())

	statuses := f.host.Statuses()
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Enabled)
	assert.Equal(t, "PathPlease OFF", statuses[1].Text)
	assert.True(t, statuses[1].Warning)
	assert.Equal(t, "PathPlease", statuses[2].Text)
}

type failingSource struct {
	settings.Source
}

func (failingSource) Update(string, any) error {
	return errors.New("read-only")
}

func TestToggleAutoAddFailure(t *testing.T) {
	t.Parallel()

	h := hosttest.New("/proj")
	m := annotator.New(h, failingSource{settings.NewMemory(settings.Default())})
	t.Cleanup(m.Close)

	m.ToggleAutoAdd(t.Context())

	assert.Equal(t, []hosttest.Notification{
		{Severity: hosttest.Error, Message: "Failed to toggle auto-add: read-only"},
	}, h.Notifications())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	on := annotator.StatusFor(settings.Default())
	assert.Equal(t, host.Status{
		Text:    "PathPlease",
		Tooltip: "PathPlease is active. Click to toggle auto-add.",
		Command: annotator.CommandToggleAutoAdd,
		Enabled: true,
	}, on)

	s := settings.Default()
	s.AutoAddOnOpen = false

	off := annotator.StatusFor(s)
	assert.False(t, off.Enabled)
	assert.True(t, off.Warning)
	assert.Equal(t, "PathPlease auto-add is disabled. Click to enable.", off.Tooltip)
}

func TestOpenEvent(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		configure func(*settings.Settings)
		path      string
		language  string
		text      string
		want      string
		wantLog   string
	}{
		"eligible document": {
			path:     "/proj/main.go",
			language: "go",
			text:     "package main\n",
			want:     stringtest.JoinLF("// File: main.go", "package main", ""),
		},
		"disabled": {
			configure: func(s *settings.Settings) {
				s.AutoAddOnOpen = false
			},
			path:     "/proj/main.go",
			language: "go",
			text:     "package main\n",
			want:     "package main\n",
		},
		"excluded": {
			configure: func(s *settings.Settings) {
				s.ExcludePatterns = []string{"**/gen/**"}
			},
			path:     "/proj/gen/x.go",
			language: "go",
			text:     "package gen\n",
			want:     "package gen\n",
			wantLog:  `reason="excluded by patterns"`,
		},
		"readme counts as excluded": {
			path:     "/proj/README.md",
			language: "markdown",
			text:     "# Title\n",
			want:     "# Title\n",
			wantLog:  `reason="excluded by patterns"`,
		},
		"lockfile": {
			path:     "/proj/package-lock.json",
			language: "json",
			text:     "{}\n",
			want:     "{}\n",
			wantLog:  "doesn't support comments",
		},
		"already annotated": {
			path:     "/proj/main.go",
			language: "go",
			text:     stringtest.JoinLF("// File: other.go", "package main", ""),
			want:     stringtest.JoinLF("// File: other.go", "package main", ""),
			wantLog:  `reason="path comment already exists"`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tc.configure)
			ed := hosttest.NewEditor(tc.path, tc.language, tc.text)

			f.host.Open(t.Context(), ed)

			assert.Equal(t, tc.want, ed.String())

			if tc.wantLog != "" {
				assert.Contains(t, f.logs.String(), tc.wantLog)
				assert.Contains(t, f.logs.String(), "level=DEBUG")
			}
		})
	}
}

func TestSkipNotificationsRaiseLogLevel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(s *settings.Settings) {
		s.ShowSkipNotifications = true
	})

	f.host.Open(t.Context(), hosttest.NewEditor("/proj/data.json", "json", "{}"))

	assert.Contains(t, f.logs.String(), `level=INFO msg="auto-process skipped" file=data.json`)
}

func TestSaveEvent(t *testing.T) {
	t.Parallel()

	t.Run("off by default", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)
		ed := hosttest.NewEditor("/proj/a.py", "python", "pass\n")

		f.host.Save(t.Context(), ed)

		assert.Equal(t, "pass\n", ed.String())
	})

	t.Run("adds when enabled", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(s *settings.Settings) {
			s.AutoAddOnSave = true
		})
		ed := hosttest.NewEditor("/proj/a.py", "python", "pass\n")

		f.host.Save(t.Context(), ed)

		assert.Equal(t, stringtest.JoinLF("# File: a.py", "pass", ""), ed.String())
	})

	t.Run("requires auto add on open", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(s *settings.Settings) {
			s.AutoAddOnSave = true
			s.AutoAddOnOpen = false
		})
		ed := hosttest.NewEditor("/proj/a.py", "python", "pass\n")

		f.host.Save(t.Context(), ed)

		assert.Equal(t, "pass\n", ed.String())
	})
}

func TestConfigurationEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.settings.Update(settings.KeyAutoAddOnOpen, false))

	f.host.ChangeConfiguration(t.Context(), "editor.fontSize")
	require.Len(t, f.host.Statuses(), 1)

	f.host.ChangeConfiguration(t.Context(), "pathplease.autoAddOnOpen")
	require.Len(t, f.host.Statuses(), 2)
	assert.Equal(t, "PathPlease OFF", f.host.Statuses()[1].Text)
}

func TestShowOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.NoError(t, f.host.Execute(t.Context(), annotator.CommandShowOutput))
	assert.Equal(t, 1, f.host.OutputShown())
}

func TestClose(t *testing.T) {
	t.Parallel()

	h := hosttest.New("/proj")
	m := annotator.New(h, settings.NewMemory(settings.Default()))

	assert.ElementsMatch(t, []string{
		annotator.CommandAddPath,
		annotator.CommandRemovePath,
		annotator.CommandToggleAutoAdd,
		annotator.CommandRefreshPath,
		annotator.CommandShowOutput,
	}, h.Commands())

	m.Close()
	m.Close()

	assert.Empty(t, h.Commands())

	ed := hosttest.NewEditor("/proj/a.go", "go", "package a\n")
	h.Open(context.Background(), ed)
	assert.Equal(t, "package a\n", ed.String())
}
