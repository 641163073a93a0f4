package fshost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/settings"
)

// Sentinel errors for document access.
var (
	ErrReadDocument   = errors.New("read document")
	ErrWriteDocument  = errors.New("write document")
	ErrUnknownCommand = errors.New("unknown command")
)

// Host is a [host.Host] whose documents are files on disk.
//
// Handlers run on the goroutine that raises the event. Use a [Dispatcher]
// when events come from more than one goroutine. Safe for concurrent use.
//
// Create instances with [New].
type Host struct {
	out      io.Writer
	log      *slog.Logger
	settings settings.Source
	output   func(w io.Writer) error
	onStatus func(host.Status)
	active   *Editor
	commands map[string]host.Command
	language string
	roots    []string
	open     handlers[host.Editor]
	save     handlers[host.Editor]
	config   handlers[host.ConfigurationChange]
	status   host.Status
	theme    Theme
	mu       sync.Mutex
	dryRun   bool
	errored  atomic.Bool
}

// Option configures a [Host].
type Option func(*Host)

// WithRoots sets the workspace folders. Relative roots are resolved against
// the working directory.
func WithRoots(roots ...string) Option {
	return func(h *Host) {
		h.roots = roots
	}
}

// WithSettings gives the host access to settings it consumes itself, such
// as git integration.
func WithSettings(src settings.Source) Option {
	return func(h *Host) {
		h.settings = src
	}
}

// WithDryRun prints edits as diffs instead of writing files.
func WithDryRun(dryRun bool) Option {
	return func(h *Host) {
		h.dryRun = dryRun
	}
}

// WithLanguage overrides language detection for every document.
func WithLanguage(id string) Option {
	return func(h *Host) {
		h.language = id
	}
}

// WithTheme sets the [Theme] used for notifications, status and diffs.
func WithTheme(t Theme) Option {
	return func(h *Host) {
		h.theme = t
	}
}

// WithOutput sets the function [Host.ShowOutput] uses to write the
// diagnostic log.
func WithOutput(fn func(w io.Writer) error) Option {
	return func(h *Host) {
		h.output = fn
	}
}

// WithStatusFunc registers fn to observe every status update.
func WithStatusFunc(fn func(host.Status)) Option {
	return func(h *Host) {
		h.onStatus = fn
	}
}

// WithLogger sets the logger for host diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// New creates a [Host] printing notifications and diffs to out. Without
// [WithRoots] the working directory is the only workspace folder.
func New(out io.Writer, opts ...Option) (*Host, error) {
	h := &Host{
		out:      out,
		log:      slog.New(slog.DiscardHandler),
		settings: settings.NewMemory(settings.Default()),
		commands: map[string]host.Command{},
		theme:    PlainTheme(),
	}

	for _, opt := range opts {
		opt(h)
	}

	if len(h.roots) == 0 {
		h.roots = []string{"."}
	}

	roots := make([]string, 0, len(h.roots))

	for _, r := range h.roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("workspace folder %q: %w", r, err)
		}

		roots = append(roots, abs)
	}

	// Most specific folder first.
	slices.SortFunc(roots, func(a, b string) int {
		return len(b) - len(a)
	})

	h.roots = roots

	return h, nil
}

// Load reads the document at path into an [Editor] without raising events.
func (h *Host) Load(path string) (*Editor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDocument, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDocument, err)
	}

	lang := h.language
	if lang == "" {
		lang = DetectLanguage(abs, data)
	}

	return &Editor{
		Buffer: host.NewBuffer(abs, lang, data),
		host:   h,
	}, nil
}

// Activate loads path and makes it the active editor without raising the
// active-editor event.
func (h *Host) Activate(path string) (*Editor, error) {
	ed, err := h.Load(path)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.active = ed
	h.mu.Unlock()

	return ed, nil
}

// Open activates path and raises the active-editor event.
func (h *Host) Open(ctx context.Context, path string) error {
	ed, err := h.Activate(path)
	if err != nil {
		return err
	}

	h.log.Debug("document opened",
		slog.String("path", ed.Path()),
		slog.String("language", ed.LanguageID()),
	)
	h.open.fire(ctx, ed)

	return nil
}

// Save raises the save event for path. The active editor is unchanged.
func (h *Host) Save(ctx context.Context, path string) error {
	ed, err := h.Load(path)
	if err != nil {
		return err
	}

	h.log.Debug("document saved", slog.String("path", ed.Path()))
	h.save.fire(ctx, ed)

	return nil
}

// ChangeConfiguration raises the configuration event for sections.
func (h *Host) ChangeConfiguration(ctx context.Context, sections ...string) {
	h.config.fire(ctx, host.Sections(sections))
}

// Execute runs the command registered as id.
func (h *Host) Execute(ctx context.Context, id string) error {
	h.mu.Lock()
	fn, ok := h.commands[id]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	fn(ctx)

	return nil
}

// Errored reports whether an error notification has been shown.
func (h *Host) Errored() bool {
	return h.errored.Load()
}

// Status returns the last status set.
func (h *Host) Status() host.Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.status
}

// Theme returns the host's [Theme].
func (h *Host) Theme() Theme {
	return h.theme
}

// ActiveEditor implements [host.Host].
func (h *Host) ActiveEditor() (host.Editor, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active == nil {
		return nil, false
	}

	return h.active, true
}

// WorkspaceFolder implements [host.Host]. The most specific configured
// folder containing path wins. When git integration is enabled, a path
// outside every folder falls back to its enclosing repository.
func (h *Host) WorkspaceFolder(path string) (string, bool) {
	for _, root := range h.roots {
		if within(root, path) {
			return root, true
		}
	}

	if h.settings.Snapshot().EnableGitIntegration {
		return gitRoot(filepath.Dir(path))
	}

	return "", false
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// gitRoot returns the nearest ancestor of dir containing a ".git" entry.
func gitRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// ShowInfo implements [host.Host].
func (h *Host) ShowInfo(msg string) {
	h.println(h.theme.Info.Render("info:") + " " + msg)
}

// ShowWarning implements [host.Host].
func (h *Host) ShowWarning(msg string) {
	h.println(h.theme.Warning.Render("warning:") + " " + msg)
}

// ShowError implements [host.Host].
func (h *Host) ShowError(msg string) {
	h.errored.Store(true)
	h.println(h.theme.Error.Render("error:") + " " + msg)
}

func (h *Host) println(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, line+"\n")
	if err != nil {
		h.log.Warn("write notification", slog.Any("err", err))
	}
}

// ShowOutput implements [host.Host].
func (h *Host) ShowOutput() {
	if h.output == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.output(h.out)
	if err != nil {
		h.log.Warn("show output", slog.Any("err", err))
	}
}

// SetStatus implements [host.Host].
func (h *Host) SetStatus(s host.Status) {
	h.mu.Lock()
	h.status = s
	fn := h.onStatus
	h.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// RegisterCommand implements [host.Host].
func (h *Host) RegisterCommand(id string, fn host.Command) host.Disposable {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands[id] = fn

	return host.DisposeFunc(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.commands, id)
	})
}

// OnDidChangeActiveEditor implements [host.Host].
func (h *Host) OnDidChangeActiveEditor(fn func(context.Context, host.Editor)) host.Disposable {
	return h.open.add(fn)
}

// OnDidSaveDocument implements [host.Host].
func (h *Host) OnDidSaveDocument(fn func(context.Context, host.Editor)) host.Disposable {
	return h.save.add(fn)
}

// OnDidChangeConfiguration implements [host.Host].
func (h *Host) OnDidChangeConfiguration(fn func(context.Context, host.ConfigurationChange)) host.Disposable {
	return h.config.add(fn)
}

// handlers is a list of event handlers, in registration order.
type handlers[T any] struct {
	fns  map[int]func(context.Context, T)
	next int
	mu   sync.Mutex
}

func (hs *handlers[T]) add(fn func(context.Context, T)) host.Disposable {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.fns == nil {
		hs.fns = map[int]func(context.Context, T){}
	}

	id := hs.next
	hs.next++
	hs.fns[id] = fn

	return host.DisposeFunc(func() {
		hs.mu.Lock()
		defer hs.mu.Unlock()

		delete(hs.fns, id)
	})
}

func (hs *handlers[T]) fire(ctx context.Context, v T) {
	hs.mu.Lock()

	ids := slices.Sorted(maps.Keys(hs.fns))
	fns := make([]func(context.Context, T), 0, len(ids))

	for _, id := range ids {
		fns = append(fns, hs.fns[id])
	}

	hs.mu.Unlock()

	for _, fn := range fns {
		fn(ctx, v)
	}
}
