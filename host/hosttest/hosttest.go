// Package hosttest provides an in-memory [host.Host] for tests.
package hosttest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"go.jacobcolvin.com/pathplease/host"
)

// Severity of a recorded notification.
type Severity string

// Notification severities.
const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Notification is a message shown to the user.
type Notification struct {
	Severity Severity
	Message  string
}

// Editor is an in-memory [host.Editor] over a [host.Buffer].
type Editor struct {
	*host.Buffer

	// Err, if set, is returned by Apply without editing.
	Err   error
	Edits int
}

// NewEditor creates an [Editor] for a document at path.
func NewEditor(path, languageID, text string) *Editor {
	return &Editor{Buffer: host.NewBuffer(path, languageID, []byte(text))}
}

// Document implements [host.Editor].
func (e *Editor) Document() host.Document {
	return e.Buffer
}

// Apply implements [host.Editor].
func (e *Editor) Apply(_ context.Context, edits ...host.Edit) error {
	if e.Err != nil {
		return e.Err
	}

	e.Edits++

	return e.Buffer.Apply(edits...)
}

// Host is an in-memory [host.Host] recording everything shown to the user.
//
// Create instances with [New].
type Host struct {
	active        *Editor
	commands      map[string]host.Command
	folders       []string
	notifications []Notification
	statuses      []host.Status
	openHandlers  []*handler[host.Editor]
	saveHandlers  []*handler[host.Editor]
	cfgHandlers   []*handler[host.ConfigurationChange]
	outputShown   int
	mu            sync.Mutex
}

type handler[T any] struct {
	fn       func(context.Context, T)
	disposed bool
}

// New creates a [Host] with the given workspace folders.
func New(folders ...string) *Host {
	return &Host{
		folders:  folders,
		commands: map[string]host.Command{},
	}
}

// SetActive makes ed the active editor. A nil ed clears it.
func (h *Host) SetActive(ed *Editor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.active = ed
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

// WorkspaceFolder implements [host.Host].
func (h *Host) WorkspaceFolder(path string) (string, bool) {
	for _, f := range h.folders {
		rel, err := filepath.Rel(f, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return f, true
		}
	}

	return "", false
}

func (h *Host) notify(s Severity, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.notifications = append(h.notifications, Notification{Severity: s, Message: msg})
}

// ShowInfo implements [host.Host].
func (h *Host) ShowInfo(msg string) { h.notify(Info, msg) }

// ShowWarning implements [host.Host].
func (h *Host) ShowWarning(msg string) { h.notify(Warning, msg) }

// ShowError implements [host.Host].
func (h *Host) ShowError(msg string) { h.notify(Error, msg) }

// ShowOutput implements [host.Host].
func (h *Host) ShowOutput() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.outputShown++
}

// SetStatus implements [host.Host].
func (h *Host) SetStatus(s host.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.statuses = append(h.statuses, s)
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

func register[T any](h *Host, list *[]*handler[T], fn func(context.Context, T)) host.Disposable {
	h.mu.Lock()
	defer h.mu.Unlock()

	hd := &handler[T]{fn: fn}
	*list = append(*list, hd)

	return host.DisposeFunc(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		hd.disposed = true
	})
}

func fire[T any](ctx context.Context, h *Host, list *[]*handler[T], v T) {
	h.mu.Lock()

	var live []*handler[T]

	for _, hd := range *list {
		if !hd.disposed {
			live = append(live, hd)
		}
	}

	h.mu.Unlock()

	for _, hd := range live {
		hd.fn(ctx, v)
	}
}

// OnDidChangeActiveEditor implements [host.Host].
func (h *Host) OnDidChangeActiveEditor(fn func(context.Context, host.Editor)) host.Disposable {
	return register(h, &h.openHandlers, fn)
}

// OnDidSaveDocument implements [host.Host].
func (h *Host) OnDidSaveDocument(fn func(context.Context, host.Editor)) host.Disposable {
	return register(h, &h.saveHandlers, fn)
}

// OnDidChangeConfiguration implements [host.Host].
func (h *Host) OnDidChangeConfiguration(fn func(context.Context, host.ConfigurationChange)) host.Disposable {
	return register(h, &h.cfgHandlers, fn)
}

// Open makes ed active and fires the active-editor event.
func (h *Host) Open(ctx context.Context, ed *Editor) {
	h.SetActive(ed)
	fire(ctx, h, &h.openHandlers, host.Editor(ed))
}

// Save fires the save event for ed.
func (h *Host) Save(ctx context.Context, ed *Editor) {
	fire(ctx, h, &h.saveHandlers, host.Editor(ed))
}

// ChangeConfiguration fires the configuration event for sections.
func (h *Host) ChangeConfiguration(ctx context.Context, sections ...string) {
	fire(ctx, h, &h.cfgHandlers, host.ConfigurationChange(host.Sections(sections)))
}

// ErrUnknownCommand is returned by [Host.Execute] for unregistered ids.
var ErrUnknownCommand = errors.New("unknown command")

// Execute runs the command registered as id.
func (h *Host) Execute(ctx context.Context, id string) error {
	h.mu.Lock()
	fn, ok := h.commands[id]
	h.mu.Unlock()

	if !ok {
		return ErrUnknownCommand
	}

	fn(ctx)

	return nil
}

// Commands returns the registered command ids.
func (h *Host) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.commands))
	for id := range h.commands {
		ids = append(ids, id)
	}

	return ids
}

// Notifications returns everything shown to the user so far.
func (h *Host) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]Notification(nil), h.notifications...)
}

// Statuses returns every status set so far.
func (h *Host) Statuses() []host.Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]host.Status(nil), h.statuses...)
}

// OutputShown returns how many times the output log was revealed.
func (h *Host) OutputShown() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.outputShown
}
