package annotator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.jacobcolvin.com/pathplease/eligibility"
	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/pathcomment"
	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/style"
)

// Command identifiers registered with the host.
const (
	CommandAddPath       = "pathplease.addPath"
	CommandRemovePath    = "pathplease.removePath"
	CommandToggleAutoAdd = "pathplease.toggleAutoAdd"
	CommandRefreshPath   = "pathplease.refreshPath"
	CommandShowOutput    = "pathplease.showOutput"
)

// msgNoActiveEditor is shown when a command runs without a document.
const msgNoActiveEditor = "No active editor found"

// Manager maintains path comments for one host.
//
// Create instances with [New] and release them with [Manager.Close].
type Manager struct {
	host     host.Host
	settings settings.Source
	log      *slog.Logger
	subs     host.Subscriptions
}

// Option configures a [Manager].
type Option func(*Manager)

// WithLogger sets the logger receiving the diagnostic stream.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// New creates a [Manager] and registers it with h.
func New(h host.Host, src settings.Source, opts ...Option) *Manager {
	m := &Manager{
		host:     h,
		settings: src,
		log:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.updateStatus()

	m.subs.Add(
		h.RegisterCommand(CommandAddPath, m.AddPath),
		h.RegisterCommand(CommandRemovePath, m.RemovePath),
		h.RegisterCommand(CommandToggleAutoAdd, m.ToggleAutoAdd),
		h.RegisterCommand(CommandRefreshPath, m.RefreshPath),
		h.RegisterCommand(CommandShowOutput, m.ShowOutput),
		h.OnDidChangeActiveEditor(m.onDidChangeActiveEditor),
		h.OnDidSaveDocument(m.onDidSaveDocument),
		h.OnDidChangeConfiguration(m.onDidChangeConfiguration),
	)

	m.log.Info("PathPlease activated")

	return m
}

// Close disposes every registration made by [New]. Idempotent.
func (m *Manager) Close() {
	m.subs.Dispose()
}

func (m *Manager) onDidChangeActiveEditor(ctx context.Context, ed host.Editor) {
	if ed == nil || !m.shouldAutoProcess(ctx, ed.Document()) {
		return
	}

	m.add(ctx, ed)
}

func (m *Manager) onDidSaveDocument(ctx context.Context, ed host.Editor) {
	if ed == nil || !m.settings.Snapshot().AutoAddOnSave {
		return
	}

	if m.shouldAutoProcess(ctx, ed.Document()) {
		m.add(ctx, ed)
	}
}

func (m *Manager) onDidChangeConfiguration(_ context.Context, e host.ConfigurationChange) {
	if e.AffectsConfiguration(settings.Section) {
		m.updateStatus()
	}
}

func (m *Manager) shouldAutoProcess(ctx context.Context, doc host.Document) bool {
	s := m.settings.Snapshot()

	reason := eligibility.Check(doc, s)
	if reason == eligibility.Eligible {
		return true
	}

	level := slog.LevelDebug
	if s.ShowSkipNotifications {
		level = slog.LevelInfo
	}

	switch reason {
	case eligibility.Excluded, eligibility.Untitled, eligibility.Documentation:
		reason = eligibility.Excluded
	case eligibility.Unsupported, eligibility.AlreadyAnnotated:
	default:
		return false
	}

	m.log.Log(ctx, level, "auto-process skipped",
		slog.String("file", filepath.Base(doc.Path())),
		slog.String("reason", reason.String()),
	)

	return false
}

// AddPath adds or updates the path comment of the active document.
func (m *Manager) AddPath(ctx context.Context) {
	ed, ok := m.host.ActiveEditor()
	if !ok {
		m.showError(msgNoActiveEditor)

		return
	}

	m.add(ctx, ed)
}

func (m *Manager) add(ctx context.Context, ed host.Editor) {
	doc := ed.Document()

	act, err := m.applyComment(ctx, ed, m.settings.Snapshot())
	if err != nil {
		m.handleError("Failed to add path comment", err)

		return
	}

	if act != actionNone {
		m.log.Info(string(act)+" path comment", slog.String("path", doc.Path()))
	}
}

type action string

const (
	actionNone    action = ""
	actionAdded   action = "added"
	actionUpdated action = "updated"
)

// applyComment inserts the path comment into ed's document, or rewrites the
// existing one in place.
func (m *Manager) applyComment(ctx context.Context, ed host.Editor, s settings.Settings) (action, error) {
	doc := ed.Document()

	display, err := m.displayPath(doc, s)
	if err != nil {
		return actionNone, err
	}

	cs, ok := style.Resolve(doc.LanguageID(), s.CommentStyles)
	if !ok {
		m.log.Info("no comment style available", slog.String("language", doc.LanguageID()))

		return actionNone, nil
	}

	comment := pathcomment.Format(display, cs)

	if line, found := pathcomment.Locate(doc, cs); found {
		if doc.LineAt(line) == comment {
			return actionNone, nil
		}

		err = ed.Apply(ctx, host.Replace(pathcomment.TextRange(doc, line), comment))
		if err != nil {
			return actionNone, fmt.Errorf("replace line %d: %w", line, err)
		}

		return actionUpdated, nil
	}

	line := pathcomment.InsertLine(doc, s.InsertPosition)
	text := comment + "\n"

	// A lone shebang without a terminator needs one before the comment.
	if line >= doc.LineCount() {
		text = "\n" + comment
	}

	err = ed.Apply(ctx, host.Insert(host.Position{Line: line}, text))
	if err != nil {
		return actionNone, fmt.Errorf("insert at line %d: %w", line, err)
	}

	return actionAdded, nil
}

func (m *Manager) displayPath(doc host.Document, s settings.Settings) (string, error) {
	root, hasRoot := m.host.WorkspaceFolder(doc.Path())

	return pathcomment.DisplayPath(doc.Path(), root, hasRoot, s.PathFormat)
}

func (m *Manager) locate(doc host.Document) (int, bool) {
	s := m.settings.Snapshot()

	var styles []style.CommentStyle
	if cs, ok := style.Resolve(doc.LanguageID(), s.CommentStyles); ok {
		styles = append(styles, cs)
	}

	return pathcomment.Locate(doc, styles...)
}

// RemovePath deletes the path comment line of the active document.
func (m *Manager) RemovePath(ctx context.Context) {
	ed, ok := m.host.ActiveEditor()
	if !ok {
		m.showError(msgNoActiveEditor)

		return
	}

	doc := ed.Document()

	line, found := m.locate(doc)
	if !found {
		m.showWarning("No path comment found")

		return
	}

	err := ed.Apply(ctx, host.Delete(pathcomment.LineRange(line)))
	if err != nil {
		m.handleError("Failed to remove path comment", err)

		return
	}

	m.showInfo("Path comment removed")
	m.log.Info("removed path comment", slog.String("path", doc.Path()))
}

// RefreshPath removes the path comment of the active document, if any, and
// adds it again. Edits are confirmed synchronously, so the add runs right
// after the removal.
func (m *Manager) RefreshPath(ctx context.Context) {
	ed, ok := m.host.ActiveEditor()
	if !ok {
		return
	}

	if _, found := m.locate(ed.Document()); found {
		m.RemovePath(ctx)
	}

	m.AddPath(ctx)
}

// ToggleAutoAdd flips the auto-add setting and persists it.
func (m *Manager) ToggleAutoAdd(_ context.Context) {
	next := !m.settings.Snapshot().AutoAddOnOpen

	err := m.settings.Update(settings.KeyAutoAddOnOpen, next)
	if err != nil {
		m.handleError("Failed to toggle auto-add", err)

		return
	}

	state := "disabled"
	if next {
		state = "enabled"
	}

	m.showInfo("PathPlease auto-add " + state)
	m.updateStatus()
}

// ShowOutput reveals the diagnostic log.
func (m *Manager) ShowOutput(_ context.Context) {
	m.host.ShowOutput()
}

func (m *Manager) updateStatus() {
	m.host.SetStatus(StatusFor(m.settings.Snapshot()))
}

// StatusFor returns the status indicator for s.
func StatusFor(s settings.Settings) host.Status {
	if s.AutoAddOnOpen {
		return host.Status{
			Text:    "PathPlease",
			Tooltip: "PathPlease is active. Click to toggle auto-add.",
			Command: CommandToggleAutoAdd,
			Enabled: true,
		}
	}

	return host.Status{
		Text:    "PathPlease OFF",
		Tooltip: "PathPlease auto-add is disabled. Click to enable.",
		Command: CommandToggleAutoAdd,
		Warning: true,
	}
}

func (m *Manager) showInfo(msg string) {
	m.host.ShowInfo(msg)
	m.log.Info(msg)
}

func (m *Manager) showWarning(msg string) {
	m.host.ShowWarning(msg)
	m.log.Warn(msg)
}

func (m *Manager) showError(msg string) {
	m.host.ShowError(msg)
	m.log.Error(msg)
}

func (m *Manager) handleError(msg string, err error) {
	m.showError(fmt.Sprintf("%s: %v", msg, err))
}
