package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/pathplease/annotator"
	"go.jacobcolvin.com/pathplease/fshost"
	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/log"
)

// maxLogLines is the number of log lines the watch view keeps.
const maxLogLines = 200

func (a *app) watchCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Annotate files as they are created and saved",
		Long: `watch monitors a directory tree. New files raise the open event and written
files raise the save event, so they are annotated under the automatic
annotation settings. Changes to the settings file apply immediately.

On a terminal, watch shows the status indicator and the log; press t to toggle
automatic annotation and q to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			return a.watch(cmd.Context(), dir, !plain && isTerminal(a.stdout))
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print notifications instead of the interactive view")

	return cmd
}

func (a *app) watch(ctx context.Context, dir string, interactive bool) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	statuses := make(chan host.Status, 1)

	opts := []fshost.Option{
		fshost.WithStatusFunc(func(st host.Status) {
			// Only the latest status matters.
			select {
			case <-statuses:
			default:
			}

			statuses <- st
		}),
	}

	if len(a.host.Workspace) == 0 {
		opts = append(opts, fshost.WithRoots(dir))
	}

	// The interactive view shows notifications through the log.
	out := a.stdout
	if interactive {
		out = io.Discard
	}

	s, err := a.open(out, opts...)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, s.close())
	}()

	d := fshost.NewDispatcher(64)

	w, err := fshost.NewWatcher(s.host, d,
		fshost.WithSettingsFile(s.store),
		fshost.WithWatcherLogger(s.logger),
	)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, w.Close())
	}()

	err = w.AddTree(dir)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error { return d.Run(gctx) })

	if !interactive {
		g.Go(func() error { return a.printStatuses(gctx, statuses, s.host.Theme()) })

		s.logger.Info("watching", "dir", dir)

		return g.Wait()
	}

	m := newWatchModel(dir, s.host.Theme(), s.logs.Subscribe(), statuses, func() {
		postErr := d.Post(gctx, func(ctx context.Context) {
			_ = s.host.Execute(ctx, annotator.CommandToggleAutoAdd)
		})
		if postErr != nil {
			s.logger.Debug("toggle dropped", "err", postErr)
		}
	})

	p := tea.NewProgram(m, tea.WithOutput(a.stdout))

	g.Go(func() error {
		_, runErr := p.Run()

		stop()

		if runErr != nil {
			return fmt.Errorf("run view: %w", runErr)
		}

		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()

		return nil
	})

	return g.Wait()
}

func (a *app) printStatuses(ctx context.Context, statuses <-chan host.Status, theme fshost.Theme) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-statuses:
			_, err := fmt.Fprintf(a.stdout, "%s %s\n", theme.RenderStatus(st), st.Tooltip)
			if err != nil {
				return fmt.Errorf("write status: %w", err)
			}
		}
	}
}

type (
	logMsg    []byte
	statusMsg host.Status
	closedMsg struct{}
)

// watchModel is the bubbletea model for "pathplease watch".
type watchModel struct {
	logs     *log.Subscription
	statuses <-chan host.Status
	toggle   func()
	theme    fshost.Theme
	dir      string
	lines    []string
	status   host.Status
	height   int
}

func newWatchModel(dir string, theme fshost.Theme, logs *log.Subscription, statuses <-chan host.Status, toggle func()) *watchModel {
	return &watchModel{
		dir:      dir,
		theme:    theme,
		logs:     logs,
		statuses: statuses,
		toggle:   toggle,
	}
}

func (m *watchModel) waitLog() tea.Msg {
	entry, ok := <-m.logs.C()
	if !ok {
		return closedMsg{}
	}

	return logMsg(entry)
}

func (m *watchModel) waitStatus() tea.Msg {
	return statusMsg(<-m.statuses)
}

// Init starts listening for log entries and status updates.
func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.waitLog, m.waitStatus)
}

// Update handles keys, log entries, status updates and resizes. Once the
// log subscription closes, [closedMsg] stops the log listener.
func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.logs.Close()

			return m, tea.Quit
		case "t":
			return m, func() tea.Msg {
				m.toggle()

				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case logMsg:
		for line := range strings.SplitSeq(strings.TrimRight(string(msg), "\n"), "\n") {
			m.lines = append(m.lines, line)
		}

		if over := len(m.lines) - maxLogLines; over > 0 {
			m.lines = m.lines[over:]
		}

		return m, m.waitLog

	case statusMsg:
		m.status = host.Status(msg)

		return m, m.waitStatus
	}

	return m, nil
}

// View renders the status line, the log tail and the key help.
func (m *watchModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true

	return v
}

func (m *watchModel) render() string {
	var sb strings.Builder

	dim := lipgloss.NewStyle().Faint(true)

	sb.WriteString(m.theme.RenderStatus(m.status))
	sb.WriteString(" " + dim.Render("watching "+m.dir) + "\n\n")

	lines := m.lines
	if room := m.height - 4; m.height > 0 && len(lines) > room {
		lines = lines[len(lines)-max(room, 0):]
	}

	for _, line := range lines {
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n" + dim.Render("t toggle auto-add • q quit"))

	return sb.String()
}
