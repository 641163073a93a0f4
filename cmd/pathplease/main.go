// Command pathplease keeps a "File: <path>" comment at the top of source
// files.
//
// # Usage
//
//	pathplease [flags] <command>
//
// # Commands
//
//	add <file>       add or update the path comment
//	remove <file>    remove the path comment
//	refresh <file>   remove and re-add the path comment
//	open <file>      raise the open event (automatic annotation)
//	save <file>      raise the save event (automatic annotation)
//	toggle           flip automatic annotation on or off
//	status           show the status indicator
//	log              print the diagnostic log
//	watch [dir]      annotate files as they appear and change
//	styles           list the built-in comment styles
//	config           print the settings schema, values or file path
//	version          print build information
//
// Settings live in a YAML file (see "pathplease config path") under the
// "pathplease" key and may be overridden with PATHPLEASE_<KEY> environment
// variables. The exit code is 1 when an error was reported.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.jacobcolvin.com/pathplease/annotator"
	"go.jacobcolvin.com/pathplease/fshost"
	"go.jacobcolvin.com/pathplease/log"
	"go.jacobcolvin.com/pathplease/settings"
)

// errReported means the error was already shown to the user.
var errReported = errors.New("error reported")

// historySize is the number of log entries kept for "watch" and "log".
const historySize = 500

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, errReported) {
		return 1
	}

	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)

		return 1
	}

	return 0
}

type app struct {
	stdout   io.Writer
	stderr   io.Writer
	settings *settings.Config
	log      *log.Config
	host     *fshost.Config
}

// session is one activation of the annotator over a file-system host.
type session struct {
	store   *settings.Store
	host    *fshost.Host
	manager *annotator.Manager
	logs    *log.Publisher
	logger  *slog.Logger
	closers []func() error
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		settings: settings.NewConfig(),
		log:      log.NewConfig(),
		host:     fshost.NewConfig(),
	}

	rootCmd := &cobra.Command{
		Use:   "pathplease",
		Short: "Keep a path comment at the top of source files",
		Long: `pathplease inserts, updates and removes a single-line "File: <path>" comment
at the top of source files, using the comment syntax of each file's language.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	a.settings.RegisterFlags(rootCmd.PersistentFlags())
	a.log.RegisterFlags(rootCmd.PersistentFlags())
	a.host.RegisterFlags(rootCmd.PersistentFlags())

	for _, register := range []func(*cobra.Command) error{
		a.settings.RegisterCompletions,
		a.log.RegisterCompletions,
		a.host.RegisterCompletions,
	} {
		err := register(rootCmd)
		if err != nil {
			fmt.Fprintf(stderr, "register completions: %v\n", err)
		}
	}

	rootCmd.AddCommand(
		a.fileCommand("add", "Add or update the path comment", annotator.CommandAddPath),
		a.fileCommand("remove", "Remove the path comment", annotator.CommandRemovePath),
		a.fileCommand("refresh", "Remove and re-add the path comment", annotator.CommandRefreshPath),
		a.eventCommand("open", "Raise the open event for a file", (*fshost.Host).Open),
		a.eventCommand("save", "Raise the save event for a file", (*fshost.Host).Save),
		a.toggleCommand(),
		a.statusCommand(),
		a.logCommand(),
		a.watchCommand(),
		stylesCommand(stdout),
		a.configCommand(),
		versionCommand(stdout),
	)

	return rootCmd
}

// open starts a session whose host prints to out. Callers must close it.
func (a *app) open(out io.Writer, opts ...fshost.Option) (*session, error) {
	s := &session{
		logs: log.NewPublisher(log.WithHistory(historySize)),
	}

	s.closers = append(s.closers, s.logs.Close)

	file, closeFile, err := a.log.OpenFile()
	if err != nil {
		return nil, errors.Join(err, s.close())
	}

	s.closers = append(s.closers, closeFile)

	handler, err := a.log.NewHandler(io.MultiWriter(file, s.logs))
	if err != nil {
		return nil, errors.Join(err, s.close())
	}

	s.logger = slog.New(handler)

	s.store, err = a.settings.NewStore()
	if err != nil {
		return nil, errors.Join(err, s.close())
	}

	theme := fshost.PlainTheme()
	if isTerminal(a.stdout) {
		theme = fshost.DefaultTheme()
	}

	base := []fshost.Option{
		fshost.WithSettings(s.store),
		fshost.WithTheme(theme),
		fshost.WithLogger(s.logger),
		fshost.WithOutput(a.output(s.logs)),
	}

	s.host, err = a.host.NewHost(out, append(base, opts...)...)
	if err != nil {
		return nil, errors.Join(err, s.close())
	}

	s.manager = annotator.New(s.host, s.store, annotator.WithLogger(s.logger))
	s.closers = append(s.closers, func() error {
		s.manager.Close()

		return nil
	})

	return s, nil
}

// close releases the session in reverse order of acquisition.
func (s *session) close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}

	return errors.Join(errs...)
}

// result turns reported errors into [errReported].
func (s *session) result() error {
	if s.host.Errored() {
		return errReported
	}

	return nil
}

// output writes the persistent log file, or the session history when there
// is none.
func (a *app) output(logs *log.Publisher) func(io.Writer) error {
	return func(w io.Writer) error {
		if a.log.File == "" {
			return logs.WriteHistoryTo(w)
		}

		f, err := os.Open(a.log.File)
		if errors.Is(err, fs.ErrNotExist) {
			return logs.WriteHistoryTo(w)
		}

		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}

		defer f.Close()

		_, err = io.Copy(w, f)
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}

		return nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
