package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/pathplease/annotator"
	"go.jacobcolvin.com/pathplease/fshost"
	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/style"
	"go.jacobcolvin.com/pathplease/version"
)

// ErrUnknownOutput indicates an unsupported --output value.
var ErrUnknownOutput = errors.New("unknown output format")

// withSession runs fn in a new session and reports its result.
func (a *app) withSession(fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.open(a.stdout)
		if err != nil {
			return err
		}

		err = fn(cmd.Context(), s, args)
		if err == nil {
			err = s.result()
		}

		return errors.Join(err, s.close())
	}
}

// fileCommand runs the annotator command id on a file.
func (a *app) fileCommand(use, short, id string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, s *session, args []string) error {
			_, err := s.host.Activate(args[0])
			if err != nil {
				return err
			}

			return s.host.Execute(ctx, id)
		}),
	}
}

// eventCommand raises a document event for a file.
func (a *app) eventCommand(use, short string, raise func(*fshost.Host, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Long: short + `. The file is annotated only if automatic annotation applies to
it under the current settings.`,
		Args: cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, s *session, args []string) error {
			return raise(s.host, ctx, args[0])
		}),
	}
}

func (a *app) toggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Turn automatic annotation on or off",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, s *session, _ []string) error {
			return s.host.Execute(ctx, annotator.CommandToggleAutoAdd)
		}),
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status indicator",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(_ context.Context, s *session, _ []string) error {
			st := s.host.Status()

			_, err := fmt.Fprintf(a.stdout, "%s %s\n", s.host.Theme().RenderStatus(st), st.Tooltip)
			if err != nil {
				return fmt.Errorf("write status: %w", err)
			}

			return nil
		}),
	}
}

func (a *app) logCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Print the diagnostic log",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, s *session, _ []string) error {
			return s.host.Execute(ctx, annotator.CommandShowOutput)
		}),
	}
}

// encode writes v to w as YAML or JSON.
func encode(w io.Writer, format string, v any) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "yaml":
		out, err = yaml.Marshal(v)
	case "json":
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
	}

	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func registerOutputFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "output", "o", "yaml", "output format, one of: [yaml json]")

	cobra.CheckErr(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{"yaml", "json"}, cobra.ShellCompDirectiveNoFileComp)))
}

func stylesCommand(stdout io.Writer) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List the built-in comment styles",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return encode(stdout, format, style.Builtins())
		},
	}

	registerOutputFlag(cmd, &format)

	return cmd
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect settings",
	}

	var showFormat string

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := a.settings.NewStore()
			if err != nil {
				return err
			}

			return encode(a.stdout, showFormat, map[string]settings.Settings{
				settings.Section: store.Snapshot(),
			})
		},
	}

	registerOutputFlag(show, &showFormat)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of the settings file",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return encode(a.stdout, "json", settings.Schema())
			},
		},
		show,
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file path",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(a.stdout, a.settingsPath())
				if err != nil {
					return fmt.Errorf("write output: %w", err)
				}

				return nil
			},
		},
	)

	return cmd
}

func (a *app) settingsPath() string {
	if a.settings.File == "" {
		return settings.DefaultPath()
	}

	return a.settings.File
}

func versionCommand(stdout io.Writer) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !verbose {
				_, err := fmt.Fprintln(stdout, version.Info())
				if err != nil {
					return fmt.Errorf("write output: %w", err)
				}

				return nil
			}

			for _, f := range version.Fields() {
				_, err := fmt.Fprintf(stdout, "%-10s %s\n", f[0]+":", f[1])
				if err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every build field")

	return cmd
}
