package fshost

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/pathplease/style"
)

// Flags holds CLI flag names for host configuration.
type Flags struct {
	Workspace string
	DryRun    string
	Language  string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for the file-system host.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewHost] to create the [Host].
type Config struct {
	Language  string
	Workspace []string
	Flags     Flags
	DryRun    bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Workspace: "workspace",
		DryRun:    "dry-run",
		Language:  "language",
	}

	return f.NewConfig()
}

// RegisterFlags adds host flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSliceVarP(&c.Workspace, c.Flags.Workspace, "w", nil,
		"workspace folder (repeatable, default: working directory)")
	flags.BoolVarP(&c.DryRun, c.Flags.DryRun, "n", false,
		"print edits as diffs instead of writing files")
	flags.StringVar(&c.Language, c.Flags.Language, "",
		"language identifier to use instead of detecting it")
}

// RegisterCompletions registers shell completions for host flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Workspace,
		cobra.FixedCompletions(nil, cobra.ShellCompDirectiveFilterDirs))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Workspace, err)
	}

	var languages []string
	for _, e := range style.Builtins() {
		languages = append(languages, e.Language)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Language,
		cobra.FixedCompletions(languages, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Language, err)
	}

	return nil
}

// NewHost creates a [Host] writing to out with the configured options
// followed by opts.
func (c *Config) NewHost(out io.Writer, opts ...Option) (*Host, error) {
	base := []Option{
		WithRoots(c.Workspace...),
		WithDryRun(c.DryRun),
		WithLanguage(c.Language),
	}

	return New(out, append(base, opts...)...)
}
