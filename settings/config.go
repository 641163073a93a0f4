package settings

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for settings configuration.
type Flags struct {
	File string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for locating the settings file.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewStore] to open the [Store].
type Config struct {
	File  string
	Flags Flags
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		File: "config",
	}

	return f.NewConfig()
}

// RegisterFlags adds settings flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.File, c.Flags.File, "c", DefaultPath(),
		"settings file path")
}

// RegisterCompletions registers shell completions for settings flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.File,
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.File, err)
	}

	return nil
}

// NewStore opens the [Store] for the configured settings file.
func (c *Config) NewStore() (*Store, error) {
	path := c.File
	if path == "" {
		path = DefaultPath()
	}

	return NewStore(path)
}
