// Package cli implements the irbuild command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arc-language/core-builder/internal/config"
	"github.com/arc-language/core-builder/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the irbuild CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "irbuild",
		Short: "irbuild - build, verify and print IR modules",
		Long: `Drives the IR builder over a catalogue of sample modules.

Each sample constructs a module through the builder API. Modules can be
listed, verified, printed or written to .ll files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewPrintCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	out    *OutputFormatter
}

// setup loads the configuration and builds the logger and formatter for cmd.
// Verbose forces debug logging.
func (o *RootOptions) setup(cmd *cobra.Command) (*env, error) {
	out := &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
	if out.Format == "" {
		out.Format = "text"
	}

	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, out.fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
		}
		cfg = loaded
		out.VerboseLog("Loaded config from %s", o.ConfigPath)
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	return &env{
		cfg:    cfg,
		logger: cfg.NewLogger("[irbuild]", cmd.ErrOrStderr()),
		out:    out,
	}, nil
}
