package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// PrintResult carries the textual IR of one module.
type PrintResult struct {
	Sample      string `json:"sample"`
	IR          string `json:"ir"`
	Fingerprint string `json:"fingerprint"`
}

func (p PrintResult) String() string { return strings.TrimSuffix(p.IR, "\n") }

// NewPrintCommand creates the print command.
func NewPrintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "print <sample>",
		Short:         "Build a sample module and print its IR",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.setup(cmd)
			if err != nil {
				return err
			}
			list, err := resolveSamples(e, args)
			if err != nil {
				return err
			}
			sess, err := list[0].Run(e.logger)
			if err != nil {
				return e.out.fail(ExitCommandError, ErrCodeBuild, err.Error(), nil)
			}
			return e.out.Success(PrintResult{
				Sample:      list[0].Name,
				IR:          sess.Module.String(),
				Fingerprint: sess.Fingerprint(),
			})
		},
	}
}
