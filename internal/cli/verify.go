package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// VerifyResult is the verifier outcome for one sample.
type VerifyResult struct {
	Sample      string   `json:"sample"`
	OK          bool     `json:"ok"`
	Errors      int      `json:"errors"`
	Warnings    int      `json:"warnings"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

type verifyReport []VerifyResult

func (r verifyReport) String() string {
	var sb strings.Builder
	for i, res := range r {
		if i > 0 {
			sb.WriteString("\n")
		}
		mark := "✓"
		if !res.OK {
			mark = "✗"
		}
		fmt.Fprintf(&sb, "%s %s (%d errors, %d warnings)", mark, res.Sample, res.Errors, res.Warnings)
		for _, d := range res.Diagnostics {
			sb.WriteString("\n    " + d)
		}
	}
	return sb.String()
}

func (r verifyReport) failed() int {
	n := 0
	for _, res := range r {
		if !res.OK {
			n++
		}
	}
	return n
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [sample...]",
		Short: "Build sample modules and run the verifier over them",
		Long: `Build sample modules and check them for structural errors without
writing any output. Exits with status 1 when any module fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args, cmd)
		},
	}
}

func runVerify(opts *RootOptions, names []string, cmd *cobra.Command) error {
	e, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	list, err := resolveSamples(e, names)
	if err != nil {
		return err
	}

	report := make(verifyReport, 0, len(list))
	for _, s := range list {
		sess, err := s.Run(e.logger)
		if err != nil {
			return e.out.fail(ExitCommandError, ErrCodeBuild, err.Error(), nil)
		}
		ok := sess.Verify()
		report = append(report, VerifyResult{
			Sample:      s.Name,
			OK:          ok,
			Errors:      sess.Diagnostics.ErrorCount(),
			Warnings:    sess.Diagnostics.WarningCount(),
			Diagnostics: diagnosticLines(sess),
		})
		e.out.VerboseLog("Verified %s: ok=%t", s.Name, ok)
	}

	if n := report.failed(); n > 0 {
		return e.out.fail(ExitFailure, ErrCodeVerify,
			fmt.Sprintf("%d of %d modules failed verification", n, len(report)), report)
	}
	return e.out.Success(report)
}
