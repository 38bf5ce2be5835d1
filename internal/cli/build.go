package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/core-builder/internal/session"
)

// BuildResult describes one module written by build.
type BuildResult struct {
	Sample      string `json:"sample"`
	Path        string `json:"path"`
	Verified    bool   `json:"verified"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type buildReport []BuildResult

func (r buildReport) String() string {
	var sb strings.Builder
	for i, res := range r {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "✓ %s -> %s", res.Sample, res.Path)
		if res.Fingerprint != "" {
			fmt.Fprintf(&sb, " (%s)", res.Fingerprint)
		}
	}
	return sb.String()
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "build [sample...]",
		Short: "Build sample modules and write them as .ll files",
		Long: `Build sample modules and write each one to <output>/<sample>.ll.

With no arguments the samples listed in the config are built, or every
sample when the config names none. Modules are verified before they are
written unless the config disables verification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, args, outputDir, cmd)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides the config)")

	return cmd
}

func runBuild(opts *RootOptions, names []string, outputDir string, cmd *cobra.Command) error {
	e, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	list, err := resolveSamples(e, names)
	if err != nil {
		return err
	}

	dir := e.cfg.OutputDir
	if outputDir != "" {
		dir = outputDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return e.out.fail(ExitCommandError, ErrCodeWrite, fmt.Sprintf("cannot create %s: %v", dir, err), nil)
	}

	report := make(buildReport, 0, len(list))
	for _, s := range list {
		e.out.VerboseLog("Building %s", s.Name)
		sess, err := s.Run(e.logger)
		if err != nil {
			return e.out.fail(ExitCommandError, ErrCodeBuild, err.Error(), nil)
		}

		res := BuildResult{Sample: s.Name}
		if e.cfg.Verify {
			if !sess.Verify() {
				return e.out.fail(ExitFailure, ErrCodeVerify,
					fmt.Sprintf("sample %s failed verification", s.Name), diagnosticLines(sess))
			}
			res.Verified = true
		}

		res.Path = filepath.Join(dir, s.Name+".ll")
		if err := sess.WriteIR(res.Path); err != nil {
			return e.out.fail(ExitCommandError, ErrCodeWrite, err.Error(), nil)
		}
		if e.cfg.Fingerprint {
			res.Fingerprint = sess.Fingerprint()
		}
		report = append(report, res)
	}

	if opts.Verbose {
		e.logger.PrintSummary(e.out.GetErrWriter())
	}
	return e.out.Success(report)
}

func diagnosticLines(sess *session.Session) []string {
	diags := sess.Diagnostics.Diagnostics()
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	return lines
}
