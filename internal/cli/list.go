package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/core-builder/internal/samples"
)

// SampleInfo describes one registered sample.
type SampleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type sampleList []SampleInfo

func (l sampleList) String() string {
	var sb strings.Builder
	for i, s := range l {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%-14s %s", s.Name, s.Description)
	}
	return sb.String()
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the sample modules",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.setup(cmd)
			if err != nil {
				return err
			}
			list := make(sampleList, 0)
			for _, s := range samples.All() {
				list = append(list, SampleInfo{Name: s.Name, Description: s.Description})
			}
			return e.out.Success(list)
		},
	}
}

// resolveSamples maps names to samples. With no names the config's sample
// list is used, and when that is empty every sample is returned.
func resolveSamples(e *env, names []string) ([]samples.Sample, error) {
	if len(names) == 0 {
		names = e.cfg.Samples
	}
	if len(names) == 0 {
		return samples.All(), nil
	}
	out := make([]samples.Sample, 0, len(names))
	for _, n := range names {
		s, ok := samples.Lookup(n)
		if !ok {
			return nil, e.out.fail(ExitCommandError, ErrCodeUnknownSample,
				fmt.Sprintf("unknown sample %q", n), samples.Names())
		}
		out = append(out, s)
	}
	return out, nil
}
