package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapml/internal/trainer"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at build time.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display LeapML version, build information and the models this build can train.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "LeapML v%s\n", info.Version)
			_, _ = fmt.Fprintf(out, "commit %s, built %s\n", info.GitCommit, info.BuildDate)
			_, _ = fmt.Fprintf(out, "models: %s\n", strings.Join(trainer.NewRegistry().Names(), ", "))
		},
	}
}
