// status.go implements the "sprout status" command, a read-only
// inspection of the bootstrap pipeline: which steps have already been
// applied to the repository and which are still pending.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/sprout/internal/bootstrap"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	path string // --path: repository path (default: current directory)
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which bootstrap steps have been applied",
		Long: `Inspect the repository and report, per bootstrap step, whether its
effect is already present. Nothing is mutated.

Examples:
  sprout status
  sprout status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(flags)
		},
	}

	cmd.Flags().StringVar(&flags.path, "path", "", "Repository path (default: current directory)")

	return cmd
}

// runStatus evaluates every step's applied-check and prints the report.
func runStatus(flags *statusFlags) error {
	st, err := buildState(flags.path, "", "")
	if err != nil {
		return err
	}

	report, err := bootstrap.NewRunner().Status(st)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}
