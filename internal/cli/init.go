// init.go implements the "sprout init" command.
//
// init is the primary user-facing operation. It runs the bootstrap
// pipeline against a freshly cloned template:
//
//  1. Detach the clone from the template remote
//  2. Start a history-less work branch
//  3. Substitute the project name into the manifest
//  4. Record the manifest and auxiliary files as a single initial commit
//  5. Promote the work branch to the target branch
//  6. Remove the legacy bootstrap script
//  7. Write the completion marker
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/sprout/internal/bootstrap"
	"github.com/mmr-tortoise/sprout/internal/config"
	"github.com/mmr-tortoise/sprout/internal/gitutil"
	"github.com/mmr-tortoise/sprout/internal/model"
	"github.com/mmr-tortoise/sprout/internal/template"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	name   string // --name: project name (default: directory base name)
	branch string // --branch: target branch override
	path   string // --path: repository path (default: current directory)
	force  bool   // --force: re-run even when the completion marker exists
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Bootstrap a cloned template into a standalone project",
		Long: `Bootstrap a freshly cloned project template into a standalone repository.

The command removes the template's "origin" remote, replaces the
placeholder in the project manifest with the project name, rewrites the
history into a single initial commit on the target branch, and records a
completion marker so re-running is a no-op.

Examples:
  sprout init
  sprout init --name my-service
  sprout init --branch main --force
  sprout init --path ~/src/my-service`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Project name (default: repository directory name)")
	cmd.Flags().StringVar(&flags.branch, "branch", "", "Target branch (default: master)")
	cmd.Flags().StringVar(&flags.path, "path", "", "Repository path (default: current directory)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Re-run even when already bootstrapped")

	return cmd
}

// runInit resolves the repository and configuration, then executes the
// bootstrap pipeline.
func runInit(flags *initFlags) error {
	st, err := buildState(flags.path, flags.name, flags.branch)
	if err != nil {
		return err
	}
	VerboseLog("Repository: %s", st.Repo.Root)
	VerboseLog("Project name: %s", st.ProjectName)
	VerboseLog("Target branch: %s", st.Config.Branch)
	VerboseLog("Manifest: %s", st.Config.Manifest)

	runner := bootstrap.NewRunner()
	runner.Force = flags.force

	report, runErr := runner.Run(st)
	// Print the partial report even on failure so the user can see which
	// step broke.
	printReport(report)
	return runErr
}

// buildState opens the repository, loads the template configuration with
// user-config overrides applied, and resolves the project name. Shared by
// init and status.
func buildState(path, nameOverride, branchOverride string) (*bootstrap.State, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
		}
		path = cwd
	}

	repo, err := gitutil.Open(path)
	if err != nil {
		return nil, err
	}

	cfg, err := template.Load(repo.Root)
	if err != nil {
		return nil, err
	}
	applyConfigOverrides(cfg, repo.Root)
	if branchOverride != "" {
		cfg.Branch = branchOverride
	}

	// The project name defaults to the directory the user cloned into,
	// which is how templates are usually named on disk.
	projectName := nameOverride
	if projectName == "" {
		projectName = filepath.Base(repo.Root)
	}
	if err := model.ValidateProjectName(projectName); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid project name", err)
	}

	return &bootstrap.State{
		Repo:        repo,
		Config:      cfg,
		ProjectName: projectName,
	}, nil
}

// applyConfigOverrides layers the user configuration (file + SPROUT_* env
// variables) over the template configuration. Template settings win only
// where the user has not configured anything; re-resolving the manifest
// keeps auto-detection intact when the override names no file.
func applyConfigOverrides(cfg *template.Config, root string) {
	if v := config.Get(config.KeyDefaultBranch); v != "" {
		cfg.Branch = v
	}
	if v := config.Get(config.KeyPlaceholder); v != "" {
		cfg.Placeholder = v
	}
	if v := config.Get(config.KeyManifest); v != "" {
		cfg.Manifest = v
	}
	if cfg.Manifest == "" {
		cfg.Manifest = template.DetectManifest(root)
	}
}

// printReport outputs a bootstrap report in text or JSON format.
func printReport(report *model.BootstrapReport) {
	if report == nil {
		return
	}
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Project %q on branch %q\n", report.ProjectName, report.Branch)
	for _, result := range report.Results {
		marker := outcomeMarker(result.Outcome)
		if result.Detail != "" {
			fmt.Printf("  %s %-24s %s\n", marker, result.Step, result.Detail)
		} else {
			fmt.Printf("  %s %s\n", marker, result.Step)
		}
	}
	if !report.CompletedAt.IsZero() {
		fmt.Printf("Bootstrap completed at %s\n", report.CompletedAt.Format("2006-01-02 15:04:05 MST"))
	}
}

// outcomeMarker maps a step outcome to its single-character list marker.
func outcomeMarker(outcome model.StepOutcome) string {
	switch outcome {
	case model.OutcomeApplied:
		return "+"
	case model.OutcomeSkipped:
		return "="
	case model.OutcomeFailed:
		return "!"
	default: // pending
		return "·"
	}
}
