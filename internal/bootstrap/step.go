package bootstrap

import (
	"fmt"
	"time"

	"github.com/mmr-tortoise/sprout/internal/gitutil"
	"github.com/mmr-tortoise/sprout/internal/model"
	"github.com/mmr-tortoise/sprout/internal/template"
)

// workBranch is the temporary history-less branch the pipeline works on
// until the promote step renames it to the configured target branch.
const workBranch = "sprout-init"

// State carries everything a step needs to inspect or mutate the
// repository. The repository is an explicit handle — no step relies on the
// process working directory.
type State struct {
	// Repo is the repository being bootstrapped.
	Repo *gitutil.Repo

	// Config is the template configuration (defaults already applied).
	Config *template.Config

	// ProjectName is the name substituted into the manifest. Defaults to
	// the base name of the repository root; the CLI may override it.
	ProjectName string
}

// Step is one named mutation of the bootstrap pipeline.
//
// Applied reports whether the step's effect is already present, with a
// human-readable reason; the runner turns a true result into a skip.
// Apply performs the mutation and returns a short description of what it
// changed. Both may fail, and either failure stops the pipeline.
type Step interface {
	ID() model.StepID
	Applied(st *State) (bool, string, error)
	Apply(st *State) (string, error)
}

// DefaultSteps returns the pipeline steps in their fixed execution order.
func DefaultSteps() []Step {
	return []Step{
		&detachRemoteStep{},
		&orphanBranchStep{},
		&renameProjectStep{},
		&initialCommitStep{},
		&promoteBranchStep{},
		&removeScriptStep{},
		&recordMarkerStep{},
	}
}

// Runner executes the pipeline steps in order.
type Runner struct {
	// Steps is the ordered pipeline. Usually DefaultSteps().
	Steps []Step

	// Force re-runs the pipeline even when the completion marker exists.
	// The applied-checks still make the individual steps no-ops where the
	// repository is already in the desired state.
	Force bool
}

// NewRunner creates a Runner with the default pipeline.
func NewRunner() *Runner {
	return &Runner{Steps: DefaultSteps()}
}

// Run executes the pipeline against the given state.
//
// When the completion marker is already present (and Force is unset), every
// step is reported as skipped and no mutation happens — this is the
// recorded-completion redesign of a self-deleting bootstrap script.
//
// On a step failure the returned report contains the results up to and
// including the failed step, and the error is a CLIError naming the step.
func (r *Runner) Run(st *State) (*model.BootstrapReport, error) {
	report := &model.BootstrapReport{
		ProjectName: st.ProjectName,
		Branch:      st.Config.Branch,
	}

	if !r.Force && IsBootstrapped(st.Repo) {
		for _, step := range r.Steps {
			report.Results = append(report.Results, model.StepResult{
				Step:    step.ID(),
				Outcome: model.OutcomeSkipped,
				Detail:  "bootstrap already completed (marker present)",
			})
		}
		return report, nil
	}

	for _, step := range r.Steps {
		applied, reason, err := step.Applied(st)
		if err != nil {
			report.Results = append(report.Results, model.StepResult{
				Step:    step.ID(),
				Outcome: model.OutcomeFailed,
				Detail:  err.Error(),
			})
			return report, stepError(step.ID(), err)
		}
		if applied {
			report.Results = append(report.Results, model.StepResult{
				Step:    step.ID(),
				Outcome: model.OutcomeSkipped,
				Detail:  reason,
			})
			continue
		}

		detail, err := step.Apply(st)
		if err != nil {
			report.Results = append(report.Results, model.StepResult{
				Step:    step.ID(),
				Outcome: model.OutcomeFailed,
				Detail:  err.Error(),
			})
			return report, stepError(step.ID(), err)
		}
		report.Results = append(report.Results, model.StepResult{
			Step:    step.ID(),
			Outcome: model.OutcomeApplied,
			Detail:  detail,
		})
	}

	report.CompletedAt = time.Now().UTC()
	return report, nil
}

// Status evaluates every step's applied-check without mutating anything.
// Steps report OutcomeApplied or OutcomePending; check failures surface as
// errors since status must not guess.
func (r *Runner) Status(st *State) (*model.BootstrapReport, error) {
	report := &model.BootstrapReport{
		ProjectName: st.ProjectName,
		Branch:      st.Config.Branch,
	}

	for _, step := range r.Steps {
		applied, reason, err := step.Applied(st)
		if err != nil {
			return nil, stepError(step.ID(), err)
		}

		outcome := model.OutcomePending
		if applied {
			outcome = model.OutcomeApplied
		}
		report.Results = append(report.Results, model.StepResult{
			Step:    step.ID(),
			Outcome: outcome,
			Detail:  reason,
		})
	}
	return report, nil
}

// stepError wraps a step failure into the CLIError the CLI layer turns
// into exit code handling, always naming the failing step.
func stepError(id model.StepID, err error) error {
	return model.WrapCLIError(model.ExitBootstrapFailed,
		fmt.Sprintf("bootstrap step %q failed", id), err)
}
