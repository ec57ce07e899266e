package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// StepID identifies one step of the bootstrap pipeline. The pipeline is an
// ordered list of independent repository mutations; each step can be checked
// for prior application, which makes the whole pipeline safe to re-run.
type StepID string

const (
	// StepDetachRemote removes the git remote named "origin", detaching the
	// clone from the template repository it was created from.
	StepDetachRemote StepID = "detach-remote"

	// StepOrphanBranch creates a history-less work branch and switches to it.
	StepOrphanBranch StepID = "orphan-branch"

	// StepRenameProject substitutes the placeholder token in the project
	// manifest with the real project name.
	StepRenameProject StepID = "rename-project"

	// StepInitialCommit stages the manifest and the configured auxiliary
	// files and records them as a single initial commit.
	StepInitialCommit StepID = "initial-commit"

	// StepPromoteBranch deletes the prior target branch and renames the
	// work branch to the target name (default "master").
	StepPromoteBranch StepID = "promote-branch"

	// StepRemoveScript deletes a legacy bootstrap script file from the
	// working tree when the template still ships one.
	StepRemoveScript StepID = "remove-bootstrap-script"

	// StepRecordMarker writes the completion marker under .git/ so that
	// re-running the bootstrap is a no-op.
	StepRecordMarker StepID = "record-marker"
)

// String returns the string representation of StepID.
func (s StepID) String() string {
	return string(s)
}

// IsValid checks whether the StepID value is one of the predefined steps.
func (s StepID) IsValid() bool {
	switch s {
	case StepDetachRemote, StepOrphanBranch, StepRenameProject,
		StepInitialCommit, StepPromoteBranch, StepRemoveScript, StepRecordMarker:
		return true
	default:
		return false
	}
}

// ParseStepID converts a string to a StepID.
// Returns an error if the string does not match any known step.
func ParseStepID(s string) (StepID, error) {
	id := StepID(strings.ToLower(s))
	if !id.IsValid() {
		return "", fmt.Errorf("unknown bootstrap step: %q", s)
	}
	return id, nil
}

// StepOutcome describes what happened to a single step during a pipeline run
// (or what would happen, when produced by a status inspection).
type StepOutcome string

const (
	// OutcomeApplied means the step performed its mutation during this run.
	OutcomeApplied StepOutcome = "applied"

	// OutcomeSkipped means the step's applied-check found nothing to do.
	OutcomeSkipped StepOutcome = "skipped"

	// OutcomePending means the step has not run yet. Only produced by
	// status inspections, never by an actual pipeline run.
	OutcomePending StepOutcome = "pending"

	// OutcomeFailed means the step's mutation returned an error. The
	// pipeline stops at the first failed step; later steps stay pending.
	OutcomeFailed StepOutcome = "failed"
)

// String returns the string representation of StepOutcome.
func (o StepOutcome) String() string {
	return string(o)
}

// StepResult records the outcome of a single bootstrap step.
type StepResult struct {
	// Step identifies which pipeline step this result belongs to.
	Step StepID `json:"step"`

	// Outcome is what happened to the step.
	Outcome StepOutcome `json:"outcome"`

	// Detail is an optional human-readable note, e.g. why a step was
	// skipped ("remote already absent") or what it changed.
	Detail string `json:"detail,omitempty"`
}

// BootstrapReport summarizes a full pipeline run (or status inspection).
type BootstrapReport struct {
	// ProjectName is the name substituted into the manifest.
	ProjectName string `json:"projectName"`

	// Branch is the target branch the repository ends up on.
	Branch string `json:"branch"`

	// Results holds one entry per pipeline step, in execution order.
	Results []StepResult `json:"results"`

	// CompletedAt is set when the whole pipeline finished successfully.
	CompletedAt time.Time `json:"completedAt,omitzero"`
}

// Failed returns the result of the first failed step, or nil if every step
// applied or skipped cleanly.
func (r *BootstrapReport) Failed() *StepResult {
	for i := range r.Results {
		if r.Results[i].Outcome == OutcomeFailed {
			return &r.Results[i]
		}
	}
	return nil
}

// ShellStatus represents the lifecycle state of a containerized dev shell.
type ShellStatus string

const (
	// ShellRunning indicates the shell container is running.
	ShellRunning ShellStatus = "running"

	// ShellStopped indicates the shell container exists but is not running.
	ShellStopped ShellStatus = "stopped"

	// ShellOrphaned indicates the workspace directory the shell was created
	// for no longer exists on disk, but the container remains.
	ShellOrphaned ShellStatus = "orphaned"
)

// String returns the string representation of ShellStatus.
func (s ShellStatus) String() string {
	return string(s)
}

// DevShell represents a containerized development shell materialized from an
// environment descriptor. All fields are reconstructed at runtime from
// Docker container labels — there is no external state file.
type DevShell struct {
	// Name is the unique identifier for this shell, derived from the
	// descriptor name or the project name.
	Name string `json:"name"`

	// Workspace is the absolute path to the project directory that is
	// bind-mounted into the container.
	Workspace string `json:"workspace"`

	// Image is the container image the shell runs.
	Image string `json:"image"`

	// Descriptor is the path of the environment descriptor the shell was
	// materialized from, relative to the workspace.
	Descriptor string `json:"descriptor"`

	// Status is the current lifecycle state of the shell.
	Status ShellStatus `json:"status"`

	// Containers holds runtime information about the shell's container(s).
	Containers []ContainerInfo `json:"containers,omitempty"`

	// CreatedAt is the timestamp when this shell was created.
	CreatedAt time.Time `json:"createdAt"`
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// Status is the Docker container status (e.g. "running", "exited").
	Status string `json:"status"`

	// Labels is the full set of Docker labels on the container,
	// including the sprout management labels (sprout.* prefix).
	Labels map[string]string `json:"labels,omitempty"`
}

// nameRegex validates project and shell names: alphanumeric + hyphens only,
// must start and end with alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// ValidateProjectName checks if the given name is usable as a project name.
// Valid names contain only alphanumeric characters and hyphens, and must
// start/end with an alphanumeric character. The project name ends up inside
// the manifest file and in container names, so the character set is kept
// conservative.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the template configuration or project
	// manifest is missing or malformed.
	ExitConfigError ExitCode = 2

	// ExitGitError indicates a git operation failed.
	ExitGitError ExitCode = 3

	// ExitBootstrapFailed indicates a bootstrap pipeline step failed.
	ExitBootstrapFailed ExitCode = 4

	// ExitDescriptorError indicates the environment descriptor is missing
	// or failed schema validation.
	ExitDescriptorError ExitCode = 5

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 6

	// ExitToolchainError indicates the declared toolchain could not be
	// satisfied (missing tool, unmet version constraint, missing library).
	ExitToolchainError ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
