// Package model defines the domain types and value objects for the
// sprout CLI.
//
// This package contains pure data structures with no external dependencies.
// The bootstrap entities (StepID, StepResult, BootstrapReport) describe the
// template-initialization pipeline, while the dev-shell entities (DevShell,
// ContainerInfo) are transient representations reconstructed from Docker
// container labels at runtime — there are no persistent state files beyond
// the completion marker under .git/.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
