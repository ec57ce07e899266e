// Package gitutil provides the git operations needed by the bootstrap
// pipeline, wrapped around the git CLI via os/exec.
//
// The repository is modeled as an explicit Repo handle rather than an
// implicit current-working-directory context, so every step of the pipeline
// receives the repository it mutates as a value. We shell out to `git`
// rather than using a Go git library because orphan-branch checkout and
// remote porcelain behavior must match the git CLI exactly.
//
// All errors from git commands are wrapped in model.CLIError with
// ExitGitError to enable proper CLI exit code handling.
package gitutil
