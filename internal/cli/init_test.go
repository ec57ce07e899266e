package cli

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/sprout/internal/bootstrap"
	"github.com/mmr-tortoise/sprout/internal/model"
)

// setupTemplateClone builds a freshly-cloned template fixture: a git
// repository in a directory named "my-project" on branch "master", with a
// placeholder-bearing manifest, the auxiliary files, template history, and
// an "origin" remote.
func setupTemplateClone(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "my-project")
	require.NoError(t, os.MkdirAll(dir, 0755))

	runTestGit(t, dir, "init", "-b", "master")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	files := map[string]string{
		"Cargo.toml":   "[package]\nname = \"__PROJECT_NAME__\"\nversion = \"0.1.0\"\n",
		".envrc":       "use flake\n",
		".gitignore":   "/target\n",
		"devenv.yaml":  "name: default\ntoolchain:\n  - name: make\n",
		"bootstrap.sh": "#!/bin/sh\necho obsolete\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "template commit")
	runTestGit(t, dir, "remote", "add", "origin", "https://example.com/template.git")

	return dir
}

// runTestGit runs a git command in dir and fails the test on error.
func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}

// execute runs the root command with the given args and returns the error.
func execute(t *testing.T, args ...string) error {
	t.Helper()

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// TestInitCommand verifies the full init flow through the cobra layer:
// placeholder substituted, single commit on master, marker recorded.
func TestInitCommand(t *testing.T) {
	dir := setupTemplateClone(t)

	require.NoError(t, execute(t, "init", "--path", dir))

	manifest, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "my-project")
	assert.NotContains(t, string(manifest), "__PROJECT_NAME__")

	assert.NoFileExists(t, filepath.Join(dir, "bootstrap.sh"))
	assert.FileExists(t, filepath.Join(dir, ".git", "sprout", "bootstrapped"))

	// The fixture's single template commit must have been replaced: HEAD
	// is the configured initial commit with the substituted manifest, and
	// nothing is left modified or deleted in the working tree.
	subject, err := exec.Command("git", "-C", dir, "log", "-1", "--format=%s").Output()
	require.NoError(t, err)
	assert.Equal(t, "Initial commit", strings.TrimSpace(string(subject)))

	committed, err := exec.Command("git", "-C", dir, "show", "HEAD:Cargo.toml").Output()
	require.NoError(t, err)
	assert.Contains(t, string(committed), "my-project")
	assert.NotContains(t, string(committed), "__PROJECT_NAME__")

	status, err := exec.Command("git", "-C", dir, "status", "--porcelain").Output()
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(status)), "\n") {
		if line == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(line, "??"),
			"unexpected working tree change: %q", line)
	}
}

// TestInitCommandCustomName verifies the --name override reaches the
// manifest.
func TestInitCommandCustomName(t *testing.T) {
	dir := setupTemplateClone(t)

	require.NoError(t, execute(t, "init", "--path", dir, "--name", "renamed-service"))

	manifest, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "renamed-service")
}

// TestInitCommandInvalidName verifies name validation surfaces before any
// mutation.
func TestInitCommandInvalidName(t *testing.T) {
	dir := setupTemplateClone(t)

	err := execute(t, "init", "--path", dir, "--name", "bad name!")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)

	// The remote must still be present — nothing ran.
	out, gitErr := exec.Command("git", "-C", dir, "remote").Output()
	require.NoError(t, gitErr)
	assert.Contains(t, string(out), "origin")
}

// TestInitCommandOutsideRepo verifies the git-error exit code for a
// directory that is not a repository.
func TestInitCommandOutsideRepo(t *testing.T) {
	err := execute(t, "init", "--path", t.TempDir())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGitError, cliErr.Code)
}

// TestStatusCommand verifies status is read-only and reflects a completed
// bootstrap.
func TestStatusCommand(t *testing.T) {
	dir := setupTemplateClone(t)

	// Before: status must not mutate anything.
	require.NoError(t, execute(t, "status", "--path", dir))
	out, err := exec.Command("git", "-C", dir, "remote").Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "origin")

	require.NoError(t, execute(t, "init", "--path", dir))

	// After: every step's applied-check should hold.
	st, err := buildState(dir, "", "")
	require.NoError(t, err)
	report, err := bootstrap.NewRunner().Status(st)
	require.NoError(t, err)
	for _, res := range report.Results {
		assert.Equal(t, model.OutcomeApplied, res.Outcome,
			"step %q should report applied after init", res.Step)
	}
}

// TestBuildStateBranchOverride verifies the --branch plumbing.
func TestBuildStateBranchOverride(t *testing.T) {
	dir := setupTemplateClone(t)

	st, err := buildState(dir, "", "main")
	require.NoError(t, err)
	assert.Equal(t, "main", st.Config.Branch)
	assert.Equal(t, "my-project", st.ProjectName)
	assert.True(t, strings.HasSuffix(st.Repo.Root, "my-project"))
}
