package gitutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory with an initialized git
// repository containing a single commit on a branch named "master".
// The branch name is pinned with `git init -b master` because several
// bootstrap operations (promote-branch in particular) care about the
// literal branch name, and the host's init.defaultBranch setting must not
// leak into the tests.
//
// It also configures a local user.name and user.email so that `git commit`
// works in CI environments where global git config may not be set.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runTestGit(t, dir, "init", "-b", "master")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	readme := filepath.Join(dir, "README.md")
	err := os.WriteFile(readme, []byte("# Test Repo\n"), 0644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit is a test helper that runs a git command in the specified
// directory and fails the test immediately on a non-zero exit status.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// TestOpen verifies that Open resolves the repository root from a nested
// path, and rejects a directory that is not a git repository.
func TestOpen(t *testing.T) {
	dir := setupTestRepo(t)

	sub := filepath.Join(dir, "nested", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0755))

	repo, err := Open(sub)
	require.NoError(t, err)

	// macOS may report the temp dir via a /private symlink; resolve both
	// sides before comparing.
	wantRoot, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(repo.Root)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)

	_, err = Open(t.TempDir())
	assert.Error(t, err, "Open should fail outside a git repository")
}

// TestRemotes verifies remote listing, presence checks, and removal,
// including the failure when removing a remote that does not exist.
func TestRemotes(t *testing.T) {
	dir := setupTestRepo(t)
	repo := &Repo{Root: dir}

	remotes, err := repo.Remotes()
	require.NoError(t, err)
	assert.Empty(t, remotes, "fresh repo should have no remotes")

	runTestGit(t, dir, "remote", "add", "origin", "https://example.com/template.git")

	has, err := repo.HasRemote("origin")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, repo.RemoveRemote("origin"))

	has, err = repo.HasRemote("origin")
	require.NoError(t, err)
	assert.False(t, has)

	// Removing again fails at the git level — the tolerable-skip policy
	// lives in the bootstrap step, not here.
	assert.Error(t, repo.RemoveRemote("origin"))
}

// TestOrphanCommitFlow exercises the sequence the bootstrap pipeline runs:
// orphan checkout, index reset, selective staging, commit, and finally
// branch promotion. This is the core git choreography of `sprout init`.
func TestOrphanCommitFlow(t *testing.T) {
	dir := setupTestRepo(t)
	repo := &Repo{Root: dir}

	// Add a second file so the index reset is observable: only README.md
	// gets staged for the squashed commit.
	extra := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(extra, []byte("scratch\n"), 0644))
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "second commit")

	count, err := repo.CommitCount("HEAD")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.CheckoutOrphan("sprout-init"))

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "sprout-init", branch, "CurrentBranch must work on an unborn branch")
	assert.False(t, repo.HeadExists(), "orphan branch has no commit yet")

	require.NoError(t, repo.UnstageAll())
	// UnstageAll on an already-empty index must not error.
	require.NoError(t, repo.UnstageAll())

	require.NoError(t, repo.Stage("README.md"))
	require.NoError(t, repo.Commit("Initial commit"))

	count, err = repo.CommitCount("HEAD")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "orphan branch should carry exactly one commit")

	// Promote: delete the old master (unmerged, so force is required),
	// then take over its name.
	assert.True(t, repo.BranchExists("master"))
	require.NoError(t, repo.DeleteBranch("master", true))
	require.NoError(t, repo.RenameBranch("master"))

	branch, err = repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
	assert.False(t, repo.BranchExists("sprout-init"))

	// The working tree still has the unstaged file; only the commit
	// contents were narrowed.
	_, statErr := os.Stat(extra)
	assert.NoError(t, statErr)
}

// TestDeleteBranchUnmergedNeedsForce verifies that deleting an unmerged
// branch without force fails, which is why the promote step always forces.
func TestDeleteBranchUnmergedNeedsForce(t *testing.T) {
	dir := setupTestRepo(t)
	repo := &Repo{Root: dir}

	runTestGit(t, dir, "checkout", "-b", "side")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "side.txt"), []byte("x\n"), 0644))
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "side commit")
	runTestGit(t, dir, "checkout", "master")

	assert.Error(t, repo.DeleteBranch("side", false))
	assert.NoError(t, repo.DeleteBranch("side", true))
}
