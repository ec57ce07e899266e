package gitutil

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// Repo is a handle to a git working tree. All methods run git with the
// repository root as the working directory (via `git -C`), so a Repo can be
// passed around and used regardless of the process's own cwd.
type Repo struct {
	// Root is the absolute path to the top-level directory of the
	// working tree.
	Root string
}

// Open resolves the repository containing the given path and returns a
// handle to it.
//
// This uses `git rev-parse --show-toplevel`, which works for both main
// working trees and linked worktrees. Returns a CLIError with ExitGitError
// if the path is not inside a git repository.
func Open(path string) (*Repo, error) {
	output, err := runGit(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	return &Repo{Root: strings.TrimSpace(output)}, nil
}

// Remotes returns the names of all configured remotes. The list is empty
// (not nil) for a repository with no remotes.
func (r *Repo) Remotes() ([]string, error) {
	output, err := runGit(r.Root, "remote")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, 1)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// HasRemote reports whether a remote with the given name is configured.
func (r *Repo) HasRemote(name string) (bool, error) {
	remotes, err := r.Remotes()
	if err != nil {
		return false, err
	}
	for _, remote := range remotes {
		if remote == name {
			return true, nil
		}
	}
	return false, nil
}

// RemoveRemote deletes the remote with the given name.
// Fails if the remote does not exist — callers that want tolerable-skip
// semantics should check HasRemote first.
func (r *Repo) RemoveRemote(name string) error {
	_, err := runGit(r.Root, "remote", "remove", name)
	return err
}

// CurrentBranch returns the name of the currently checked-out branch.
//
// Uses `git rev-parse --abbrev-ref HEAD` which returns the short branch
// name. For a freshly created orphan branch (no commit yet) rev-parse
// fails, so we fall back to `git branch --show-current`, which reports the
// branch name even on an unborn branch.
func (r *Repo) CurrentBranch() (string, error) {
	output, err := runGit(r.Root, "rev-parse", "--abbrev-ref", "HEAD")
	if err == nil {
		return strings.TrimSpace(output), nil
	}

	output, err = runGit(r.Root, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// BranchExists checks whether a local branch with the given name exists.
//
// This uses `git rev-parse --verify refs/heads/<branch>` which exits 0 if
// the ref exists and non-zero otherwise. We only care about the exit code.
func (r *Repo) BranchExists(branch string) bool {
	_, err := runGit(r.Root, "rev-parse", "--verify", "refs/heads/"+branch)
	return err == nil
}

// CheckoutOrphan switches to a new branch with no commit history.
//
// `git checkout --orphan` leaves the previous HEAD's files both in the
// working tree and in the index; the bootstrap pipeline resets the index
// afterwards (UnstageAll) so the initial commit contains only the files it
// explicitly stages.
func (r *Repo) CheckoutOrphan(branch string) error {
	_, err := runGit(r.Root, "checkout", "--orphan", branch)
	return err
}

// UnstageAll removes every entry from the index without touching the
// working tree. An already-empty index is not an error.
func (r *Repo) UnstageAll() error {
	_, err := runGit(r.Root, "rm", "-r", "--cached", ".")
	if err != nil {
		// `git rm --cached .` exits non-zero when the index is empty
		// ("did not match any files"). That state is exactly what the
		// caller wants, so it is not a failure.
		if strings.Contains(err.Error(), "did not match any files") {
			return nil
		}
		return err
	}
	return nil
}

// Stage adds the given paths (relative to the repository root) to the index.
func (r *Repo) Stage(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := runGit(r.Root, args...)
	return err
}

// Commit records the current index as a commit with the given message.
func (r *Repo) Commit(message string) error {
	_, err := runGit(r.Root, "commit", "-m", message)
	return err
}

// HeadExists reports whether HEAD points at a commit. It is false on an
// unborn branch (fresh `git init` or a just-created orphan branch).
func (r *Repo) HeadExists() bool {
	_, err := runGit(r.Root, "rev-parse", "--verify", "HEAD")
	return err == nil
}

// HeadMessage returns the subject line of the HEAD commit.
func (r *Repo) HeadMessage() (string, error) {
	output, err := runGit(r.Root, "log", "-1", "--format=%s")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// FileAtHead returns the content of a repository-relative path as committed
// at HEAD. Fails when HEAD is unborn or the path is not in the commit.
func (r *Repo) FileAtHead(path string) (string, error) {
	return runGit(r.Root, "show", "HEAD:"+path)
}

// CommitCount returns the number of commits reachable from the given ref.
func (r *Repo) CommitCount(ref string) (int, error) {
	output, err := runGit(r.Root, "rev-list", "--count", ref)
	if err != nil {
		return 0, err
	}

	count, convErr := strconv.Atoi(strings.TrimSpace(output))
	if convErr != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", output, convErr)
	}
	return count, nil
}

// DeleteBranch removes a local branch. With force set, unmerged branches
// are deleted as well (-D instead of -d), which the bootstrap needs because
// the template's original branch shares no history with the orphan branch.
func (r *Repo) DeleteBranch(branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := runGit(r.Root, "branch", flag, branch)
	return err
}

// RenameBranch renames the currently checked-out branch. The -M form
// overwrites an existing branch of the target name, which the promote step
// relies on after deleting the old target branch.
func (r *Repo) RenameBranch(newName string) error {
	_, err := runGit(r.Root, "branch", "-M", newName)
	return err
}

// runGit executes a git command with the given arguments in the specified
// directory.
//
// It captures stdout and stderr separately. On success it returns the
// stdout output. On failure it returns a model.CLIError with ExitGitError,
// including the stderr output in the error message for diagnostics.
//
// The dir parameter is passed to git via the -C flag, which causes git to
// change to that directory before doing anything else. This avoids mutating
// the process's working directory.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}
