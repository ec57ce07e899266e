package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/sprout/internal/model"
	"github.com/mmr-tortoise/sprout/internal/template"
)

// isBootstrapCommit reports whether HEAD is the commit the initial-commit
// step records: its message matches the configured commit message and the
// committed manifest no longer carries the placeholder. Branch position and
// commit count alone cannot tell a completed bootstrap apart from a fresh
// clone of a single-commit template, so the applied-checks below require
// this as well.
func isBootstrapCommit(st *State) (bool, error) {
	if !st.Repo.HeadExists() {
		return false, nil
	}

	message, err := st.Repo.HeadMessage()
	if err != nil {
		return false, err
	}
	if message != st.Config.CommitMessage {
		return false, nil
	}

	if st.Config.Manifest != "" {
		content, err := st.Repo.FileAtHead(st.Config.Manifest)
		if err != nil {
			// Manifest absent from HEAD: not the commit the pipeline records.
			return false, nil
		}
		if strings.Contains(content, st.Config.Placeholder) {
			return false, nil
		}
	}
	return true, nil
}

// templateRemote is the remote name a fresh clone points at its template
// repository with. Detaching from it is the first pipeline step.
const templateRemote = "origin"

// detachRemoteStep removes the "origin" remote. An absent remote is a
// tolerable skip rather than a failure: the goal — detachment from the
// template's remote — is already satisfied, and a re-run after a partial
// failure must not abort here.
type detachRemoteStep struct{}

func (s *detachRemoteStep) ID() model.StepID { return model.StepDetachRemote }

func (s *detachRemoteStep) Applied(st *State) (bool, string, error) {
	has, err := st.Repo.HasRemote(templateRemote)
	if err != nil {
		return false, "", err
	}
	if !has {
		return true, fmt.Sprintf("remote %q already absent", templateRemote), nil
	}
	return false, "", nil
}

func (s *detachRemoteStep) Apply(st *State) (string, error) {
	if err := st.Repo.RemoveRemote(templateRemote); err != nil {
		return "", err
	}
	return fmt.Sprintf("removed remote %q", templateRemote), nil
}

// orphanBranchStep switches to a new branch with no inherited history and
// clears the index, so the later commit step controls exactly what the
// single initial commit contains.
type orphanBranchStep struct{}

func (s *orphanBranchStep) ID() model.StepID { return model.StepOrphanBranch }

func (s *orphanBranchStep) Applied(st *State) (bool, string, error) {
	current, err := st.Repo.CurrentBranch()
	if err != nil {
		return false, "", err
	}
	if current == workBranch {
		return true, "already on the bootstrap work branch", nil
	}

	// A previous run may have completed the whole branch dance already:
	// on the target branch with a single commit that is recognizably the
	// pipeline's own. A fresh clone of a single-commit template also sits
	// on the target branch with one commit, so the commit itself must be
	// inspected.
	if current == st.Config.Branch && st.Repo.HeadExists() {
		count, err := st.Repo.CommitCount("HEAD")
		if err != nil {
			return false, "", err
		}
		if count == 1 {
			ours, err := isBootstrapCommit(st)
			if err != nil {
				return false, "", err
			}
			if ours {
				return true, "history already squashed", nil
			}
		}
	}
	return false, "", nil
}

func (s *orphanBranchStep) Apply(st *State) (string, error) {
	if err := st.Repo.CheckoutOrphan(workBranch); err != nil {
		return "", err
	}
	// The orphan checkout inherits the previous HEAD's index; reset it so
	// the initial commit stages files explicitly.
	if err := st.Repo.UnstageAll(); err != nil {
		return "", err
	}
	return fmt.Sprintf("created orphan branch %q", workBranch), nil
}

// renameProjectStep substitutes the placeholder token in the project
// manifest with the project name. A manifest that no longer contains the
// token counts as applied; a missing manifest is a hard failure with a
// clear diagnostic.
type renameProjectStep struct{}

func (s *renameProjectStep) ID() model.StepID { return model.StepRenameProject }

func (s *renameProjectStep) Applied(st *State) (bool, string, error) {
	if st.Config.Manifest == "" {
		// Leave the failure to Apply so it is reported as this step
		// failing, not as a broken status check.
		return false, "", nil
	}

	path := filepath.Join(st.Repo.Root, st.Config.Manifest)
	has, err := template.Contains(path, st.Config.Placeholder)
	if err != nil {
		if os.IsNotExist(err) {
			return false, "", nil
		}
		return false, "", err
	}
	if !has {
		return true, fmt.Sprintf("placeholder %q not present in %s", st.Config.Placeholder, st.Config.Manifest), nil
	}
	return false, "", nil
}

func (s *renameProjectStep) Apply(st *State) (string, error) {
	if st.Config.Manifest == "" {
		return "", model.NewCLIError(model.ExitConfigError,
			"no project manifest found (probed Cargo.toml, package.json, pyproject.toml, go.mod; set \"manifest\" in template.jsonc)")
	}

	path := filepath.Join(st.Repo.Root, st.Config.Manifest)
	n, err := template.Substitute(path, st.Config.Placeholder, st.ProjectName)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("placeholder %q not found in %s", st.Config.Placeholder, st.Config.Manifest))
	}
	return fmt.Sprintf("replaced %d occurrence(s) of %q in %s", n, st.Config.Placeholder, st.Config.Manifest), nil
}

// initialCommitStep stages the manifest plus the configured auxiliary files
// and records them as the single initial commit.
type initialCommitStep struct{}

func (s *initialCommitStep) ID() model.StepID { return model.StepInitialCommit }

func (s *initialCommitStep) Applied(st *State) (bool, string, error) {
	current, err := st.Repo.CurrentBranch()
	if err != nil {
		return false, "", err
	}

	// On either the work branch or the promoted target branch, the step
	// counts as applied only when HEAD is the pipeline's own commit — a
	// template author's commit (single-commit templates are common) must
	// not pass for it.
	if (current == workBranch || current == st.Config.Branch) && st.Repo.HeadExists() {
		ours, err := isBootstrapCommit(st)
		if err != nil {
			return false, "", err
		}
		if !ours {
			return false, "", nil
		}
		if current == workBranch {
			return true, "initial commit already recorded", nil
		}
		count, err := st.Repo.CommitCount("HEAD")
		if err != nil {
			return false, "", err
		}
		if count == 1 {
			return true, "initial commit already recorded", nil
		}
	}
	return false, "", nil
}

func (s *initialCommitStep) Apply(st *State) (string, error) {
	if st.Config.Manifest == "" {
		return "", model.NewCLIError(model.ExitConfigError, "no project manifest to commit")
	}

	// Stage the manifest plus every configured auxiliary file that
	// actually exists. Templates vary in which auxiliary files they ship;
	// a missing one is not worth aborting a half-finished bootstrap over.
	files := []string{st.Config.Manifest}
	for _, extra := range st.Config.ExtraFiles {
		if _, err := os.Stat(filepath.Join(st.Repo.Root, extra)); err == nil {
			files = append(files, extra)
		}
	}

	if err := st.Repo.Stage(files...); err != nil {
		return "", err
	}
	if err := st.Repo.Commit(st.Config.CommitMessage); err != nil {
		return "", err
	}
	return fmt.Sprintf("committed %d file(s): %q", len(files), st.Config.CommitMessage), nil
}

// promoteBranchStep deletes the template's original target branch and
// renames the work branch to take its place.
type promoteBranchStep struct{}

func (s *promoteBranchStep) ID() model.StepID { return model.StepPromoteBranch }

func (s *promoteBranchStep) Applied(st *State) (bool, string, error) {
	current, err := st.Repo.CurrentBranch()
	if err != nil {
		return false, "", err
	}

	// Being on the target branch is only conclusive together with the
	// squashed history AND the pipeline's own commit at HEAD — a fresh
	// clone sits on the target branch too, possibly with a single commit
	// of its own.
	if current == st.Config.Branch && st.Repo.HeadExists() {
		count, err := st.Repo.CommitCount("HEAD")
		if err != nil {
			return false, "", err
		}
		if count == 1 {
			ours, err := isBootstrapCommit(st)
			if err != nil {
				return false, "", err
			}
			if ours {
				return true, fmt.Sprintf("already on branch %q", st.Config.Branch), nil
			}
		}
	}
	return false, "", nil
}

func (s *promoteBranchStep) Apply(st *State) (string, error) {
	// The old branch shares no history with the orphan branch, so plain
	// -d would refuse; force deletion is intended here.
	if st.Repo.BranchExists(st.Config.Branch) {
		if err := st.Repo.DeleteBranch(st.Config.Branch, true); err != nil {
			return "", err
		}
	}
	if err := st.Repo.RenameBranch(st.Config.Branch); err != nil {
		return "", err
	}
	return fmt.Sprintf("renamed %q to %q", workBranch, st.Config.Branch), nil
}

// removeScriptStep deletes a legacy bootstrap script from the working tree
// when the template still carries one. This preserves the self-removal
// behavior of script-based templates without sprout itself relying on it —
// completion is recorded by the marker step instead.
type removeScriptStep struct{}

func (s *removeScriptStep) ID() model.StepID { return model.StepRemoveScript }

func (s *removeScriptStep) Applied(st *State) (bool, string, error) {
	if st.Config.ScriptFile == "-" {
		return true, "script removal disabled", nil
	}
	path := filepath.Join(st.Repo.Root, st.Config.ScriptFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true, fmt.Sprintf("no %s in working tree", st.Config.ScriptFile), nil
	}
	return false, "", nil
}

func (s *removeScriptStep) Apply(st *State) (string, error) {
	path := filepath.Join(st.Repo.Root, st.Config.ScriptFile)
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", st.Config.ScriptFile, err)
	}
	return fmt.Sprintf("deleted %s", st.Config.ScriptFile), nil
}

// recordMarkerStep writes the completion marker. Running it last means the
// marker's presence implies every earlier step succeeded at least once.
type recordMarkerStep struct{}

func (s *recordMarkerStep) ID() model.StepID { return model.StepRecordMarker }

func (s *recordMarkerStep) Applied(st *State) (bool, string, error) {
	if IsBootstrapped(st.Repo) {
		return true, "completion marker already present", nil
	}
	return false, "", nil
}

func (s *recordMarkerStep) Apply(st *State) (string, error) {
	if err := WriteMarker(st.Repo, st.ProjectName); err != nil {
		return "", err
	}
	return "recorded completion marker", nil
}
