package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStepIDIsValid verifies that every predefined pipeline step is accepted
// and arbitrary strings are rejected.
func TestStepIDIsValid(t *testing.T) {
	valid := []StepID{
		StepDetachRemote, StepOrphanBranch, StepRenameProject,
		StepInitialCommit, StepPromoteBranch, StepRemoveScript, StepRecordMarker,
	}
	for _, id := range valid {
		assert.True(t, id.IsValid(), "step %q should be valid", id)
	}

	assert.False(t, StepID("self-destruct").IsValid())
	assert.False(t, StepID("").IsValid())
}

// TestParseStepID verifies string→StepID conversion, including
// case-insensitivity and the error path for unknown steps.
func TestParseStepID(t *testing.T) {
	id, err := ParseStepID("Detach-Remote")
	require.NoError(t, err)
	assert.Equal(t, StepDetachRemote, id)

	_, err = ParseStepID("bogus")
	assert.Error(t, err)
}

// TestBootstrapReportFailed verifies that Failed returns the first failed
// step result, and nil when every step applied or skipped.
func TestBootstrapReportFailed(t *testing.T) {
	report := &BootstrapReport{
		Results: []StepResult{
			{Step: StepDetachRemote, Outcome: OutcomeSkipped},
			{Step: StepOrphanBranch, Outcome: OutcomeApplied},
			{Step: StepRenameProject, Outcome: OutcomeFailed, Detail: "manifest missing"},
		},
	}

	failed := report.Failed()
	require.NotNil(t, failed)
	assert.Equal(t, StepRenameProject, failed.Step)

	clean := &BootstrapReport{
		Results: []StepResult{
			{Step: StepDetachRemote, Outcome: OutcomeApplied},
		},
	}
	assert.Nil(t, clean.Failed())
}

// TestValidateProjectName covers the accepted and rejected name shapes.
// The name ends up in the manifest and in container names, so only
// alphanumerics and interior hyphens are allowed.
func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "my-project", false},
		{"single char", "x", false},
		{"digits", "project2", false},
		{"empty", "", true},
		{"leading hyphen", "-project", true},
		{"trailing hyphen", "project-", true},
		{"underscore", "my_project", true},
		{"slash", "my/project", true},
		{"spaces", "my project", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if tt.wantErr {
				assert.Error(t, err, "name %q should be rejected", tt.input)
			} else {
				assert.NoError(t, err, "name %q should be accepted", tt.input)
			}
		})
	}
}

// TestCLIErrorUnwrap verifies that CLIError participates in Go's error
// wrapping chain so callers can use errors.Is on the underlying cause.
func TestCLIErrorUnwrap(t *testing.T) {
	underlying := errors.New("boom")
	err := WrapCLIError(ExitGitError, "git remote remove failed", underlying)

	assert.True(t, errors.Is(err, underlying))
	assert.Equal(t, ExitGitError, err.Code)
	assert.Contains(t, err.Error(), "git remote remove failed")
	assert.Contains(t, err.Error(), "boom")

	bare := NewCLIError(ExitConfigError, "template.jsonc is malformed")
	assert.Nil(t, bare.Unwrap())
	assert.Equal(t, "template.jsonc is malformed", bare.Error())
}
