package docker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// TestShellNotFoundError verifies that the not-found error stays
// distinguishable from daemon failures via errors.Is while still carrying
// the CLI exit code.
func TestShellNotFoundError(t *testing.T) {
	err := errShellNotFound("rust-dev")

	assert.True(t, errors.Is(err, ErrShellNotFound))
	assert.Contains(t, err.Error(), `"rust-dev"`)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)

	// A list/daemon failure must not read as "not found".
	daemonErr := model.WrapCLIError(model.ExitDockerNotRunning,
		"failed to list Docker containers", errors.New("connection refused"))
	assert.False(t, errors.Is(daemonErr, ErrShellNotFound))
}
