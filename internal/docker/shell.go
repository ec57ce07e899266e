// shell.go implements the Docker container lifecycle for dev shells:
// creating, listing, stopping, and removing the long-lived containers
// that back `sprout env up` and friends.
//
// All managed containers carry the "sprout.managed-by" label, which
// separates them from unrelated containers on the same host.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/strslice"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// containerNamePrefix is prepended to the shell name to form the Docker
// container name, e.g. "sprout-env-rust-dev".
const containerNamePrefix = "sprout-env-"

// workspaceMountPath is where the project directory is bind-mounted
// inside the shell container.
const workspaceMountPath = "/workspace"

// CreateShellOptions carries everything needed to materialize a shell
// container.
type CreateShellOptions struct {
	// Name is the shell identifier, used for labels and the container name.
	Name string

	// Workspace is the absolute path of the project directory to mount.
	Workspace string

	// Image is the container image to run.
	Image string

	// Descriptor is the descriptor file path relative to the workspace,
	// recorded as a label for later inspection.
	Descriptor string

	// Env holds KEY=VALUE pairs injected into the container environment,
	// typically the descriptor's resolved exports.
	Env []string

	// Pull controls whether the image is pulled before creation. When
	// false, the image must already exist locally.
	Pull bool
}

// CreateShell pulls the image (when requested), creates a container with
// sprout labels and the workspace bind mount, and starts it. The
// container runs an idle process so it stays alive for exec sessions.
//
// Returns the created DevShell on success, or a model.CLIError with
// ExitDockerNotRunning when any Docker API call fails.
func CreateShell(ctx context.Context, cli *Client, opts CreateShellOptions) (*model.DevShell, error) {
	if opts.Pull {
		if err := pullImage(ctx, cli, opts.Image); err != nil {
			return nil, err
		}
	}

	shell := &model.DevShell{
		Name:       opts.Name,
		Workspace:  opts.Workspace,
		Image:      opts.Image,
		Descriptor: opts.Descriptor,
		Status:     model.ShellRunning,
		CreatedAt:  time.Now().UTC(),
	}

	config := &container.Config{
		Image: opts.Image,
		// The shell container has no entrypoint work of its own — it idles
		// so users can exec into it.
		Cmd:    strslice.StrSlice{"sleep", "infinity"},
		Env:    opts.Env,
		Labels: BuildLabels(shell),
	}

	hostConfig := &container.HostConfig{
		Binds: []string{opts.Workspace + ":" + workspaceMountPath},
	}

	containerName := containerNamePrefix + opts.Name
	created, err := cli.Inner().ContainerCreate(ctx, config, hostConfig, nil, nil, containerName)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create container %q", containerName),
			err,
		)
	}

	if err := cli.Inner().ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", containerName),
			err,
		)
	}

	shell.Containers = []model.ContainerInfo{{
		ContainerID:   created.ID,
		ContainerName: containerName,
		Status:        "running",
		Labels:        config.Labels,
	}}
	return shell, nil
}

// pullImage pulls the given image reference and drains the progress
// stream. The pull only completes once the stream is fully read.
func pullImage(ctx context.Context, cli *Client, ref string) error {
	reader, err := cli.Inner().ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to pull image %q", ref),
			err,
		)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("pull of image %q was interrupted", ref),
			err,
		)
	}
	return nil
}

// ListShells queries the Docker daemon for all sprout-managed containers
// (including stopped ones) and reconstructs one DevShell per shell name.
//
// All shell state derives from Docker labels and container runtime state;
// there is no external database.
func ListShells(ctx context.Context, cli *Client) ([]*model.DevShell, error) {
	// Filter server-side so unrelated containers never cross the wire.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	// Group containers by shell name, then build one DevShell per group.
	groups := make(map[string][]model.ContainerInfo)
	order := make([]string, 0, len(containers))
	for _, c := range containers {
		info := summaryToInfo(c)
		name := info.Labels[LabelName]
		if name == "" {
			continue
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], info)
	}

	shells := make([]*model.DevShell, 0, len(groups))
	for _, name := range order {
		shell, err := BuildDevShell(name, groups[name])
		if err != nil {
			return nil, err
		}
		shells = append(shells, shell)
	}
	return shells, nil
}

// ErrShellNotFound reports that no sprout-managed shell matched the
// requested name. Callers that treat absence as a normal condition (e.g.
// a pre-create existence check) test for it with errors.Is; every other
// FindShell error is a daemon or transport failure.
var ErrShellNotFound = errors.New("dev shell not found")

// FindShell returns the shell with the given name. When no such shell
// exists the returned error wraps ErrShellNotFound.
func FindShell(ctx context.Context, cli *Client, name string) (*model.DevShell, error) {
	shells, err := ListShells(ctx, cli)
	if err != nil {
		return nil, err
	}
	for _, shell := range shells {
		if shell.Name == name {
			return shell, nil
		}
	}
	return nil, errShellNotFound(name)
}

// errShellNotFound builds the not-found error: a CLIError for the exit
// code, wrapping the sentinel for errors.Is.
func errShellNotFound(name string) error {
	return model.WrapCLIError(
		model.ExitGeneralError,
		fmt.Sprintf("no dev shell named %q found", name),
		ErrShellNotFound,
	)
}

// summaryToInfo converts a Docker API container summary to the domain
// ContainerInfo, decoupling the rest of the application from SDK types.
func summaryToInfo(c container.Summary) model.ContainerInfo {
	// Docker returns names with a leading "/" that is an API artifact.
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Status:        c.State,
		Labels:        c.Labels,
	}
}

// BuildDevShell constructs a DevShell from a group of containers that
// share the same shell name. The base metadata comes from the first
// container's labels; the aggregate status from the group's runtime
// state.
func BuildDevShell(name string, containers []model.ContainerInfo) (*model.DevShell, error) {
	if len(containers) == 0 {
		return nil, fmt.Errorf("cannot build dev shell %q: no containers provided", name)
	}

	shell, err := ParseLabels(containers[0].Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse labels for dev shell %q: %w", name, err)
	}

	shell.Containers = containers
	shell.Status = determineStatus(containers, shell.Workspace)
	return shell, nil
}

// determineStatus calculates the aggregate status of a dev shell:
//
//  1. Orphaned: the workspace directory no longer exists on disk
//  2. Running: at least one container is running
//  3. Stopped: otherwise
func determineStatus(containers []model.ContainerInfo, workspace string) model.ShellStatus {
	if _, err := os.Stat(workspace); os.IsNotExist(err) {
		return model.ShellOrphaned
	}

	for _, c := range containers {
		if c.Status == "running" {
			return model.ShellRunning
		}
	}

	return model.ShellStopped
}

// StopShell stops every container of the shell. Docker sends SIGTERM and
// escalates to SIGKILL after its default timeout.
func StopShell(ctx context.Context, cli *Client, shell *model.DevShell) error {
	for _, c := range shell.Containers {
		err := cli.Inner().ContainerStop(ctx, c.ContainerID, container.StopOptions{})
		if err != nil {
			return model.WrapCLIError(
				model.ExitDockerNotRunning,
				fmt.Sprintf("failed to stop container %q", c.ContainerName),
				err,
			)
		}
	}
	return nil
}

// RemoveShell removes every container of the shell. When force is true,
// running containers are killed first.
func RemoveShell(ctx context.Context, cli *Client, shell *model.DevShell, force bool) error {
	for _, c := range shell.Containers {
		err := cli.Inner().ContainerRemove(ctx, c.ContainerID, container.RemoveOptions{
			Force: force,
		})
		if err != nil {
			return model.WrapCLIError(
				model.ExitDockerNotRunning,
				fmt.Sprintf("failed to remove container %q", c.ContainerName),
				err,
			)
		}
	}
	return nil
}
