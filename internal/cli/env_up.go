// env_up.go implements the container lifecycle subcommands of
// "sprout env": up, list, and down.
//
// A dev shell is a long-lived container created from the descriptor's
// image, with the project directory bind-mounted at /workspace and the
// descriptor's exports injected into the environment. All shell state is
// persisted as Docker labels on the containers.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/sprout/internal/docker"
	"github.com/mmr-tortoise/sprout/internal/envdesc"
	"github.com/mmr-tortoise/sprout/internal/model"
)

// envUpFlags holds the flag values for the "env up" command.
type envUpFlags struct {
	file string // --file: descriptor path override
	name string // --name: shell name override
	pull bool   // --pull: pull the image before creating
}

// NewEnvUpCommand creates the "env up" cobra command.
func NewEnvUpCommand() *cobra.Command {
	flags := &envUpFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start a containerized dev shell from the descriptor",
		Long: `Create and start a container from the descriptor's image, with the
current project directory mounted at /workspace and the declared
environment variables injected.

The descriptor must declare an image. The container idles until stopped,
so it can be entered with "docker exec".

Examples:
  sprout env up
  sprout env up --pull
  sprout env up --name review --file env/devenv.yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvUp(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Descriptor file (default: devenv.yaml)")
	cmd.Flags().StringVar(&flags.name, "name", "", "Shell name (default: descriptor name)")
	cmd.Flags().BoolVar(&flags.pull, "pull", false, "Pull the image before creating the container")

	return cmd
}

// runEnvUp materializes the descriptor as a running container.
func runEnvUp(cmd *cobra.Command, flags *envUpFlags) error {
	ctx := cmd.Context()

	descriptor, descriptorPath, err := loadDescriptor(flags.file)
	if err != nil {
		return err
	}
	if descriptor.Image == "" {
		return model.NewCLIError(model.ExitDescriptorError,
			"descriptor declares no image — add an \"image:\" field to run the environment as a container")
	}

	name := flags.name
	if name == "" {
		name = descriptor.Name
	}
	if err := model.ValidateProjectName(name); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid shell name", err)
	}

	workspace, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	workspace, err = filepath.Abs(workspace)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve workspace path", err)
	}

	// Inside the container the host's library directories do not apply,
	// so the ${libdirs} token resolves to nothing there.
	resolved := envdesc.ResolveExports(descriptor, nil)

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	// Refuse to create a second shell under the same name. Only the
	// not-found case may proceed — a failing daemon must surface here,
	// not as a confusing create error later.
	existing, err := docker.FindShell(ctx, cli, name)
	if err != nil && !errors.Is(err, docker.ErrShellNotFound) {
		return err
	}
	if existing != nil {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("dev shell %q already exists (status: %s)", existing.Name, existing.Status))
	}

	relDescriptor, relErr := filepath.Rel(workspace, descriptorPath)
	if relErr != nil {
		relDescriptor = descriptorPath
	}

	VerboseLog("Creating dev shell %q from image %s", name, descriptor.Image)
	shell, err := docker.CreateShell(ctx, cli, docker.CreateShellOptions{
		Name:       name,
		Workspace:  workspace,
		Image:      descriptor.Image,
		Descriptor: relDescriptor,
		Env:        envdesc.FormatEnv(resolved),
		Pull:       flags.pull,
	})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(shell, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Started dev shell %q\n", shell.Name)
	fmt.Printf("  Image:     %s\n", shell.Image)
	fmt.Printf("  Workspace: %s\n", shell.Workspace)
	fmt.Printf("  Enter it with: docker exec -it %s sh\n", shell.Containers[0].ContainerName)
	return nil
}

// NewEnvListCommand creates the "env list" cobra command.
func NewEnvListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dev shells managed by sprout",
		Long: `List every dev shell container managed by sprout on this host,
including stopped ones, with their aggregate status.

Examples:
  sprout env list
  sprout env list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvList(cmd)
		},
	}

	return cmd
}

// runEnvList prints all managed shells.
func runEnvList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	shells, err := docker.ListShells(ctx, cli)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(shells, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(shells) == 0 {
		fmt.Println("No dev shells found.")
		return nil
	}

	fmt.Printf("%-20s %-10s %-30s %s\n", "NAME", "STATUS", "IMAGE", "WORKSPACE")
	for _, shell := range shells {
		fmt.Printf("%-20s %-10s %-30s %s\n", shell.Name, shell.Status, shell.Image, shell.Workspace)
	}
	return nil
}

// envDownFlags holds the flag values for the "env down" command.
type envDownFlags struct {
	remove bool // --rm: remove containers after stopping
	force  bool // --force: kill running containers when removing
}

// NewEnvDownCommand creates the "env down" cobra command.
func NewEnvDownCommand() *cobra.Command {
	flags := &envDownFlags{}

	cmd := &cobra.Command{
		Use:   "down <name>",
		Short: "Stop (and optionally remove) a dev shell",
		Long: `Stop the containers of the named dev shell. With --rm the containers
are removed as well, which discards the shell entirely.

Examples:
  sprout env down rust-dev
  sprout env down rust-dev --rm
  sprout env down rust-dev --rm --force`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvDown(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.remove, "rm", false, "Remove the containers after stopping")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Kill running containers when removing")

	return cmd
}

// runEnvDown stops and optionally removes the named shell.
func runEnvDown(cmd *cobra.Command, name string, flags *envDownFlags) error {
	ctx := cmd.Context()

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	shell, err := docker.FindShell(ctx, cli, name)
	if err != nil {
		return err
	}

	if flags.remove && flags.force {
		// Force removal kills running containers, no separate stop needed.
		VerboseLog("Force-removing dev shell %q", name)
		if err := docker.RemoveShell(ctx, cli, shell, true); err != nil {
			return err
		}
		fmt.Printf("Removed dev shell %q\n", name)
		return nil
	}

	if shell.Status == model.ShellRunning {
		VerboseLog("Stopping dev shell %q", name)
		if err := docker.StopShell(ctx, cli, shell); err != nil {
			return err
		}
	}

	if flags.remove {
		if err := docker.RemoveShell(ctx, cli, shell, false); err != nil {
			return err
		}
		fmt.Printf("Removed dev shell %q\n", name)
		return nil
	}

	fmt.Printf("Stopped dev shell %q\n", name)
	return nil
}
