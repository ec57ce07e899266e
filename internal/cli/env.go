// env.go implements the "sprout env" command group: verifying and
// exporting the development environment declared in the descriptor file.
//
// Subcommands:
//   - check:  verify tools, version constraints, and libraries on the host
//   - export: print shell export lines for the descriptor's variables
//
// Container lifecycle subcommands (up, list, down) live in env_up.go.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/sprout/internal/config"
	"github.com/mmr-tortoise/sprout/internal/envdesc"
	"github.com/mmr-tortoise/sprout/internal/model"
)

// envFlags holds flag values shared by the env subcommands.
type envFlags struct {
	file string // --file: descriptor path override
}

// NewEnvCommand creates the "env" parent command and its subcommands.
func NewEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Verify and materialize the declared development environment",
		Long: `Work with the environment descriptor (devenv.yaml): verify that the
declared toolchain is available on the host, export the declared
environment variables, or run the environment as a container.`,
	}

	cmd.AddCommand(NewEnvCheckCommand())
	cmd.AddCommand(NewEnvExportCommand())
	cmd.AddCommand(NewEnvUpCommand())
	cmd.AddCommand(NewEnvListCommand())
	cmd.AddCommand(NewEnvDownCommand())

	return cmd
}

// NewEnvCheckCommand creates the "env check" cobra command.
func NewEnvCheckCommand() *cobra.Command {
	flags := &envFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the declared toolchain against the host",
		Long: `Check every tool and library declared in the environment descriptor:
tools must resolve on PATH and satisfy their version constraints,
libraries must resolve through pkg-config.

Exits non-zero when any requirement is unsatisfied.

Examples:
  sprout env check
  sprout env check --file env/devenv.yaml --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvCheck(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Descriptor file (default: devenv.yaml)")

	return cmd
}

// runEnvCheck loads the descriptor, checks it against the host, and
// prints the per-tool report.
func runEnvCheck(flags *envFlags) error {
	descriptor, _, err := loadDescriptor(flags.file)
	if err != nil {
		return err
	}
	VerboseLog("Checking environment %q (%d tools, %d libraries)",
		descriptor.Name, len(descriptor.Toolchain), len(descriptor.Libraries))

	report := envdesc.NewChecker().Check(descriptor)
	printCheckReport(descriptor, report)

	if !report.OK {
		return model.NewCLIError(model.ExitToolchainError, "environment requirements not satisfied")
	}
	return nil
}

// NewEnvExportCommand creates the "env export" cobra command.
func NewEnvExportCommand() *cobra.Command {
	flags := &envFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print shell export lines for the declared variables",
		Long: `Resolve the descriptor's exported environment variables and print them
as shell export lines, suitable for eval or an .envrc file. The
${libdirs} token expands to the colon-joined library directories of the
descriptor's resolved libraries.

Examples:
  eval "$(sprout env export)"
  sprout env export --file env/devenv.yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvExport(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Descriptor file (default: devenv.yaml)")

	return cmd
}

// runEnvExport resolves the exports (running the library checks to expand
// ${libdirs}) and prints them.
func runEnvExport(flags *envFlags) error {
	descriptor, _, err := loadDescriptor(flags.file)
	if err != nil {
		return err
	}

	report := envdesc.NewChecker().Check(descriptor)
	resolved := envdesc.ResolveExports(descriptor, report.LibDirs())

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(resolved, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, line := range envdesc.FormatExports(resolved) {
		fmt.Println(line)
	}
	return nil
}

// loadDescriptor resolves the descriptor path (flag > user config >
// default name in the current directory) and loads it. The resolved path
// is returned alongside the descriptor for display purposes.
func loadDescriptor(fileFlag string) (*envdesc.Descriptor, string, error) {
	path := fileFlag
	if path == "" {
		path = config.Get(config.KeyDescriptor)
	}
	if path == "" {
		path = envdesc.DefaultFileName
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", model.WrapCLIError(model.ExitGeneralError, "failed to resolve descriptor path", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, "", model.WrapCLIError(model.ExitDescriptorError,
			fmt.Sprintf("environment descriptor %s not found", path), err)
	}

	descriptor, err := envdesc.Load(abs)
	if err != nil {
		return nil, "", err
	}
	return descriptor, abs, nil
}

// printCheckReport outputs the check results in text or JSON format.
func printCheckReport(d *envdesc.Descriptor, report *envdesc.Report) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Environment %q\n", d.Name)
	fmt.Println("  Tools:")
	for _, tool := range report.Tools {
		if tool.Satisfied {
			version := tool.Version
			if version == "" {
				version = "ok"
			}
			fmt.Printf("    + %-16s %s (%s)\n", tool.Name, version, tool.Path)
		} else {
			fmt.Printf("    ! %-16s %s\n", tool.Name, tool.Detail)
		}
	}

	if len(report.Libraries) > 0 {
		fmt.Println("  Libraries:")
		for _, lib := range report.Libraries {
			if lib.Found {
				fmt.Printf("    + %-16s %s\n", lib.Name, lib.LibDir)
			} else {
				fmt.Printf("    ! %-16s %s\n", lib.Name, lib.Detail)
			}
		}
	}

	if report.OK {
		fmt.Println("All requirements satisfied.")
	} else {
		fmt.Println("Unsatisfied requirements found.")
	}
}
