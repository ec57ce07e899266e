// config.go implements the "sprout config" command group for reading and
// writing the user configuration file.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/sprout/internal/config"
	"github.com/mmr-tortoise/sprout/internal/model"
)

// NewConfigCommand creates the "config" parent command and its
// subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write sprout settings",
		Long: fmt.Sprintf(`Read and write settings in the user configuration file (%s).

Every setting can also be overridden per invocation with a SPROUT_*
environment variable, e.g. SPROUT_DEFAULT_BRANCH=main.

Known keys: %v`, config.FilePath(), config.Keys()),
	}

	cmd.AddCommand(NewConfigGetCommand())
	cmd.AddCommand(NewConfigSetCommand())

	return cmd
}

// NewConfigGetCommand creates the "config get" cobra command.
func NewConfigGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print a setting, or all settings when no key is given",
		Args:  cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runConfigGet(args[0])
			}
			return runConfigGetAll()
		},
	}

	return cmd
}

// runConfigGet prints the value of a single key.
func runConfigGet(key string) error {
	if !config.IsKnownKey(key) {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unknown configuration key %q (known keys: %v)", key, config.Keys()))
	}

	value := config.Get(key)
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{key: value}, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(value)
	return nil
}

// runConfigGetAll prints every known key with its current value.
func runConfigGetAll() error {
	if IsJSONOutput() {
		values := make(map[string]string, len(config.Keys()))
		for _, key := range config.Keys() {
			values[key] = config.Get(key)
		}
		data, _ := json.MarshalIndent(values, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, key := range config.Keys() {
		fmt.Printf("%s = %s\n", key, config.Get(key))
	}
	return nil
}

// NewConfigSetCommand creates the "config set" cobra command.
func NewConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting in the user configuration file",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}

	return cmd
}

// runConfigSet writes a key-value pair to the config file.
func runConfigSet(key, value string) error {
	if err := config.Set(key, value); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to update configuration", err)
	}

	VerboseLog("Wrote %s = %s to %s", key, value, config.FilePath())
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
