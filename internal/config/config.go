// Package config manages the sprout user configuration file and its
// environment variable overrides.
//
// Settings live in ~/.config/sprout/config.yaml and can be overridden
// with SPROUT_* environment variables (e.g. SPROUT_DEFAULT_BRANCH).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// envPrefix namespaces environment overrides: SPROUT_DEFAULT_BRANCH
	// overrides the "default_branch" key.
	envPrefix = "SPROUT"

	// dirName is the directory under the user config root.
	dirName = "sprout"
)

// Known configuration keys. Unknown keys are rejected by Set so typos do
// not silently persist.
const (
	// KeyDefaultBranch overrides the branch the bootstrap promotes to.
	KeyDefaultBranch = "default_branch"

	// KeyPlaceholder overrides the manifest placeholder token.
	KeyPlaceholder = "placeholder"

	// KeyDescriptor overrides the default descriptor file name.
	KeyDescriptor = "descriptor"

	// KeyManifest overrides manifest auto-detection with a fixed file.
	KeyManifest = "manifest"
)

// knownKeys lists every key Set accepts.
var knownKeys = []string{KeyDefaultBranch, KeyPlaceholder, KeyDescriptor, KeyManifest}

// Dir returns the path to the sprout config directory, typically
// ~/.config/sprout on Linux.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+dirName)
	}
	return filepath.Join(base, dirName)
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	// A missing config file just means defaults apply.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// IsKnownKey reports whether the key is one of the supported settings.
func IsKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Keys returns the supported configuration keys.
func Keys() []string {
	keys := make([]string, len(knownKeys))
	copy(keys, knownKeys)
	return keys
}

// Set writes a config key-value pair and saves the config file. Unknown
// keys are rejected.
func Set(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown configuration key %q (known keys: %v)", key, knownKeys)
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// WriteConfigAs refuses to create a brand-new file in some versions,
	// so touch it first.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
