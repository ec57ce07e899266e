package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// ConfigFileName is the optional per-template configuration file, looked up
// at the repository root.
const ConfigFileName = "template.jsonc"

// Default values applied when template.jsonc is absent or leaves a field
// empty. The placeholder uses the double-underscore convention common in
// project templates to keep accidental matches unlikely.
const (
	DefaultPlaceholder   = "__PROJECT_NAME__"
	DefaultCommitMessage = "Initial commit"
	DefaultBranch        = "master"
	DefaultScriptFile    = "bootstrap.sh"
	DefaultDescriptor    = "devenv.yaml"
)

// manifestCandidates are the well-known manifest file names probed, in
// order, when template.jsonc does not name one explicitly.
var manifestCandidates = []string{
	"Cargo.toml",
	"package.json",
	"pyproject.toml",
	"go.mod",
}

// Config describes how a specific template wants to be bootstrapped.
// Zero values mean "use the default"; ApplyDefaults fills them in.
type Config struct {
	// Placeholder is the literal token substituted with the project name.
	Placeholder string `json:"placeholder,omitempty"`

	// Manifest is the repository-relative path of the configuration file
	// containing the placeholder. Empty means auto-detect.
	Manifest string `json:"manifest,omitempty"`

	// ExtraFiles are additional repository-relative paths staged into the
	// initial commit alongside the manifest. Defaults to the env-loading
	// config, the ignore list, and the environment descriptor.
	ExtraFiles []string `json:"extraFiles,omitempty"`

	// CommitMessage is the message of the single initial commit.
	CommitMessage string `json:"commitMessage,omitempty"`

	// Branch is the branch name the repository ends up on.
	Branch string `json:"branch,omitempty"`

	// ScriptFile is the legacy bootstrap script removed from the working
	// tree if the template still carries one. Set to "-" to disable the
	// removal step entirely.
	ScriptFile string `json:"scriptFile,omitempty"`
}

// Load reads the template configuration from <root>/template.jsonc.
// A missing file is not an error — the defaults describe a usable
// bootstrap for templates that ship no configuration at all.
//
// Returns a CLIError with ExitConfigError when the file exists but cannot
// be parsed, since silently bootstrapping with defaults would ignore the
// template author's intent.
func Load(root string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to read %s", ConfigFileName), err)
		}
		// No template.jsonc — run with defaults.
	} else {
		// Strip JSONC comments and trailing commas before handing the
		// bytes to encoding/json. Unknown fields are silently ignored,
		// which lets templates carry extra metadata for other tools.
		if jsonErr := json.Unmarshal(jsonc.ToJSON(data), cfg); jsonErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", ConfigFileName), jsonErr)
		}
	}

	cfg.ApplyDefaults(root)
	return cfg, nil
}

// ApplyDefaults fills empty fields with their default values and resolves
// the manifest by probing the well-known candidates when none is named.
// The manifest may still be empty afterwards if the template contains no
// recognizable manifest file; the rename step reports that as a failure.
func (c *Config) ApplyDefaults(root string) {
	if c.Placeholder == "" {
		c.Placeholder = DefaultPlaceholder
	}
	if c.CommitMessage == "" {
		c.CommitMessage = DefaultCommitMessage
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.ScriptFile == "" {
		c.ScriptFile = DefaultScriptFile
	}
	if len(c.ExtraFiles) == 0 {
		c.ExtraFiles = []string{".envrc", ".gitignore", DefaultDescriptor}
	}
	if c.Manifest == "" {
		c.Manifest = DetectManifest(root)
	}
}

// DetectManifest probes the well-known manifest names in the repository
// root and returns the first one that exists, or "" when none do.
func DetectManifest(root string) string {
	for _, candidate := range manifestCandidates {
		if _, err := os.Stat(filepath.Join(root, candidate)); err == nil {
			return candidate
		}
	}
	return ""
}
