package envdesc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// DefaultFileName is the descriptor file looked up at the project root.
const DefaultFileName = "devenv.yaml"

// Descriptor is the parsed environment descriptor.
type Descriptor struct {
	// Name identifies the environment. Defaults to "default".
	Name string `yaml:"name"`

	// Image is the container image used when the environment is
	// materialized as a dev shell (`sprout env up`). Optional for
	// host-only usage (check/export).
	Image string `yaml:"image,omitempty"`

	// Toolchain lists the tools the environment requires.
	Toolchain []Tool `yaml:"toolchain"`

	// Libraries lists pkg-config package names of linked libraries whose
	// library directories feed the ${libdirs} export token.
	Libraries []string `yaml:"libraries,omitempty"`

	// Exports are the environment variables the shell should export.
	// Values are plain strings except for the ${libdirs} token.
	Exports map[string]string `yaml:"exports,omitempty"`
}

// Tool is one required toolchain entry.
type Tool struct {
	// Name identifies the tool ("compiler", "formatter", ...). Also used
	// as the executable name when Bin is empty.
	Name string `yaml:"name"`

	// Bin is the executable looked up on PATH. Defaults to Name.
	Bin string `yaml:"bin,omitempty"`

	// Version is an optional semver constraint (e.g. ">=1.70") checked
	// against the tool's --version output.
	Version string `yaml:"version,omitempty"`
}

// Binary returns the executable name to look up for this tool.
func (t Tool) Binary() string {
	if t.Bin != "" {
		return t.Bin
	}
	return t.Name
}

// Load reads and parses a descriptor file, validating it against the
// embedded schema first so malformed documents fail with field-level
// diagnostics instead of zero-valued structs.
//
// Returns a CLIError with ExitDescriptorError when the file is missing,
// unparseable, or schema-invalid.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitDescriptorError,
				fmt.Sprintf("environment descriptor not found: %s", path), err)
		}
		return nil, model.WrapCLIError(model.ExitDescriptorError,
			fmt.Sprintf("failed to read %s", path), err)
	}

	return Parse(data)
}

// Parse validates and decodes descriptor bytes.
func Parse(data []byte) (*Descriptor, error) {
	issues, err := ValidateSchema(data)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDescriptorError,
			"failed to validate environment descriptor", err)
	}
	if len(issues) > 0 {
		return nil, model.NewCLIError(model.ExitDescriptorError,
			fmt.Sprintf("invalid environment descriptor: %s", formatIssues(issues)))
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		// Schema validation already parsed the YAML once, so this only
		// triggers on type mismatches the schema could not express.
		return nil, model.WrapCLIError(model.ExitDescriptorError,
			"failed to decode environment descriptor", err)
	}

	if d.Name == "" {
		d.Name = "default"
	}
	return &d, nil
}
