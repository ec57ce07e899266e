package envdesc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goodDescriptor is a realistic descriptor covering every section.
const goodDescriptor = `name: rust-dev
image: rust:1.82-bookworm
toolchain:
  - name: compiler
    bin: rustc
    version: ">=1.70"
  - name: cargo
  - name: formatter
    bin: rustfmt
libraries:
  - openssl
  - zlib
exports:
  LD_LIBRARY_PATH: "${libdirs}"
  RUST_SRC_PATH: /usr/lib/rustlib/src/rust/library
`

// TestParse verifies decoding of a full descriptor, including the Bin
// fallback on Tool.
func TestParse(t *testing.T) {
	d, err := Parse([]byte(goodDescriptor))
	require.NoError(t, err)

	assert.Equal(t, "rust-dev", d.Name)
	assert.Equal(t, "rust:1.82-bookworm", d.Image)
	require.Len(t, d.Toolchain, 3)

	assert.Equal(t, "rustc", d.Toolchain[0].Binary(), "explicit bin wins")
	assert.Equal(t, ">=1.70", d.Toolchain[0].Version)
	assert.Equal(t, "cargo", d.Toolchain[1].Binary(), "bin defaults to name")

	assert.Equal(t, []string{"openssl", "zlib"}, d.Libraries)
	assert.Equal(t, "${libdirs}", d.Exports["LD_LIBRARY_PATH"])
}

// TestParseDefaultName verifies that a descriptor without a name gets the
// "default" name.
func TestParseDefaultName(t *testing.T) {
	d, err := Parse([]byte("toolchain:\n  - name: make\n"))
	require.NoError(t, err)
	assert.Equal(t, "default", d.Name)
}

// TestParseSchemaViolations verifies that the schema rejects structurally
// broken descriptors with field-level diagnostics.
func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing toolchain", "name: dev\n"},
		{"empty toolchain", "toolchain: []\n"},
		{"tool without name", "toolchain:\n  - bin: gcc\n"},
		{"unknown top-level key", "toolchain:\n  - name: make\npackages: [gcc]\n"},
		{"non-string library", "toolchain:\n  - name: make\nlibraries: [42]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

// TestValidateSchemaIssues verifies that violations come back as issues
// (not as a hard error) with instance paths.
func TestValidateSchemaIssues(t *testing.T) {
	issues, err := ValidateSchema([]byte("toolchain:\n  - bin: gcc\n"))
	require.NoError(t, err)
	require.NotEmpty(t, issues)

	// At least one issue should point into the offending toolchain entry.
	found := false
	for _, issue := range issues {
		if issue.Path == "/toolchain/0" {
			found = true
		}
	}
	assert.True(t, found, "expected an issue at /toolchain/0, got %+v", issues)
}

// TestLoad verifies the file-based entry point and its missing-file error.
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(goodDescriptor), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rust-dev", d.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
