package envdesc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost builds lookup/runner stubs describing a host: which binaries
// exist, what their --version prints, and which pkg-config packages
// resolve to which libdir.
func fakeHost(binaries map[string]string, libdirs map[string]string) (LookPathFunc, CommandRunner) {
	lookPath := func(bin string) (string, error) {
		if _, ok := binaries[bin]; ok {
			return "/usr/bin/" + bin, nil
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", bin)
	}

	run := func(bin string, args ...string) (string, error) {
		if bin == "pkg-config" && len(args) == 2 && args[0] == "--variable=libdir" {
			if dir, ok := libdirs[args[1]]; ok {
				return dir + "\n", nil
			}
			return "", fmt.Errorf("Package %s was not found in the pkg-config search path", args[1])
		}
		if banner, ok := binaries[bin]; ok {
			return banner + "\n", nil
		}
		return "", fmt.Errorf("unknown binary %q", bin)
	}

	return lookPath, run
}

// TestCheckSatisfied verifies the all-green path: tools resolve, version
// constraints hold, libraries resolve, and LibDirs collects in order.
func TestCheckSatisfied(t *testing.T) {
	lookPath, run := fakeHost(
		map[string]string{
			"rustc": "rustc 1.82.0 (f6e511eec 2024-10-15)",
			"cargo": "cargo 1.82.0",
		},
		map[string]string{
			"openssl": "/usr/lib/x86_64-linux-gnu",
			"zlib":    "/usr/lib",
		},
	)

	d := &Descriptor{
		Toolchain: []Tool{
			{Name: "compiler", Bin: "rustc", Version: ">=1.70"},
			{Name: "cargo"},
		},
		Libraries: []string{"openssl", "zlib"},
	}

	report := NewCheckerWith(lookPath, run).Check(d)
	assert.True(t, report.OK)

	require.Len(t, report.Tools, 2)
	assert.True(t, report.Tools[0].Satisfied)
	assert.Equal(t, "/usr/bin/rustc", report.Tools[0].Path)
	assert.Equal(t, "1.82.0", report.Tools[0].Version)
	assert.True(t, report.Tools[1].Satisfied)
	assert.Empty(t, report.Tools[1].Version, "no constraint means no version probe")

	assert.Equal(t, []string{"/usr/lib/x86_64-linux-gnu", "/usr/lib"}, report.LibDirs())
}

// TestCheckMissingTool verifies that an unresolvable binary flags the
// report without aborting the remaining checks.
func TestCheckMissingTool(t *testing.T) {
	lookPath, run := fakeHost(map[string]string{"make": "GNU Make 4.3"}, nil)

	d := &Descriptor{
		Toolchain: []Tool{
			{Name: "linter", Bin: "clippy-driver"},
			{Name: "make"},
		},
	}

	report := NewCheckerWith(lookPath, run).Check(d)
	assert.False(t, report.OK)
	assert.False(t, report.Tools[0].Satisfied)
	assert.Contains(t, report.Tools[0].Detail, "not found on PATH")
	assert.True(t, report.Tools[1].Satisfied, "later tools are still checked")
}

// TestCheckVersionConstraint covers satisfied and unsatisfied constraints,
// plus version extraction from noisy banners.
func TestCheckVersionConstraint(t *testing.T) {
	lookPath, run := fakeHost(map[string]string{
		"go":    "go version go1.25.0 linux/amd64",
		"rustc": "rustc 1.65.0",
	}, nil)

	d := &Descriptor{
		Toolchain: []Tool{
			{Name: "go", Version: ">=1.22"},
			{Name: "compiler", Bin: "rustc", Version: ">=1.70"},
		},
	}

	report := NewCheckerWith(lookPath, run).Check(d)
	assert.False(t, report.OK)

	assert.True(t, report.Tools[0].Satisfied)
	assert.Equal(t, "1.25.0", report.Tools[0].Version)

	assert.False(t, report.Tools[1].Satisfied)
	assert.Contains(t, report.Tools[1].Detail, "does not satisfy")
}

// TestCheckMissingLibrary verifies the pkg-config failure path.
func TestCheckMissingLibrary(t *testing.T) {
	lookPath, run := fakeHost(
		map[string]string{"make": "GNU Make 4.3"},
		map[string]string{"zlib": "/usr/lib"},
	)

	d := &Descriptor{
		Toolchain: []Tool{{Name: "make"}},
		Libraries: []string{"nonexistent", "zlib"},
	}

	report := NewCheckerWith(lookPath, run).Check(d)
	assert.False(t, report.OK)
	assert.False(t, report.Libraries[0].Found)
	assert.True(t, report.Libraries[1].Found)
	assert.Equal(t, []string{"/usr/lib"}, report.LibDirs())
}

// TestLibDirsDeduplicates verifies that two libraries sharing a libdir
// contribute it once.
func TestLibDirsDeduplicates(t *testing.T) {
	report := &Report{
		Libraries: []LibraryStatus{
			{Name: "openssl", LibDir: "/usr/lib", Found: true},
			{Name: "zlib", LibDir: "/usr/lib", Found: true},
		},
	}
	assert.Equal(t, []string{"/usr/lib"}, report.LibDirs())
}

// TestExtractVersion covers the banner shapes seen in the wild.
func TestExtractVersion(t *testing.T) {
	tests := []struct {
		banner string
		want   string
	}{
		{"rustc 1.82.0 (f6e511eec 2024-10-15)", "1.82.0"},
		{"go version go1.25.0 linux/amd64", "1.25.0"},
		{"cc (Debian 12.2.0-14) 12.2.0", "12.2.0"},
		{"v2.4", "2.4.0"},
	}

	for _, tt := range tests {
		v, err := extractVersion(tt.banner)
		require.NoError(t, err, "banner %q", tt.banner)
		assert.Equal(t, tt.want, v.String(), "banner %q", tt.banner)
	}

	_, err := extractVersion("no digits here")
	assert.Error(t, err)
}

// TestResolveAndFormatExports verifies ${libdirs} expansion and the two
// output renderings.
func TestResolveAndFormatExports(t *testing.T) {
	d := &Descriptor{
		Exports: map[string]string{
			"LD_LIBRARY_PATH": "${libdirs}",
			"RUST_SRC_PATH":   "/usr/lib/rustlib/src",
		},
	}

	resolved := ResolveExports(d, []string{"/usr/lib", "/opt/ssl/lib"})
	assert.Equal(t, "/usr/lib:/opt/ssl/lib", resolved["LD_LIBRARY_PATH"])
	assert.Equal(t, "/usr/lib/rustlib/src", resolved["RUST_SRC_PATH"])

	lines := FormatExports(resolved)
	assert.Equal(t, []string{
		`export LD_LIBRARY_PATH="/usr/lib:/opt/ssl/lib"`,
		`export RUST_SRC_PATH="/usr/lib/rustlib/src"`,
	}, lines)

	pairs := FormatEnv(resolved)
	assert.Equal(t, []string{
		"LD_LIBRARY_PATH=/usr/lib:/opt/ssl/lib",
		"RUST_SRC_PATH=/usr/lib/rustlib/src",
	}, pairs)
}
