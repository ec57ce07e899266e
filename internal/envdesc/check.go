package envdesc

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CommandRunner executes a binary with arguments and returns its combined
// output. Injectable so tests can stub out tool invocations.
type CommandRunner func(bin string, args ...string) (string, error)

// LookPathFunc resolves a binary name to an absolute path, mirroring
// exec.LookPath. Injectable for tests.
type LookPathFunc func(bin string) (string, error)

// versionPattern extracts the first semver-looking token from a tool's
// --version output, tolerating a leading "v" and two- or three-part
// versions ("1.82", "go1.25.0", "rustc 1.82.0 (f6e511eec 2024-10-15)").
var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// ToolStatus is the verification result for one declared tool.
type ToolStatus struct {
	// Name is the descriptor's tool name.
	Name string `json:"name"`

	// Bin is the executable that was looked up.
	Bin string `json:"bin"`

	// Path is the resolved absolute path, empty when missing.
	Path string `json:"path,omitempty"`

	// Version is the version extracted from --version output, when a
	// constraint was declared.
	Version string `json:"version,omitempty"`

	// Satisfied is true when the tool resolved and any declared version
	// constraint holds.
	Satisfied bool `json:"satisfied"`

	// Detail explains an unsatisfied status.
	Detail string `json:"detail,omitempty"`
}

// LibraryStatus is the resolution result for one declared library.
type LibraryStatus struct {
	// Name is the pkg-config package name.
	Name string `json:"name"`

	// LibDir is the library directory reported by pkg-config, empty when
	// the package could not be resolved.
	LibDir string `json:"libDir,omitempty"`

	// Found is true when pkg-config resolved the package.
	Found bool `json:"found"`

	// Detail explains a missing library.
	Detail string `json:"detail,omitempty"`
}

// Report is the outcome of checking a descriptor against the host.
type Report struct {
	// Tools holds one entry per declared toolchain entry, in order.
	Tools []ToolStatus `json:"tools"`

	// Libraries holds one entry per declared library, in order.
	Libraries []LibraryStatus `json:"libraries,omitempty"`

	// OK is true when every tool and library is satisfied.
	OK bool `json:"ok"`
}

// LibDirs returns the library directories of all resolved libraries, in
// declaration order and deduplicated. This feeds the ${libdirs} export.
func (r *Report) LibDirs() []string {
	seen := make(map[string]bool, len(r.Libraries))
	dirs := make([]string, 0, len(r.Libraries))
	for _, lib := range r.Libraries {
		if lib.Found && lib.LibDir != "" && !seen[lib.LibDir] {
			seen[lib.LibDir] = true
			dirs = append(dirs, lib.LibDir)
		}
	}
	return dirs
}

// Checker verifies a descriptor against the host system.
type Checker struct {
	run      CommandRunner
	lookPath LookPathFunc
}

// NewChecker creates a Checker backed by the real PATH lookup and command
// execution.
func NewChecker() *Checker {
	return &Checker{
		run:      runCommand,
		lookPath: exec.LookPath,
	}
}

// NewCheckerWith creates a Checker with injected lookup and execution,
// for tests.
func NewCheckerWith(lookPath LookPathFunc, run CommandRunner) *Checker {
	return &Checker{run: run, lookPath: lookPath}
}

// Check verifies every declared tool and library. It never returns an
// error for an unsatisfied environment — that is the Report's job — only
// for internal failures.
func (c *Checker) Check(d *Descriptor) *Report {
	report := &Report{OK: true}

	for _, tool := range d.Toolchain {
		status := c.checkTool(tool)
		if !status.Satisfied {
			report.OK = false
		}
		report.Tools = append(report.Tools, status)
	}

	for _, lib := range d.Libraries {
		status := c.checkLibrary(lib)
		if !status.Found {
			report.OK = false
		}
		report.Libraries = append(report.Libraries, status)
	}

	return report
}

// checkTool resolves one tool on PATH and verifies its version constraint,
// if any.
func (c *Checker) checkTool(tool Tool) ToolStatus {
	status := ToolStatus{Name: tool.Name, Bin: tool.Binary()}

	path, err := c.lookPath(status.Bin)
	if err != nil {
		status.Detail = fmt.Sprintf("%s not found on PATH", status.Bin)
		return status
	}
	status.Path = path

	if tool.Version == "" {
		status.Satisfied = true
		return status
	}

	constraint, err := semver.NewConstraint(tool.Version)
	if err != nil {
		status.Detail = fmt.Sprintf("invalid version constraint %q: %v", tool.Version, err)
		return status
	}

	output, err := c.run(status.Bin, "--version")
	if err != nil {
		status.Detail = fmt.Sprintf("%s --version failed: %v", status.Bin, err)
		return status
	}

	version, err := extractVersion(output)
	if err != nil {
		status.Detail = fmt.Sprintf("could not parse version from %s --version output", status.Bin)
		return status
	}
	status.Version = version.String()

	if !constraint.Check(version) {
		status.Detail = fmt.Sprintf("version %s does not satisfy %q", version, tool.Version)
		return status
	}

	status.Satisfied = true
	return status
}

// checkLibrary resolves one library's libdir through pkg-config.
func (c *Checker) checkLibrary(name string) LibraryStatus {
	status := LibraryStatus{Name: name}

	output, err := c.run("pkg-config", "--variable=libdir", name)
	if err != nil {
		status.Detail = fmt.Sprintf("pkg-config could not resolve %q: %v", name, err)
		return status
	}

	libDir := strings.TrimSpace(output)
	if libDir == "" {
		status.Detail = fmt.Sprintf("pkg-config reports no libdir for %q", name)
		return status
	}

	status.LibDir = libDir
	status.Found = true
	return status
}

// extractVersion pulls the first version token out of --version output and
// parses it as semver. Two-part versions ("1.82") are padded by the semver
// library's lenient parser.
func extractVersion(output string) (*semver.Version, error) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return nil, fmt.Errorf("no version token in %q", strings.TrimSpace(output))
	}
	return semver.NewVersion(match[1])
}

// runCommand is the default CommandRunner: run the binary and capture
// combined output, so version banners printed to stderr still count.
func runCommand(bin string, args ...string) (string, error) {
	// #nosec G204 — the binary name comes from the descriptor the user
	// wrote, and this runs with the user's own privileges.
	output, err := exec.Command(bin, args...).CombinedOutput()
	return string(output), err
}
