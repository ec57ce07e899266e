package envdesc

import (
	"fmt"
	"sort"
	"strings"
)

// LibDirsToken is the placeholder in export values that expands to the
// colon-joined library directories of the descriptor's resolved libraries.
const LibDirsToken = "${libdirs}"

// ResolveExports computes the final environment variable values for a
// descriptor, expanding the ${libdirs} token with the given directories.
// Values without the token pass through verbatim.
func ResolveExports(d *Descriptor, libDirs []string) map[string]string {
	joined := strings.Join(libDirs, ":")

	resolved := make(map[string]string, len(d.Exports))
	for key, value := range d.Exports {
		resolved[key] = strings.ReplaceAll(value, LibDirsToken, joined)
	}
	return resolved
}

// FormatExports renders resolved exports as shell `export` lines, sorted
// by key for deterministic output. Values are double-quoted; embedded
// quotes are escaped so the lines are safe to eval.
func FormatExports(exports map[string]string) []string {
	keys := make([]string, 0, len(exports))
	for key := range exports {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.ReplaceAll(exports[key], `"`, `\"`)
		lines = append(lines, fmt.Sprintf("export %s=\"%s\"", key, value))
	}
	return lines
}

// FormatEnv renders resolved exports as KEY=VALUE pairs, sorted by key,
// for injection into a container environment.
func FormatEnv(exports map[string]string) []string {
	keys := make([]string, 0, len(exports))
	for key := range exports {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+exports[key])
	}
	return pairs
}
