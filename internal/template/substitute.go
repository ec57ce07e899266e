package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// Substitute replaces every occurrence of token in the file at path with
// replacement, writing the result back in place with the file's original
// permission bits. It returns the number of occurrences replaced.
//
// A zero return with a nil error means the token was not found and the file
// was left untouched — callers decide whether that is "already applied" or
// an error.
//
// Returns a CLIError with ExitConfigError when the file does not exist,
// since a template without its manifest cannot be renamed.
func Substitute(path, token, replacement string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("manifest file not found: %s", path), err)
		}
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	count := strings.Count(content, token)
	if count == 0 {
		return 0, nil
	}

	updated := strings.ReplaceAll(content, token, replacement)

	// Preserve the original mode so e.g. a read-only manifest stays
	// read-only after the rewrite.
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return count, nil
}

// Contains reports whether the file at path currently contains the token.
// Used by the rename step's applied-check: a manifest without the token has
// already been renamed (or never carried it).
func Contains(path, token string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return strings.Contains(string(data), token), nil
}
