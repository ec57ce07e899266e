package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/sprout/internal/gitutil"
)

// Marker records a completed bootstrap. It lives under .git/ so it is
// invisible to the project's own version control and survives until the
// repository itself is deleted.
type Marker struct {
	// Project is the name the template was bootstrapped as.
	Project string `yaml:"project"`

	// CompletedAt is when the pipeline finished.
	CompletedAt time.Time `yaml:"completedAt"`
}

// MarkerPath returns the completion marker location for a repository:
// <root>/.git/sprout/bootstrapped.
//
// Bootstrapping only makes sense in a main working tree (a fresh template
// clone), where .git is a directory, so the path is built directly rather
// than resolving linked-worktree gitdir indirection.
func MarkerPath(repo *gitutil.Repo) string {
	return filepath.Join(repo.Root, ".git", "sprout", "bootstrapped")
}

// IsBootstrapped reports whether the completion marker exists.
func IsBootstrapped(repo *gitutil.Repo) bool {
	_, err := os.Stat(MarkerPath(repo))
	return err == nil
}

// WriteMarker records bootstrap completion for the repository.
func WriteMarker(repo *gitutil.Repo, project string) error {
	marker := Marker{
		Project:     project,
		CompletedAt: time.Now().UTC(),
	}

	data, err := yaml.Marshal(&marker)
	if err != nil {
		return fmt.Errorf("failed to encode completion marker: %w", err)
	}

	path := MarkerPath(repo)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write completion marker: %w", err)
	}
	return nil
}

// ReadMarker loads the completion marker, or an error if it is absent or
// unreadable.
func ReadMarker(repo *gitutil.Repo) (*Marker, error) {
	data, err := os.ReadFile(MarkerPath(repo))
	if err != nil {
		return nil, err
	}

	var marker Marker
	if err := yaml.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("failed to parse completion marker: %w", err)
	}
	return &marker, nil
}
