package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmr-tortoise/sprout/internal/model"
)

// Label key constants define the Docker label keys used to persist dev
// shell metadata on containers. These labels are the sole persistence
// mechanism — there is no external state file.
//
// All keys share the "sprout." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all sprout labels.
	LabelPrefix = "sprout."

	// LabelManagedBy identifies containers managed by sprout. This is the
	// primary label used for filtering and discovery.
	// Key: "sprout.managed-by", Value: always "sprout".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelName stores the dev shell's unique identifier.
	// Key: "sprout.name", Value: shell name (e.g. "rust-dev").
	LabelName = LabelPrefix + "name"

	// LabelWorkspace stores the absolute filesystem path of the project
	// directory mounted into the container.
	LabelWorkspace = LabelPrefix + "workspace"

	// LabelImage stores the container image the shell was created from.
	LabelImage = LabelPrefix + "image"

	// LabelDescriptor stores the descriptor file path the shell was
	// materialized from, relative to the workspace.
	LabelDescriptor = LabelPrefix + "descriptor"

	// LabelCreatedAt stores the shell creation timestamp.
	// Key: "sprout.created-at", Value: RFC3339 formatted timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
// All containers created by this CLI carry it, enabling discovery via
// Docker API label filters.
const ManagedByValue = "sprout"

// BuildLabels constructs a Docker label map from a DevShell. These labels
// allow full reconstruction of the DevShell from container inspection
// alone.
func BuildLabels(shell *model.DevShell) map[string]string {
	return map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelName:       shell.Name,
		LabelWorkspace:  shell.Workspace,
		LabelImage:      shell.Image,
		LabelDescriptor: shell.Descriptor,
		// UTC keeps the timestamp consistent regardless of the host
		// machine's timezone.
		LabelCreatedAt: shell.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ParseLabels reconstructs a DevShell from Docker container labels. This
// is the inverse of BuildLabels and is used when listing or inspecting
// containers to rebuild the domain model.
//
// Status and Containers are NOT reconstructed from labels because they
// are determined at runtime from Docker container state.
func ParseLabels(labels map[string]string) (*model.DevShell, error) {
	// Check all required labels at once so the error message can list
	// every missing label.
	requiredKeys := []string{
		LabelManagedBy,
		LabelName,
		LabelWorkspace,
		LabelImage,
		LabelCreatedAt,
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}

	return &model.DevShell{
		Name:       labels[LabelName],
		Workspace:  labels[LabelWorkspace],
		Image:      labels[LabelImage],
		Descriptor: labels[LabelDescriptor],
		CreatedAt:  createdAt,
	}, nil
}

// FilterLabels returns a label filter map that matches only containers
// managed by sprout, for use with the Docker API container listing
// endpoint.
func FilterLabels() map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
	}
}
