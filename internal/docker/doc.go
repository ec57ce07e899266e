// Package docker wraps the Docker Engine SDK client for managing
// containerized development shells.
//
// It abstracts Docker API interactions and provides sprout-specific
// functionality such as label-based shell discovery and automatic
// Docker socket detection across platforms.
package docker
