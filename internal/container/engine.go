// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrEngineNotAvailable is the sentinel error wrapped by EngineNotAvailableError.
var ErrEngineNotAvailable = errors.New("container engine not available")

type (
	// Engine defines the image operations podenv needs from a local engine.
	Engine interface {
		// Name returns the engine name (e.g. "podman").
		Name() string
		// Available checks if the engine binary answers on this system.
		Available(ctx context.Context) bool
		// ImageExists reports whether image is present in local storage.
		ImageExists(ctx context.Context, image string) (bool, error)
		// Build builds an image from a Containerfile.
		Build(ctx context.Context, opts BuildOptions) error
		// Pull fetches image from its registry.
		Pull(ctx context.Context, opts PullOptions) error
		// Kill stops the named container.
		Kill(ctx context.Context, name string) error
	}

	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context directory.
		ContextDir string
		// Containerfile is the recipe path, relative to ContextDir unless absolute.
		Containerfile string
		// Tag is the image tag.
		Tag string
		// Labels are attached to the built image.
		Labels map[string]string
		// NoCache disables the build cache.
		NoCache bool
		// Pull always refreshes base images.
		Pull bool
		// Stdout is where to write build output.
		Stdout io.Writer
		// Stderr is where to write build errors.
		Stderr io.Writer
	}

	// PullOptions contains options for pulling an image.
	PullOptions struct {
		Image  string
		Stdout io.Writer
		Stderr io.Writer
	}

	// EngineNotAvailableError is returned when the engine binary cannot be used.
	EngineNotAvailableError struct {
		Engine string
		Reason string
	}
)

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// Unwrap returns ErrEngineNotAvailable for errors.Is() compatibility.
func (e *EngineNotAvailableError) Unwrap() error { return ErrEngineNotAvailable }
