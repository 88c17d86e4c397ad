// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Compile-time interface check
var _ Engine = (*PodmanEngine)(nil)

// PodmanEngine implements the Engine interface using Podman CLI.
// It embeds BaseCLIEngine for common CLI operations.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a Podman engine for binary. Bare names are
// resolved through PATH; an unresolved name is kept so Available reports it.
func NewPodmanEngine(binary string, opts ...BaseCLIEngineOption) *PodmanEngine {
	if binary == "" {
		binary = "podman"
	}
	path := binary
	if resolved, err := exec.LookPath(binary); err == nil {
		path = resolved
	}
	return &PodmanEngine{BaseCLIEngine: NewBaseCLIEngine(path, opts...)}
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available(ctx context.Context) bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(ctx, "version", "--format", "{{.Version}}")
	return cmd.Run() == nil
}

// ImageExists checks if an image exists. `image exists` answers 1 for a
// missing image; any other failure is an error.
func (e *PodmanEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	cmd := e.CreateCommand(ctx, "image", "exists", image)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check image %s: %w", image, err)
}

// Build builds an image from a Containerfile.
func (e *PodmanEngine) Build(ctx context.Context, opts BuildOptions) error {
	cmd := e.CreateCommand(ctx, e.BuildArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		return buildContainerError(e.Name(), opts, err)
	}
	return nil
}

// Pull fetches an image.
func (e *PodmanEngine) Pull(ctx context.Context, opts PullOptions) error {
	cmd := e.CreateCommand(ctx, e.PullArgs(opts.Image)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		return pullImageError(e.Name(), opts.Image, err)
	}
	return nil
}

// Kill stops the named container.
func (e *PodmanEngine) Kill(ctx context.Context, name string) error {
	return e.RunCommandStatus(ctx, e.KillArgs(name)...)
}
