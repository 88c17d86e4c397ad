// SPDX-License-Identifier: MPL-2.0

package render

import (
	"errors"
	"fmt"

	"github.com/podenv/podenv/internal/execctx"
)

const (
	// TargetPodman renders `podman run` arguments for the local rootless engine.
	TargetPodman Target = "podman"
	// TargetKubernetes renders `kubectl run` arguments for a cluster.
	TargetKubernetes Target = "kubernetes"
)

var (
	// ErrUnsupportedOnTarget is the sentinel error wrapped by UnsupportedOnTargetError.
	ErrUnsupportedOnTarget = errors.New("unsupported on target")
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid runtime target")
	// ErrIncompleteContext is returned when a context lacks a field every
	// target requires.
	ErrIncompleteContext = errors.New("incomplete execution context")
)

type (
	// Target is a container runtime podenv can render for.
	Target string

	// InvalidTargetError is returned when a Target value is not recognized.
	InvalidTargetError struct {
		Value Target
	}

	// UnsupportedOnTargetError reports a context field that has no equivalent
	// on the target runtime. Capability names the capability id (or context
	// field) responsible for it.
	UnsupportedOnTargetError struct {
		Capability string
		Target     Target
		Detail     string
	}
)

// Targets returns every supported target.
func Targets() []Target {
	return []Target{TargetPodman, TargetKubernetes}
}

// String returns the string representation of the Target.
func (t Target) String() string { return string(t) }

// Validate returns an error if the Target is not supported.
func (t Target) Validate() error {
	switch t {
	case TargetPodman, TargetKubernetes:
		return nil
	default:
		return &InvalidTargetError{Value: t}
	}
}

// Program returns the default executable name of the target.
func (t Target) Program() string {
	if t == TargetKubernetes {
		return "kubectl"
	}
	return "podman"
}

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid runtime target %q (valid: podman, kubernetes)", e.Value)
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// Error implements the error interface.
func (e *UnsupportedOnTargetError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("capability %q is not supported on target %s", e.Capability, e.Target)
	}
	return fmt.Sprintf("capability %q is not supported on target %s: %s", e.Capability, e.Target, e.Detail)
}

// Unwrap returns ErrUnsupportedOnTarget for errors.Is() compatibility.
func (e *UnsupportedOnTargetError) Unwrap() error { return ErrUnsupportedOnTarget }

// Render returns the runtime arguments for c, without the program name.
func Render(c *execctx.Context, target Target) ([]string, error) {
	if c.Image == "" {
		return nil, fmt.Errorf("%w: no image", ErrIncompleteContext)
	}
	switch target {
	case TargetPodman:
		return renderPodman(c), nil
	case TargetKubernetes:
		return renderKubernetes(c)
	default:
		return nil, &InvalidTargetError{Value: target}
	}
}
