// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrBuildFailed is the sentinel error wrapped by FailedError.
	ErrBuildFailed = errors.New("build failed")

	// ErrBuildRequiredButMissing is the sentinel error wrapped by RequiredButMissingError.
	ErrBuildRequiredButMissing = errors.New("build required but missing")
)

type (
	// Env prepares the image an application runs.
	Env interface {
		// Name identifies the environment in messages.
		Name() string
		// Info describes what Execute would do, for display.
		Info() string
		// Ready reports whether the image is already available.
		Ready(ctx context.Context) bool
		// Execute prepares the image.
		Execute(ctx context.Context) error
		// Update refreshes the image regardless of readiness.
		Update(ctx context.Context) error
	}

	// FailedError is returned when an Env's Execute or Update fails.
	FailedError struct {
		Env string
		Op  string
		Err error
	}

	// RequiredButMissingError is returned for an application that can be
	// neither pulled nor built.
	RequiredButMissingError struct {
		App string
	}
)

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("%s of %s failed: %v", e.Op, e.Env, e.Err)
}

// Unwrap returns ErrBuildFailed and the underlying cause.
func (e *FailedError) Unwrap() []error { return []error{ErrBuildFailed, e.Err} }

// Error implements the error interface.
func (e *RequiredButMissingError) Error() string {
	return fmt.Sprintf("application %q declares neither an image nor a containerfile", e.App)
}

// Unwrap returns ErrBuildRequiredButMissing for errors.Is() compatibility.
func (e *RequiredButMissingError) Unwrap() error { return ErrBuildRequiredButMissing }

// NeedsBuild reports whether env must run before the application starts.
// A nil env never needs a build.
func NeedsBuild(ctx context.Context, env Env) bool {
	if env == nil {
		return false
	}
	return !env.Ready(ctx)
}

// Execute runs env. Failures are fatal for the invocation.
func Execute(ctx context.Context, env Env) error {
	if env == nil {
		return nil
	}
	slog.Debug("preparing image", "env", env.Name())
	if err := env.Execute(ctx); err != nil {
		return &FailedError{Env: env.Name(), Op: "build", Err: err}
	}
	return nil
}

// Update refreshes env. It is only ever triggered explicitly.
func Update(ctx context.Context, env Env) error {
	if env == nil {
		return nil
	}
	slog.Debug("updating image", "env", env.Name())
	if err := env.Update(ctx); err != nil {
		return &FailedError{Env: env.Name(), Op: "update", Err: err}
	}
	return nil
}
