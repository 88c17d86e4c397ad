// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ModeRegular runs the application's declared command.
	ModeRegular Mode = iota
	// ModeShell runs an interactive shell instead of the declared command.
	ModeShell
)

// ErrInvalidEnvOverride is the sentinel error wrapped by InvalidEnvOverrideError.
var ErrInvalidEnvOverride = errors.New("invalid environment override")

type (
	// Mode selects what the container runs.
	Mode int

	// EnvVar is a single KEY=VALUE environment override.
	EnvVar struct {
		Key   string
		Value string
	}

	// Toggle is an explicit --<id> (Enabled) or --no-<id> capability override.
	Toggle struct {
		ID      string
		Enabled bool
	}

	// Overrides are the command-line adjustments of one invocation. Zero
	// values mean "not given".
	Overrides struct {
		// Namespace replaces the application's namespace-sharing key.
		Namespace string
		// Env entries are applied in order; the last write of a key wins.
		Env []EnvVar
		// Volumes are mount specs appended after the declared volumes.
		Volumes []string
		// Capabilities are applied in order after every other step.
		Capabilities []Toggle
		// Args are appended to the effective command.
		Args []string
		// Image replaces the application image reference.
		Image string
		// Home is a host directory bind-mounted at the same path and
		// exported as HOME. A leading "~" expands against the host home.
		Home string
	}

	// InvalidEnvOverrideError is returned for an --env value without '='.
	InvalidEnvOverrideError struct {
		Text string
	}
)

// String returns "regular" or "shell".
func (m Mode) String() string {
	if m == ModeShell {
		return "shell"
	}
	return "regular"
}

// Error implements the error interface.
func (e *InvalidEnvOverrideError) Error() string {
	return fmt.Sprintf("invalid environment override %q (expected KEY=VALUE)", e.Text)
}

// Unwrap returns ErrInvalidEnvOverride for errors.Is() compatibility.
func (e *InvalidEnvOverrideError) Unwrap() error { return ErrInvalidEnvOverride }

// ParseEnvVar parses KEY=VALUE. The value may be empty or contain '='.
func ParseEnvVar(text string) (EnvVar, error) {
	key, value, found := strings.Cut(text, "=")
	if !found || key == "" || strings.ContainsAny(key, " \t\n") {
		return EnvVar{}, &InvalidEnvOverrideError{Text: text}
	}
	return EnvVar{Key: key, Value: value}, nil
}
