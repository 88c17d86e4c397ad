// SPDX-License-Identifier: MPL-2.0

package application

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/opencontainers/go-digest"

	"github.com/podenv/podenv/internal/capability"
	"github.com/podenv/podenv/internal/execctx"
)

// LocalImagePrefix names images built from inline Containerfiles.
const LocalImagePrefix = "localhost/podenv/"

// ErrInvalidApplication is the sentinel error wrapped by InvalidApplicationError.
var ErrInvalidApplication = errors.New("invalid application")

// validate is shared by every Application.Validate call.
var validate = validator.New()

type (
	// Application is the declarative description of a containerized program.
	// Values are never modified in place: every With* method returns a copy
	// that shares no slices or maps with the receiver.
	Application struct {
		Name          string `validate:"required,max=128,excludesall=/: "`
		Description   string
		Image         string `validate:"excluded_with=Containerfile"`
		Containerfile string
		Command       []string
		Environment   map[string]string
		Volumes       []string `validate:"dive,required"`
		Namespace     string   `validate:"omitempty,max=128,excludesall=/: "`
		WorkDir       string   `validate:"omitempty,startswith=/"`
		Capabilities  capability.Set
	}

	// InvalidApplicationError reports every problem found in one application.
	InvalidApplicationError struct {
		Name string
		Err  error
	}
)

// Error implements the error interface.
func (e *InvalidApplicationError) Error() string {
	return fmt.Sprintf("invalid application %q: %v", e.Name, e.Err)
}

// Unwrap returns ErrInvalidApplication and the underlying problems.
func (e *InvalidApplicationError) Unwrap() []error {
	return []error{ErrInvalidApplication, e.Err}
}

// Validate checks the structural constraints of the record and parses every
// declared volume. All problems are reported together.
func (a Application) Validate() error {
	var errs []error
	if err := validate.Struct(a); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("field %s fails %q", fe.Field(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(a.Environment)) {
		if key == "" || strings.ContainsAny(key, "= \t\n") {
			errs = append(errs, fmt.Errorf("environment key %q is not a valid variable name", key))
		}
	}
	for _, v := range a.Volumes {
		if _, err := execctx.ParseMount(v); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &InvalidApplicationError{Name: a.Name, Err: errors.Join(errs...)}
	}
	return nil
}

// NeedsBuild reports whether the application image is built locally from an
// inline Containerfile.
func (a Application) NeedsBuild() bool {
	return a.Containerfile != ""
}

// BuildTag returns the local image tag of an application built from its
// Containerfile. The tag changes whenever the Containerfile content does, so
// an edited recipe is never mistaken for the cached image. Applications that
// do not need a build return "".
func (a Application) BuildTag() string {
	if !a.NeedsBuild() {
		return ""
	}
	return LocalImagePrefix + repositoryName(a.Name) + ":" + digest.FromString(a.Containerfile).Encoded()[:12]
}

// repositoryName maps an application name onto an image repository path
// component: lowercase alphanumerics joined by '-'.
func repositoryName(name string) string {
	repo := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	repo = strings.Trim(repo, "-")
	if repo == "" {
		return "app"
	}
	return repo
}

// ImageRef returns the image the application runs: the built tag when a
// Containerfile is declared, else the declared image.
func (a Application) ImageRef() string {
	if a.NeedsBuild() {
		return a.BuildTag()
	}
	return a.Image
}

// WithName returns a copy of a with the given name.
func (a Application) WithName(name string) Application {
	out := a.clone()
	out.Name = name
	return out
}

// WithImage returns a copy of a running image instead of its previous image
// or Containerfile.
func (a Application) WithImage(image string) Application {
	out := a.clone()
	out.Image = image
	out.Containerfile = ""
	return out
}

// WithCommand returns a copy of a with command replacing the declared command.
func (a Application) WithCommand(command ...string) Application {
	out := a.clone()
	out.Command = slices.Clone(command)
	return out
}

// WithEnvironment returns a copy of a with key set to value.
func (a Application) WithEnvironment(key, value string) Application {
	out := a.clone()
	out.Environment[key] = value
	return out
}

// WithVolume returns a copy of a with the mount spec appended.
func (a Application) WithVolume(spec string) Application {
	out := a.clone()
	out.Volumes = append(out.Volumes, spec)
	return out
}

// WithNamespace returns a copy of a sharing the namespace keyed by key.
func (a Application) WithNamespace(key string) Application {
	out := a.clone()
	out.Namespace = key
	return out
}

// WithCapability returns a copy of a with the capability set to enabled.
func (a Application) WithCapability(id capability.ID, enabled bool) Application {
	out := a.clone()
	out.Capabilities = out.Capabilities.With(id, enabled)
	return out
}

func (a Application) clone() Application {
	out := a
	out.Command = slices.Clone(a.Command)
	out.Volumes = slices.Clone(a.Volumes)
	out.Environment = maps.Clone(a.Environment)
	if out.Environment == nil {
		out.Environment = make(map[string]string)
	}
	return out
}
