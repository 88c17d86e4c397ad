// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// TargetPodman runs applications with the local engine.
	TargetPodman = "podman"
	// TargetKubernetes runs applications as pods through kubectl.
	TargetKubernetes = "kubernetes"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

type (
	// Config holds the podenv settings.
	Config struct {
		Engine        string   `json:"engine" mapstructure:"engine" validate:"required"`
		Kubectl       string   `json:"kubectl" mapstructure:"kubectl" validate:"required"`
		Target        string   `json:"target" mapstructure:"target" validate:"oneof=podman kubernetes"`
		Shell         []string `json:"shell" mapstructure:"shell" validate:"min=1,dive,required"`
		Apps          []string `json:"apps" mapstructure:"apps" validate:"dive,required"`
		KubeNamespace string   `json:"kube_namespace" mapstructure:"kube_namespace"`
	}

	// InvalidConfigError is returned when the merged settings, including
	// environment overrides, break a constraint.
	InvalidConfigError struct {
		FieldErrs []error
	}
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Engine:  "podman",
		Kubectl: "kubectl",
		Target:  TargetPodman,
		Shell:   []string{"/bin/bash"},
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrs))
	for _, err := range e.FieldErrs {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks the merged settings.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &InvalidConfigError{FieldErrs: []error{err}}
	}
	out := &InvalidConfigError{}
	for _, fe := range fieldErrs {
		out.FieldErrs = append(out.FieldErrs, fmt.Errorf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return out
}
