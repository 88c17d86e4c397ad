// SPDX-License-Identifier: MPL-2.0

package application

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"mvdan.cc/sh/v3/shell"

	"github.com/podenv/podenv/internal/capability"
	"github.com/podenv/podenv/pkg/cueutil"
)

//go:embed apps_schema.cue
var appsSchema []byte

type (
	// File is the on-disk shape of an application file.
	File struct {
		Apps map[string]Record `json:"apps" toml:"apps" jsonschema:"description=Applications keyed by name"`
	}

	// Record is one application entry of a File.
	Record struct {
		Description   string            `json:"description,omitempty" toml:"description" jsonschema:"description=Human readable summary shown by --list"`
		Image         string            `json:"image,omitempty" toml:"image" jsonschema:"description=Image reference to run"`
		Containerfile string            `json:"containerfile,omitempty" toml:"containerfile" jsonschema:"description=Inline Containerfile built into localhost/podenv/<name>"`
		Command       any               `json:"command,omitempty" toml:"command" jsonschema:"oneof_type=string;array,description=Command as an argument list or a shell-quoted string"`
		Environment   map[string]string `json:"environment,omitempty" toml:"environment" jsonschema:"description=Environment variables"`
		Volumes       []string          `json:"volumes,omitempty" toml:"volumes" jsonschema:"description=Mounts in name|hostPath[:containerPath[:ro]] form"`
		Namespace     string            `json:"namespace,omitempty" toml:"namespace" jsonschema:"description=Namespace-sharing key"`
		WorkDir       string            `json:"workdir,omitempty" toml:"workdir" jsonschema:"description=Working directory inside the container"`
		Capabilities  map[string]bool   `json:"capabilities,omitempty" toml:"capabilities" jsonschema:"description=Capability toggles keyed by capability id"`
	}
)

// Load reads an application file. Files ending in ".toml" are decoded as
// TOML; everything else is validated against the CUE #Apps schema.
func Load(path string) ([]Application, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application file %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data, path)
	}
	return ParseCUE(data, path)
}

// ParseCUE decodes CUE application data.
func ParseCUE(data []byte, filename string) ([]Application, error) {
	result, err := cueutil.ParseAndDecode[File](appsSchema, data, "#Apps", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return result.Value.Applications()
}

// ParseTOML decodes TOML application data. Unknown keys are rejected, the
// same way the CUE schema closes its definitions.
func ParseTOML(data []byte, filename string) ([]Application, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %s", filename, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f.Applications()
}

// Applications converts every record to a validated Application, sorted by
// name.
func (f File) Applications() ([]Application, error) {
	apps := make([]Application, 0, len(f.Apps))
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(f.Apps)) {
		app, err := f.Apps[name].toApplication(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		apps = append(apps, app)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return apps, nil
}

func (r Record) toApplication(name string) (Application, error) {
	command, err := commandArgs(r.Command)
	if err != nil {
		return Application{}, &InvalidApplicationError{Name: name, Err: err}
	}
	caps, err := capability.NewSet(r.Capabilities)
	if err != nil {
		return Application{}, &InvalidApplicationError{Name: name, Err: err}
	}
	app := Application{
		Name:          name,
		Description:   r.Description,
		Image:         r.Image,
		Containerfile: r.Containerfile,
		Command:       command,
		Environment:   maps.Clone(r.Environment),
		Volumes:       slices.Clone(r.Volumes),
		Namespace:     r.Namespace,
		WorkDir:       r.WorkDir,
		Capabilities:  caps,
	}
	if app.Environment == nil {
		app.Environment = make(map[string]string)
	}
	if err := app.Validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

// commandArgs accepts a list of strings or a single shell-quoted string.
// Variable references in the string form are kept verbatim for the
// container to see.
func commandArgs(v any) ([]string, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case string:
		args, err := shell.Fields(c, func(name string) string { return "$" + name })
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", c, err)
		}
		return args, nil
	case []string:
		return slices.Clone(c), nil
	case []any:
		args := make([]string, 0, len(c))
		for i, elem := range c {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("command[%d]: expected string, got %T", i, elem)
			}
			args = append(args, s)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("command: expected string or list of strings, got %T", v)
	}
}
