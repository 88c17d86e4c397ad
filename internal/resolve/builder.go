// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"maps"
	"path"
	"slices"

	"github.com/podenv/podenv/internal/capability"
	"github.com/podenv/podenv/internal/execctx"
	"github.com/podenv/podenv/pkg/application"
)

// DefaultShell is the command run in ModeShell unless WithShell overrides it.
var DefaultShell = []string{"/bin/bash"}

type (
	// Builder constructs execution contexts. It holds only immutable inputs,
	// so one Builder may serve concurrent Build calls.
	Builder struct {
		host  execctx.Host
		shell []string
	}

	// Option configures a Builder.
	Option func(*Builder)
)

// WithShell sets the command started in ModeShell.
func WithShell(command ...string) Option {
	return func(b *Builder) {
		if len(command) > 0 {
			b.shell = slices.Clone(command)
		}
	}
}

// NewBuilder returns a Builder resolving host-derived capability paths
// against host.
func NewBuilder(host execctx.Host, opts ...Option) *Builder {
	b := &Builder{host: host, shell: slices.Clone(DefaultShell)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves the execution context of app. The result depends only on
// the arguments and the Builder's host snapshot.
//
// Malformed mount specs fail with *execctx.InvalidMountSpecError and unknown
// capability toggles with *capability.UnknownCapabilityError; in both cases
// no context is returned.
func (b *Builder) Build(app application.Application, mode Mode, o Overrides, name string) (*execctx.Context, error) {
	toggles, err := lookupToggles(o.Capabilities)
	if err != nil {
		return nil, err
	}
	declared, err := b.parseMounts(app.Volumes)
	if err != nil {
		return nil, err
	}
	extra, err := b.parseMounts(o.Volumes)
	if err != nil {
		return nil, err
	}
	home, err := b.homeMount(o.Home)
	if err != nil {
		return nil, err
	}

	// 1. Hard defaults, then the application record.
	c := execctx.New()
	c.Image = app.ImageRef()
	c.Command = slices.Clone(app.Command)
	maps.Copy(c.Environment, app.Environment)
	c.WorkDir = app.WorkDir
	if app.Namespace != "" {
		c.Namespace = execctx.SharedNamespace(app.Namespace)
	}
	for _, m := range declared {
		c.AddMount(m)
	}

	// 2. Fold the registry in order; disabled capabilities do not run.
	for _, entry := range capability.All() {
		if entry.Get(app.Capabilities) {
			entry.Apply(true, b.host, c)
		}
	}

	// 3. Mode. Shell forces terminal and interactive without recording them
	// in the application's capability set.
	if mode == ModeShell {
		c.Command = slices.Clone(b.shell)
		c.Terminal = true
		c.Interactive = true
	}
	c.Command = append(c.Command, o.Args...)

	// 4a. Namespace override replaces.
	if o.Namespace != "" {
		c.Namespace = execctx.SharedNamespace(o.Namespace)
	}

	// Home directory, before the overrides that may replace its mount or HOME.
	if home != nil {
		c.AddMount(*home)
		c.SetEnv("HOME", home.ContainerPath)
	}

	// 4b. Environment overrides, last write wins.
	for _, kv := range o.Env {
		c.SetEnv(kv.Key, kv.Value)
	}

	// 4c. Volume overrides append.
	for _, m := range extra {
		c.AddMount(m)
	}

	// 4d. Capability toggles, in order, each re-running one mutation.
	for i, t := range o.Capabilities {
		toggles[i].Apply(t.Enabled, b.host, c)
	}

	// 4e. Image override replaces.
	if o.Image != "" {
		c.Image = o.Image
	}

	// 5. Container name.
	c.Name = name
	if c.Name == "" {
		c.Name = app.Name
	}

	// 6. A private network inside a shared namespace joins the owner's network.
	if c.Namespace.IsShared() && c.Network == execctx.NetworkPrivate {
		c.Network = execctx.NetworkShared
	}

	return c, nil
}

func (b *Builder) parseMounts(specs []string) ([]execctx.Mount, error) {
	mounts := make([]execctx.Mount, 0, len(specs))
	for _, spec := range specs {
		m, err := execctx.ParseMount(spec)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, m.ExpandHome(b.host.Home))
	}
	return mounts, nil
}

func (b *Builder) homeMount(dir string) (*execctx.Mount, error) {
	if dir == "" {
		return nil, nil
	}
	m := execctx.Mount{
		Name:          "home",
		Source:        dir,
		ContainerPath: dir,
		Kind:          execctx.MountBind,
		Origin:        execctx.OriginVolume,
	}.ExpandHome(b.host.Home)
	if !path.IsAbs(m.Source) {
		return nil, &execctx.InvalidMountSpecError{Text: dir, Reason: "home directory must be absolute or start with '~/'"}
	}
	m.Source = path.Clean(m.Source)
	m.ContainerPath = m.Source
	return &m, nil
}

func lookupToggles(toggles []Toggle) ([]capability.Capability, error) {
	caps := make([]capability.Capability, len(toggles))
	var errs []error
	for i, t := range toggles {
		c, err := capability.Lookup(t.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		caps[i] = c
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return caps, nil
}
