// SPDX-License-Identifier: MPL-2.0

package render

import (
	"slices"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/podenv/podenv/internal/execctx"
)

const (
	// AnnotationImage records the image the context runs.
	AnnotationImage = "io.podenv.image"
	// AnnotationNamespace records the namespace-sharing key of the context.
	AnnotationNamespace = "io.podenv.namespace"
	// AnnotationSecurity lists the security flags of the context.
	AnnotationSecurity = "io.podenv.security"
	// AnnotationDevices lists device paths that could not be resolved to a
	// device node on the host and are therefore missing from linux.devices.
	AnnotationDevices = "io.podenv.unresolved-devices"
)

type (
	// DeviceLookup describes the host device node at path.
	DeviceLookup func(path string) (specs.LinuxDevice, error)

	// OCIOption configures OCISpec.
	OCIOption func(*ociOptions)

	ociOptions struct {
		lookup DeviceLookup
	}
)

// WithDeviceLookup replaces the host device lookup.
func WithDeviceLookup(fn DeviceLookup) OCIOption {
	return func(o *ociOptions) {
		o.lookup = fn
	}
}

// OCISpec exports c as an OCI runtime-spec document. The root filesystem is
// left as the conventional "rootfs" directory; the image is recorded as an
// annotation. Shared namespaces have no path representation outside a
// running engine and are recorded as an annotation as well.
//
// Devices are described from the host node (type, major, minor) and allowed
// in the device cgroup. A device missing on the host is listed under
// AnnotationDevices instead.
func OCISpec(c *execctx.Context, opts ...OCIOption) *specs.Spec {
	o := ociOptions{lookup: hostDevice}
	for _, opt := range opts {
		opt(&o)
	}

	cwd := c.WorkDir
	if cwd == "" {
		cwd = "/"
	}

	env := make([]string, 0, len(c.Environment))
	for _, k := range c.EnvKeys() {
		env = append(env, k+"="+c.Environment[k])
	}

	spec := &specs.Spec{
		Version:  specs.Version,
		Hostname: c.Name,
		Root:     &specs.Root{Path: "rootfs"},
		Process: &specs.Process{
			Terminal: c.Terminal,
			Args:     slices.Clone(c.Command),
			Env:      env,
			Cwd:      cwd,
		},
		Annotations: map[string]string{AnnotationImage: c.Image},
		Linux:       &specs.Linux{},
	}
	if c.RunAsRoot {
		spec.Process.User = specs.User{UID: 0, GID: 0}
	}
	if c.HasSecurity(execctx.SecurityPtrace) {
		caps := []string{"CAP_SYS_PTRACE"}
		spec.Process.Capabilities = &specs.LinuxCapabilities{
			Bounding:  caps,
			Effective: caps,
			Permitted: caps,
		}
	}
	if flags := c.SecurityFlags(); len(flags) > 0 {
		names := make([]string, len(flags))
		for i, f := range flags {
			names[i] = string(f)
		}
		spec.Annotations[AnnotationSecurity] = strings.Join(names, ",")
	}

	for _, m := range c.Mounts {
		opts := []string{"rbind"}
		if m.ReadOnly {
			opts = append(opts, "ro")
		}
		mountType := "bind"
		if m.Kind == execctx.MountNamed {
			mountType = "volume"
		}
		spec.Mounts = append(spec.Mounts, specs.Mount{
			Destination: m.ContainerPath,
			Type:        mountType,
			Source:      m.Source,
			Options:     opts,
		})
	}

	var unresolved []string
	for _, d := range c.Devices {
		dev, err := o.lookup(d.Path)
		if err != nil {
			unresolved = append(unresolved, d.Path)
			continue
		}
		dev.Path = d.Path
		spec.Linux.Devices = append(spec.Linux.Devices, dev)
		if spec.Linux.Resources == nil {
			spec.Linux.Resources = &specs.LinuxResources{}
		}
		major, minor := dev.Major, dev.Minor
		spec.Linux.Resources.Devices = append(spec.Linux.Resources.Devices, specs.LinuxDeviceCgroup{
			Allow:  true,
			Type:   dev.Type,
			Major:  &major,
			Minor:  &minor,
			Access: "rwm",
		})
	}
	if len(unresolved) > 0 {
		spec.Annotations[AnnotationDevices] = strings.Join(unresolved, ",")
	}

	namespaces := []specs.LinuxNamespaceType{specs.PIDNamespace, specs.IPCNamespace, specs.UTSNamespace, specs.MountNamespace}
	if c.Network != execctx.NetworkHost {
		namespaces = append(namespaces, specs.NetworkNamespace)
	}
	for _, ns := range namespaces {
		spec.Linux.Namespaces = append(spec.Linux.Namespaces, specs.LinuxNamespace{Type: ns})
	}
	if c.Namespace.IsShared() {
		spec.Annotations[AnnotationNamespace] = c.Namespace.Key()
	}

	return spec
}
