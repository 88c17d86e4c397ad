// SPDX-License-Identifier: MPL-2.0

package execctx

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

const (
	// NetworkNone gives the container no network access.
	NetworkNone NetworkMode = "none"
	// NetworkHost shares the host network stack.
	NetworkHost NetworkMode = "host"
	// NetworkPrivate creates a private network namespace with outbound access.
	NetworkPrivate NetworkMode = "private"
	// NetworkShared joins the network namespace of the shared namespace owner.
	NetworkShared NetworkMode = "shared"

	// SecurityPrivileged runs the container with extended privileges.
	SecurityPrivileged SecurityFlag = "privileged"
	// SecurityPtrace adds the SYS_PTRACE capability.
	SecurityPtrace SecurityFlag = "cap-add=SYS_PTRACE"
	// SecurityLabelDisable disables SELinux label separation.
	SecurityLabelDisable SecurityFlag = "label=disable"
)

// ErrInvalidNetworkMode is the sentinel error wrapped by InvalidNetworkModeError.
var ErrInvalidNetworkMode = errors.New("invalid network mode")

type (
	// NetworkMode selects how the container is attached to the network.
	NetworkMode string

	// InvalidNetworkModeError is returned when a NetworkMode is not recognized.
	InvalidNetworkModeError struct {
		Value NetworkMode
	}

	// NamespaceMode selects between a private isolation boundary and joining
	// the namespaces of another named invocation. The zero value is private.
	NamespaceMode struct {
		key string
	}

	// SecurityFlag is a single security option of the container.
	SecurityFlag string

	// Device is a host device node exposed to the container.
	Device struct {
		Path string
		// Origin is the capability id that requested the device.
		Origin string
	}

	// Context is the fully resolved description of one container invocation.
	Context struct {
		// Name is the container name.
		Name string
		// Image is the image reference the runtime resolves by name/tag.
		Image string
		// Command is the argument vector executed inside the container.
		Command []string
		// Environment holds the resolved variables; last write wins.
		Environment map[string]string
		// Mounts are rendered in insertion order.
		Mounts []Mount
		// Devices are rendered in insertion order.
		Devices []Device
		// Namespace is private unless the invocation joins a named namespace.
		Namespace NamespaceMode
		// Security is the set of security flags.
		Security map[SecurityFlag]struct{}
		// Network is the network attachment mode.
		Network NetworkMode
		// Terminal allocates a pseudo-TTY.
		Terminal bool
		// Interactive keeps stdin attached.
		Interactive bool
		// RunAsRoot runs the command as uid 0 instead of the image user.
		RunAsRoot bool
		// WorkDir is the working directory inside the container (optional).
		WorkDir string
	}
)

// New returns a Context initialized with the hard defaults: no mounts, no
// devices, a private namespace, no network and an empty environment.
func New() *Context {
	return &Context{
		Environment: make(map[string]string),
		Security:    make(map[SecurityFlag]struct{}),
		Namespace:   PrivateNamespace(),
		Network:     NetworkNone,
	}
}

// PrivateNamespace returns the private namespace mode.
func PrivateNamespace() NamespaceMode { return NamespaceMode{} }

// SharedNamespace returns a namespace mode joining the namespace keyed by key.
// An empty key yields the private mode.
func SharedNamespace(key string) NamespaceMode { return NamespaceMode{key: key} }

// IsShared reports whether the mode joins another invocation's namespace.
func (n NamespaceMode) IsShared() bool { return n.key != "" }

// Key returns the namespace-sharing key, or "" for the private mode.
func (n NamespaceMode) Key() string { return n.key }

// String returns "private" or "shared:<key>".
func (n NamespaceMode) String() string {
	if n.key == "" {
		return "private"
	}
	return "shared:" + n.key
}

// String returns the string representation of the NetworkMode.
func (m NetworkMode) String() string { return string(m) }

// Validate returns an error if the NetworkMode is not one of the defined modes.
func (m NetworkMode) Validate() error {
	switch m {
	case NetworkNone, NetworkHost, NetworkPrivate, NetworkShared:
		return nil
	default:
		return &InvalidNetworkModeError{Value: m}
	}
}

// Error implements the error interface.
func (e *InvalidNetworkModeError) Error() string {
	return fmt.Sprintf("invalid network mode %q (valid: none, host, private, shared)", e.Value)
}

// Unwrap returns ErrInvalidNetworkMode for errors.Is() compatibility.
func (e *InvalidNetworkModeError) Unwrap() error { return ErrInvalidNetworkMode }

// SetEnv sets an environment variable, replacing any previous value.
func (c *Context) SetEnv(key, value string) {
	if c.Environment == nil {
		c.Environment = make(map[string]string)
	}
	c.Environment[key] = value
}

// UnsetEnvIf removes key only when it still holds value, so that undoing a
// capability never drops a variable the application declared itself.
func (c *Context) UnsetEnvIf(key, value string) {
	if v, ok := c.Environment[key]; ok && v == value {
		delete(c.Environment, key)
	}
}

// EnvKeys returns the environment keys in sorted order.
func (c *Context) EnvKeys() []string {
	return slices.Sorted(maps.Keys(c.Environment))
}

// AddMount appends m. An identical mount is not added twice, and a mount
// targeting the same container path replaces the earlier one (later wins),
// except that a capability never displaces a declared volume: its mount is
// dropped instead, so undoing the capability leaves the volume in place.
func (c *Context) AddMount(m Mount) {
	for i, existing := range c.Mounts {
		if existing.ContainerPath != m.ContainerPath {
			continue
		}
		if existing == m {
			return
		}
		if existing.Origin == OriginVolume && m.Origin != OriginVolume {
			return
		}
		c.Mounts = slices.Delete(c.Mounts, i, i+1)
		break
	}
	c.Mounts = append(c.Mounts, m)
}

// RemoveMountsFrom drops every mount added on behalf of origin.
func (c *Context) RemoveMountsFrom(origin string) {
	c.Mounts = slices.DeleteFunc(c.Mounts, func(m Mount) bool { return m.Origin == origin })
	if len(c.Mounts) == 0 {
		c.Mounts = nil
	}
}

// AddDevice appends a device node unless it is already present.
func (c *Context) AddDevice(d Device) {
	for _, existing := range c.Devices {
		if existing.Path == d.Path {
			return
		}
	}
	c.Devices = append(c.Devices, d)
}

// RemoveDevicesFrom drops every device added on behalf of origin.
func (c *Context) RemoveDevicesFrom(origin string) {
	c.Devices = slices.DeleteFunc(c.Devices, func(d Device) bool { return d.Origin == origin })
	if len(c.Devices) == 0 {
		c.Devices = nil
	}
}

// AddSecurity adds a security flag to the set.
func (c *Context) AddSecurity(f SecurityFlag) {
	if c.Security == nil {
		c.Security = make(map[SecurityFlag]struct{})
	}
	c.Security[f] = struct{}{}
}

// RemoveSecurity removes a security flag from the set.
func (c *Context) RemoveSecurity(f SecurityFlag) {
	delete(c.Security, f)
}

// HasSecurity reports whether the flag is set.
func (c *Context) HasSecurity(f SecurityFlag) bool {
	_, ok := c.Security[f]
	return ok
}

// SecurityFlags returns the security flags in sorted order.
func (c *Context) SecurityFlags() []SecurityFlag {
	return slices.Sorted(maps.Keys(c.Security))
}

// Clone returns a deep copy of the context.
func (c *Context) Clone() *Context {
	out := *c
	out.Command = slices.Clone(c.Command)
	out.Environment = maps.Clone(c.Environment)
	out.Mounts = slices.Clone(c.Mounts)
	out.Devices = slices.Clone(c.Devices)
	out.Security = maps.Clone(c.Security)
	if out.Environment == nil {
		out.Environment = make(map[string]string)
	}
	if out.Security == nil {
		out.Security = make(map[SecurityFlag]struct{})
	}
	return &out
}
