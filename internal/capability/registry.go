// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/podenv/podenv/internal/execctx"
)

const (
	Terminal    ID = "terminal"
	Interactive ID = "interactive"
	Network     ID = "network"
	HostNetwork ID = "host-network"
	Root        ID = "root"
	Privileged  ID = "privileged"
	Ptrace      ID = "ptrace"
	SELinuxOff  ID = "selinux-off"
	Cwd         ID = "cwd"
	X11         ID = "x11"
	Wayland     ID = "wayland"
	PulseAudio  ID = "pulseaudio"
	DBus        ID = "dbus"
	SSH         ID = "ssh"
	GPG         ID = "gpg"
	DRI         ID = "dri"
	KVM         ID = "kvm"
	Tun         ID = "tun"
	ALSA        ID = "alsa"
)

// ErrUnknownCapability is the sentinel error wrapped by UnknownCapabilityError.
var ErrUnknownCapability = errors.New("unknown capability")

// registry is the ordered capability catalog. The order is the fold order of
// context construction and the documentation order of `podenv capabilities`.
var registry = []Capability{
	{ID: Terminal, Description: "Allocate a pseudo-terminal (implies interactive)", apply: applyTerminal},
	{ID: Interactive, Description: "Keep stdin attached to the container", apply: applyInteractive},
	{ID: Network, Description: "Give the container a private network with outbound access", apply: applyNetwork},
	{ID: HostNetwork, Description: "Share the host network stack", apply: applyHostNetwork},
	{ID: Root, Description: "Run the command as uid 0 inside the container", apply: applyRoot},
	{ID: Privileged, Description: "Run the container with extended privileges", apply: securityFlag(execctx.SecurityPrivileged)},
	{ID: Ptrace, Description: "Allow ptrace (SYS_PTRACE capability)", apply: securityFlag(execctx.SecurityPtrace)},
	{ID: SELinuxOff, Description: "Disable SELinux label separation", apply: securityFlag(execctx.SecurityLabelDisable)},
	{ID: Cwd, Description: "Mount the current directory and use it as the working directory", apply: applyCwd},
	{ID: X11, Description: "Share the X11 socket and DISPLAY", apply: applyX11},
	{ID: Wayland, Description: "Share the Wayland compositor socket", apply: applyWayland},
	{ID: PulseAudio, Description: "Share the PulseAudio socket", apply: applyPulseAudio},
	{ID: DBus, Description: "Share the D-Bus session bus", apply: applyDBus},
	{ID: SSH, Description: "Share the ssh-agent socket", apply: applySSH},
	{ID: GPG, Description: "Share the gpg-agent sockets (read-only)", apply: applyGPG},
	{ID: DRI, Description: "Expose the GPU render nodes (/dev/dri)", apply: device(DRI, "/dev/dri")},
	{ID: KVM, Description: "Expose /dev/kvm", apply: device(KVM, "/dev/kvm")},
	{ID: Tun, Description: "Expose /dev/net/tun", apply: device(Tun, "/dev/net/tun")},
	{ID: ALSA, Description: "Expose the ALSA sound devices (/dev/snd)", apply: device(ALSA, "/dev/snd")},
}

type (
	// ID is the stable identifier of a capability, used on the command line
	// (--<id>, --no-<id>) and as a key in application files.
	ID string

	// Capability describes a single named toggle and the context mutation it
	// performs.
	Capability struct {
		ID          ID
		Description string
		apply       func(enabled bool, host execctx.Host, c *execctx.Context)
	}

	// UnknownCapabilityError is returned when an identifier does not name a
	// registered capability.
	UnknownCapabilityError struct {
		ID string
	}
)

// Error implements the error interface.
func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability %q (valid: %s)", e.ID, strings.Join(Names(), ", "))
}

// Unwrap returns ErrUnknownCapability for errors.Is() compatibility.
func (e *UnknownCapabilityError) Unwrap() error { return ErrUnknownCapability }

// String returns the string representation of the ID.
func (id ID) String() string { return string(id) }

// All returns a copy of the ordered capability catalog.
func All() []Capability {
	return slices.Clone(registry)
}

// Names returns the capability identifiers in registry order.
func Names() []string {
	names := make([]string, len(registry))
	for i, c := range registry {
		names[i] = string(c.ID)
	}
	return names
}

// Lookup returns the capability registered under id.
func Lookup(id string) (Capability, error) {
	for _, c := range registry {
		if string(c.ID) == id {
			return c, nil
		}
	}
	return Capability{}, &UnknownCapabilityError{ID: id}
}

// Get reports whether the capability is enabled in s.
func (c Capability) Get(s Set) bool {
	return s.Enabled(c.ID)
}

// Set returns a copy of s with the capability set to enabled.
func (c Capability) Set(enabled bool, s Set) Set {
	return s.With(c.ID, enabled)
}

// Apply runs the capability's mutation on ctx. Enabling is idempotent;
// disabling removes only the fields this capability contributes.
func (c Capability) Apply(enabled bool, host execctx.Host, ctx *execctx.Context) {
	if c.apply == nil {
		return
	}
	c.apply(enabled, host, ctx)
}
