// SPDX-License-Identifier: MPL-2.0

package capability

import "github.com/podenv/podenv/internal/execctx"

const (
	x11SocketDir          = "/tmp/.X11-unix"
	defaultDisplay        = ":0"
	defaultWaylandDisplay = "wayland-0"
)

func applyTerminal(enabled bool, _ execctx.Host, c *execctx.Context) {
	c.Terminal = enabled
	if enabled {
		c.Interactive = true
	}
}

func applyInteractive(enabled bool, _ execctx.Host, c *execctx.Context) {
	c.Interactive = enabled
}

func applyNetwork(enabled bool, _ execctx.Host, c *execctx.Context) {
	switch {
	case enabled:
		c.Network = execctx.NetworkPrivate
	case c.Network == execctx.NetworkPrivate || c.Network == execctx.NetworkShared:
		c.Network = execctx.NetworkNone
	}
}

func applyHostNetwork(enabled bool, _ execctx.Host, c *execctx.Context) {
	switch {
	case enabled:
		c.Network = execctx.NetworkHost
	case c.Network == execctx.NetworkHost:
		c.Network = execctx.NetworkNone
	}
}

func applyRoot(enabled bool, _ execctx.Host, c *execctx.Context) {
	c.RunAsRoot = enabled
}

func securityFlag(flag execctx.SecurityFlag) func(bool, execctx.Host, *execctx.Context) {
	return func(enabled bool, _ execctx.Host, c *execctx.Context) {
		if enabled {
			c.AddSecurity(flag)
			return
		}
		c.RemoveSecurity(flag)
	}
}

func device(id ID, path string) func(bool, execctx.Host, *execctx.Context) {
	return func(enabled bool, _ execctx.Host, c *execctx.Context) {
		if enabled {
			c.AddDevice(execctx.Device{Path: path, Origin: string(id)})
			return
		}
		c.RemoveDevicesFrom(string(id))
	}
}

func applyCwd(enabled bool, host execctx.Host, c *execctx.Context) {
	if host.Cwd == "" {
		return
	}
	if !enabled {
		c.RemoveMountsFrom(string(Cwd))
		if c.WorkDir == host.Cwd {
			c.WorkDir = ""
		}
		return
	}
	c.AddMount(bind(Cwd, host.Cwd, false))
	c.WorkDir = host.Cwd
}

func applyX11(enabled bool, host execctx.Host, c *execctx.Context) {
	display := host.Display
	if display == "" {
		display = defaultDisplay
	}
	if !enabled {
		c.RemoveMountsFrom(string(X11))
		c.UnsetEnvIf("DISPLAY", display)
		return
	}
	c.AddMount(bind(X11, x11SocketDir, false))
	c.SetEnv("DISPLAY", display)
}

func applyWayland(enabled bool, host execctx.Host, c *execctx.Context) {
	display := host.WaylandDisplay
	if display == "" {
		display = defaultWaylandDisplay
	}
	if !enabled {
		c.RemoveMountsFrom(string(Wayland))
		c.UnsetEnvIf("WAYLAND_DISPLAY", display)
		c.UnsetEnvIf("XDG_RUNTIME_DIR", host.RuntimeDir)
		return
	}
	c.AddMount(bind(Wayland, host.RuntimePath(display), false))
	c.SetEnv("WAYLAND_DISPLAY", display)
	c.SetEnv("XDG_RUNTIME_DIR", host.RuntimeDir)
}

func applyPulseAudio(enabled bool, host execctx.Host, c *execctx.Context) {
	server := "unix:" + host.RuntimePath("pulse", "native")
	if !enabled {
		c.RemoveMountsFrom(string(PulseAudio))
		c.UnsetEnvIf("PULSE_SERVER", server)
		return
	}
	c.AddMount(bind(PulseAudio, host.RuntimePath("pulse"), false))
	c.SetEnv("PULSE_SERVER", server)
}

func applyDBus(enabled bool, host execctx.Host, c *execctx.Context) {
	address := "unix:path=" + host.RuntimePath("bus")
	if !enabled {
		c.RemoveMountsFrom(string(DBus))
		c.UnsetEnvIf("DBUS_SESSION_BUS_ADDRESS", address)
		return
	}
	c.AddMount(bind(DBus, host.RuntimePath("bus"), false))
	c.SetEnv("DBUS_SESSION_BUS_ADDRESS", address)
}

// applySSH is a no-op when the host has no agent socket.
func applySSH(enabled bool, host execctx.Host, c *execctx.Context) {
	if host.SSHAuthSock == "" {
		return
	}
	if !enabled {
		c.RemoveMountsFrom(string(SSH))
		c.UnsetEnvIf("SSH_AUTH_SOCK", host.SSHAuthSock)
		return
	}
	c.AddMount(bind(SSH, host.SSHAuthSock, false))
	c.SetEnv("SSH_AUTH_SOCK", host.SSHAuthSock)
}

func applyGPG(enabled bool, host execctx.Host, c *execctx.Context) {
	if !enabled {
		c.RemoveMountsFrom(string(GPG))
		return
	}
	c.AddMount(bind(GPG, host.RuntimePath("gnupg"), true))
}

// bind returns a bind mount of a host path at the same location inside the
// container, attributed to the capability id.
func bind(id ID, hostPath string, readOnly bool) execctx.Mount {
	return execctx.Mount{
		Name:          string(id),
		Source:        hostPath,
		ContainerPath: hostPath,
		ReadOnly:      readOnly,
		Kind:          execctx.MountBind,
		Origin:        string(id),
	}
}
