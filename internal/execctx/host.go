// SPDX-License-Identifier: MPL-2.0

package execctx

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
)

// Host is a snapshot of the host facts that capabilities translate into
// mounts and environment variables. Taking the snapshot once per invocation
// keeps context construction a pure function of its inputs.
type Host struct {
	// Home is the host user's home directory.
	Home string
	// Cwd is the working directory podenv was started from.
	Cwd string
	// RuntimeDir is $XDG_RUNTIME_DIR (e.g. /run/user/1000).
	RuntimeDir string
	// UID is the host user id.
	UID int
	// Display is $DISPLAY, used by the x11 capability.
	Display string
	// WaylandDisplay is $WAYLAND_DISPLAY, used by the wayland capability.
	WaylandDisplay string
	// SSHAuthSock is $SSH_AUTH_SOCK, used by the ssh capability.
	SSHAuthSock string
}

// CurrentHost captures the host snapshot of the running process.
func CurrentHost() Host {
	h := Host{
		Home:           xdg.Home,
		RuntimeDir:     xdg.RuntimeDir,
		UID:            os.Getuid(),
		Display:        os.Getenv("DISPLAY"),
		WaylandDisplay: os.Getenv("WAYLAND_DISPLAY"),
		SSHAuthSock:    os.Getenv("SSH_AUTH_SOCK"),
	}
	if cwd, err := os.Getwd(); err == nil {
		h.Cwd = cwd
	}
	if h.RuntimeDir == "" {
		h.RuntimeDir = filepath.Join("/run/user", strconv.Itoa(h.UID))
	}
	return h
}

// RuntimePath joins elem onto the host runtime directory.
func (h Host) RuntimePath(elem ...string) string {
	return filepath.Join(append([]string{h.RuntimeDir}, elem...)...)
}
