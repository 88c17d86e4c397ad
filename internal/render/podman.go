// SPDX-License-Identifier: MPL-2.0

package render

import (
	"strings"

	"github.com/podenv/podenv/internal/execctx"
)

func renderPodman(c *execctx.Context) []string {
	args := []string{"run", "--rm"}
	if c.Name != "" {
		args = append(args, "--name", c.Name)
	}
	if c.Interactive {
		args = append(args, "-i")
	}
	if c.Terminal {
		args = append(args, "-t")
	}

	key := c.Namespace.Key()
	switch c.Network {
	case execctx.NetworkShared:
		args = append(args, "--network", "container:"+key)
	case execctx.NetworkPrivate:
		args = append(args, "--network", "private")
	case execctx.NetworkHost:
		args = append(args, "--network", "host")
	default:
		args = append(args, "--network", "none")
	}
	if c.Namespace.IsShared() {
		args = append(args, "--pid", "container:"+key, "--ipc", "container:"+key)
	}

	for _, flag := range c.SecurityFlags() {
		switch flag {
		case execctx.SecurityPrivileged:
			args = append(args, "--privileged")
		case execctx.SecurityPtrace:
			args = append(args, "--cap-add", strings.TrimPrefix(string(flag), "cap-add="))
		default:
			args = append(args, "--security-opt", string(flag))
		}
	}
	if c.RunAsRoot {
		args = append(args, "--user", "0")
	}
	if c.WorkDir != "" {
		args = append(args, "--workdir", c.WorkDir)
	}
	for _, d := range c.Devices {
		args = append(args, "--device", d.Path)
	}
	for _, k := range c.EnvKeys() {
		args = append(args, "--env", k+"="+c.Environment[k])
	}
	for _, m := range c.Mounts {
		args = append(args, "--volume", m.String())
	}

	args = append(args, c.Image)
	return append(args, c.Command...)
}
