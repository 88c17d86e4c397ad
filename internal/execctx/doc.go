// SPDX-License-Identifier: MPL-2.0

// Package execctx defines the runtime-agnostic execution context of a single
// podenv invocation: the command, environment, mounts, devices, namespace and
// network modes and the security flags of one container.
//
// A Context is created fresh per invocation by the resolve package, mutated by
// capability functions during one synchronous fold, and treated as read-only
// by the renderers afterwards. The mutation helpers on Context (SetEnv,
// AddMount, AddDevice, AddSecurity and their inverses) are idempotent so that
// re-applying a capability never duplicates entries.
//
// The package also owns the mount-spec grammar:
//
//	NAME '|' [ HOSTPATH ] [ ':' CONTAINERPATH [ ':' ( 'ro' | 'rw' ) ] ]
//
// "data|/home/x" bind-mounts /home/x at the same path, "cache|/tmp/a:/cache"
// bind-mounts /tmp/a at /cache and "db|" or "db|:/var/lib/db" mount the
// managed volume "db".
package execctx
