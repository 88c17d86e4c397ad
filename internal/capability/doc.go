// SPDX-License-Identifier: MPL-2.0

// Package capability holds the registry of named boolean toggles that podenv
// applications declare (network access, terminal allocation, host sockets,
// device nodes, ...).
//
// The registry is a fixed, ordered table built at package initialization and
// never modified afterwards. Each entry pairs an identifier with a mutation of
// an execctx.Context. Mutations are idempotent: applying an enabled
// capability twice yields the same context as applying it once. Disabling a
// capability undoes exactly the context fields that capability owns, which is
// how a late --no-<id> command-line toggle overrides an application default.
package capability
