// SPDX-License-Identifier: MPL-2.0

// Package runner spawns the runtime program with a rendered argument vector,
// passes the standard streams through, and reports the runtime's exit code.
package runner
