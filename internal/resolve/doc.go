// SPDX-License-Identifier: MPL-2.0

// Package resolve folds an application record, a run mode and command-line
// overrides into the execution context of a single container invocation.
package resolve
