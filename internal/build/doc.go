// SPDX-License-Identifier: MPL-2.0

// Package build is the gate run before an application executes: it decides
// whether the application's image must be built or pulled, and runs that
// step on request. The gate never touches the execution context; the runtime
// finds the prepared image by its reference.
package build
