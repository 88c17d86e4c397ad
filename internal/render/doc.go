// SPDX-License-Identifier: MPL-2.0

// Package render maps a resolved execution context to the argument vector of
// a container runtime.
//
// Rendering is pure. A context field the target cannot honor is reported as
// an *UnsupportedOnTargetError instead of being dropped, so podenv never
// starts a container that is less isolated than the one requested.
package render
