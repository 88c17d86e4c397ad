// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles CUE documents against podenv's embedded schemas.
//
// Application files and the settings file share the same flow: compile the
// embedded schema, compile the user document, unify it with a root
// definition, validate, then decode into a Go value.
//
//	result, err := cueutil.ParseAndDecode[application.File](
//	    schema,
//	    data,
//	    "#Apps",
//	    cueutil.WithFilename("apps.cue"),
//	)
package cueutil
