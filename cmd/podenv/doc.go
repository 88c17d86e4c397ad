// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the podenv command line: flag parsing, configuration
// loading, and the wiring from a selected application to a running container.
package cmd
