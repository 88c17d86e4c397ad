// SPDX-License-Identifier: MPL-2.0

// Package container drives the local container engine CLI for image
// management: existence checks, Containerfile builds, pulls, and killing a
// named container on interrupt. Running the application itself is the
// runner's job; this package never composes `run` command lines.
package container
