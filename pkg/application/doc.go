// SPDX-License-Identifier: MPL-2.0

// Package application loads podenv application records.
//
// Applications are declared in CUE (validated against the embedded #Apps
// schema) or TOML files under a top-level "apps" table keyed by application
// name:
//
//	apps: web: {
//		image:   "registry.fedoraproject.org/fedora:latest"
//		command: ["python3", "-m", "http.server"]
//		capabilities: network: true
//		volumes: ["data|~/web:/srv"]
//	}
//
// Records decode into File, are converted to immutable Application values and
// are looked up by name through a Catalog.
package application
