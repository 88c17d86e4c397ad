// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package render

import (
	"fmt"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// hostDevice reports every path as unresolved; device numbers are only
// meaningful on a Linux host.
func hostDevice(path string) (specs.LinuxDevice, error) {
	return specs.LinuxDevice{}, fmt.Errorf("device %s: lookup requires a linux host", path)
}
