// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	cmd "github.com/podenv/podenv/cmd/podenv"
)

func main() {
	os.Exit(cmd.Main())
}
