// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command castdisplay renders content on remote displays.
package main

import (
	"os"

	"github.com/gogpu/remotedisplay/cmd/castdisplay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
