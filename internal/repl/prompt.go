// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repl

import (
	"fmt"
	"os"
	"os/user"
)

const promptSuffix = " shellax$ "

// Prompt returns the prompt for the current user, host and working directory.
func Prompt() string {
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		name = u.Username
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	}

	return fmt.Sprintf("%s@%s:%s%s", name, host, cwd, promptSuffix)
}
