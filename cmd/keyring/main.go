// SPDX-License-Identifier: Apache-2.0

// keyring stores, prints and deletes passwords in the platform's secret store.
//
// Usage:
//
//	keyring --service git --user alice set [password]
//	keyring --service git --user alice get [--credential]
//	keyring --service git --user alice delete
//	keyring platform
//
// Defaults for --service, --user and --target are read from
// $XDG_CONFIG_HOME/keyring/keyring.yaml, or the file named by --config.
//
// Exit codes: 0 success, 2 usage or configuration error, 3 no entry,
// 4 no storage access, 5 bad encoding, 6 wrong credential platform,
// 10 any other failure.
package main

import (
	"os"
)

func main() {
	os.Exit(run(newApp(os.Stdin, os.Stdout, os.Stderr), os.Args[1:]))
}

// run executes the command line and returns the process exit code.
func run(a *app, args []string) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		a.log().WithError(err).Debug("command failed")
	}
	return exitCode(err)
}
