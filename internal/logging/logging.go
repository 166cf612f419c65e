// SPDX-License-Identifier: Apache-2.0

// Package logging configures logrus for the keyring command.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Setup sends log output to w, at debug level when verbose and warning
// level otherwise.
func Setup(w io.Writer, verbose bool) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// Component returns a logger tagged with the given component name.
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
