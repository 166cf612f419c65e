// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/akihiro/keyring"
)

const (
	exitOK              = 0
	exitUsage           = 2
	exitNoEntry         = 3
	exitNoStorageAccess = 4
	exitBadEncoding     = 5
	exitWrongPlatform   = 6
	exitFailure         = 10
)

// usageError marks errors caused by the command line or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	switch keyring.KindOf(err) {
	case keyring.NoEntry:
		return exitNoEntry
	case keyring.NoStorageAccess:
		return exitNoStorageAccess
	case keyring.BadEncoding:
		return exitBadEncoding
	case keyring.WrongCredentialPlatform:
		return exitWrongPlatform
	}
	return exitFailure
}
