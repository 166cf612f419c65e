// SPDX-License-Identifier: Apache-2.0

package keychain

import (
	"errors"
	"fmt"
)

// Security framework result codes (SecBase.h) that this package recognizes.
const (
	ErrSecNotAvailable          int32 = -25291
	ErrSecReadOnly              int32 = -25292
	ErrSecAuthFailed            int32 = -25293
	ErrSecNoSuchKeychain        int32 = -25294
	ErrSecInvalidKeychain       int32 = -25295
	ErrSecDuplicateItem         int32 = -25299
	ErrSecItemNotFound          int32 = -25300
	ErrSecNoDefaultKeychain     int32 = -25307
	ErrSecInteractionNotAllowed int32 = -25308
)

var knownStatuses = []int32{
	ErrSecNotAvailable,
	ErrSecReadOnly,
	ErrSecAuthFailed,
	ErrSecNoSuchKeychain,
	ErrSecInvalidKeychain,
	ErrSecDuplicateItem,
	ErrSecItemNotFound,
	ErrSecNoDefaultKeychain,
	ErrSecInteractionNotAllowed,
}

// ErrUnavailable is returned when the security tool cannot be started.
var ErrUnavailable = errors.New("keychain: security tool unavailable")

// ErrCommandTooLong is returned when an interactive command exceeds the
// line length security accepts.
var ErrCommandTooLong = errors.New("keychain: password data too long for security command line")

// StatusError reports a failed security invocation.
type StatusError struct {
	Op string
	// Status is the OSStatus resolved from the exit code, or 0 if unknown.
	Status   int32
	ExitCode int
	Message  string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "command failed"
	}
	if e.Status != 0 {
		return fmt.Sprintf("security %s: %s (OSStatus %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("security %s: %s (exit %d)", e.Op, msg, e.ExitCode)
}

// statusForExit resolves an exit code to an OSStatus. security exits with the
// low byte of the result code; known codes have distinct low bytes.
func statusForExit(code int) int32 {
	if code <= 0 || code > 0xff {
		return 0
	}
	for _, s := range knownStatuses {
		if int(uint8(s)) == code {
			return s
		}
	}
	return 0
}
