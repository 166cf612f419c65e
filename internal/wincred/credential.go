// SPDX-License-Identifier: Apache-2.0

// Package wincred reads and writes generic credentials in the Windows
// Credential Manager. The Credential type and its limits are available on
// every platform; Store is only built for Windows.
package wincred

import (
	"fmt"
	"syscall"
	"unicode/utf16"
)

// Limits from wincred.h. String limits count UTF-16 code units.
const (
	MaxTargetNameLen = 32767 // CRED_MAX_GENERIC_TARGET_NAME_LENGTH
	MaxUserNameLen   = 513   // CRED_MAX_USERNAME_LENGTH
	MaxAliasLen      = 256   // CRED_MAX_STRING_LENGTH
	MaxCommentLen    = 256   // CRED_MAX_STRING_LENGTH
	MaxBlobLen       = 2560  // CRED_MAX_CREDENTIAL_BLOB_SIZE
)

// Error codes returned by the Credential Manager.
const (
	ErrNotFound           = syscall.Errno(1168) // ERROR_NOT_FOUND
	ErrNoSuchLogonSession = syscall.Errno(1312) // ERROR_NO_SUCH_LOGON_SESSION
)

// Credential is a generic credential. Blob holds the secret bytes verbatim.
type Credential struct {
	TargetName  string
	TargetAlias string
	UserName    string
	Comment     string
	Blob        []byte
}

// TooLongError reports a field that exceeds its Credential Manager limit.
type TooLongError struct {
	Field  string
	Length int
	Max    int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("wincred: %s is %d long, limit is %d", e.Field, e.Length, e.Max)
}

// Validate checks every field against its limit. The Credential Manager
// rejects oversized fields with an unhelpful ERROR_INVALID_PARAMETER.
func (c *Credential) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"target name", c.TargetName, MaxTargetNameLen},
		{"username", c.UserName, MaxUserNameLen},
		{"target alias", c.TargetAlias, MaxAliasLen},
		{"comment", c.Comment, MaxCommentLen},
	} {
		if n := utf16Len(f.value); n > f.max {
			return &TooLongError{Field: f.name, Length: n, Max: f.max}
		}
	}
	if len(c.Blob) > MaxBlobLen {
		return &TooLongError{Field: "password", Length: len(c.Blob), Max: MaxBlobLen}
	}
	return nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
